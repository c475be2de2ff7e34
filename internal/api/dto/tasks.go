package dto

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	HabitID     *string `json:"habit_id" binding:"omitempty,uuid"`
	GoalID      *string `json:"goal_id" binding:"omitempty,uuid"`
	TargetValue *int    `json:"target_value" binding:"omitempty,gt=0"`
	TargetUnit  *string `json:"target_unit" binding:"omitempty,max=32"`
	Note        string  `json:"note" binding:"max=2000"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}
