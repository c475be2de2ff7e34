package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("habitkind", func(fl validator.FieldLevel) bool {
			return habit.Kind(fl.Field().String()).Valid()
		})
	}
}

type CreateHabitRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	Why         string  `json:"why" binding:"max=2000"`
	GoalID      *string `json:"goal_id" binding:"omitempty,uuid"`
	Category    string  `json:"category" binding:"max=64"`
	Color       string  `json:"color" binding:"max=16"`
	Kind        string  `json:"kind" binding:"required,habitkind"`
	TargetValue *int    `json:"target_value" binding:"omitempty,gt=0"`
	TargetUnit  *string `json:"target_unit" binding:"omitempty,max=32"`
}

type UpdateHabitRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	Why         string  `json:"why" binding:"max=2000"`
	Category    string  `json:"category" binding:"max=64"`
	Color       string  `json:"color" binding:"max=16"`
	TargetValue *int    `json:"target_value" binding:"omitempty,gt=0"`
	TargetUnit  *string `json:"target_unit" binding:"omitempty,max=32"`
}

type LogHabitRequest struct {
	Date      string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Completed bool   `json:"completed"`
	Value     *int   `json:"value" binding:"omitempty,gte=0"`
	Note      string `json:"note" binding:"max=2000"`
}

type CompleteHabitRequest struct {
	Value *int   `json:"value" binding:"omitempty,gte=0"`
	Note  string `json:"note" binding:"max=2000"`
}
