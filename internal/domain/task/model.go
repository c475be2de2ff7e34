package task

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a one-off item. When HabitID is set, completing the task also
// writes today's log for that habit; habit completions never touch
// tasks.
type Task struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	HabitID     *uuid.UUID      `gorm:"type:uuid;index" json:"habit_id,omitempty"`
	GoalID      *uuid.UUID      `gorm:"type:uuid;index" json:"goal_id,omitempty"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	TargetValue *int            `gorm:"type:integer" json:"target_value,omitempty"`
	TargetUnit  *string         `gorm:"type:varchar(32)" json:"target_unit,omitempty"`
	Note        string          `gorm:"type:text" json:"note,omitempty"`
	Status      Status          `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	DueDate     *datatypes.Date `json:"due_date,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
