package habit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Kind discriminates how a habit is measured.
type Kind string

const (
	KindBoolean Kind = "boolean"
	KindNumeric Kind = "numeric"
	KindTimer   Kind = "timer"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBoolean, KindNumeric, KindTimer:
		return true
	}
	return false
}

// Measured reports whether the kind carries a target value and unit.
func (k Kind) Measured() bool {
	return k == KindNumeric || k == KindTimer
}

type Habit struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	GoalID      *uuid.UUID     `gorm:"type:uuid;index" json:"goal_id,omitempty"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Why         string         `gorm:"type:text" json:"why,omitempty"`
	Category    string         `gorm:"type:varchar(64)" json:"category,omitempty"`
	Color       string         `gorm:"type:varchar(16)" json:"color,omitempty"`
	Kind        Kind           `gorm:"type:varchar(16);not null;default:'boolean'" json:"kind"`
	TargetValue *int           `gorm:"type:integer" json:"target_value,omitempty"`
	TargetUnit  *string        `gorm:"type:varchar(32)" json:"target_unit,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Logs []Log `gorm:"foreignKey:HabitID" json:"logs,omitempty"`
}

// Log records one (habit, calendar day) outcome. The composite unique
// index makes log writes natural upserts: logging the same day twice
// updates the existing row instead of inserting a duplicate.
type Log struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	HabitID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_habit_logs_habit_date" json:"habit_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Date        datatypes.Date `gorm:"not null;uniqueIndex:idx_habit_logs_habit_date" json:"date"`
	Completed   bool           `gorm:"not null;default:false" json:"completed"`
	Value       *int           `gorm:"type:integer" json:"value,omitempty"`
	Note        string         `gorm:"type:text" json:"note,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Log) TableName() string {
	return "habit_logs"
}

// validate enforces the kind contract: measured kinds require a target
// value and unit, boolean habits must not carry them.
func (h *Habit) validate() error {
	if h.Name == "" {
		return ErrInvalidInput
	}
	if !h.Kind.Valid() {
		return ErrInvalidInput
	}
	if h.Kind.Measured() {
		if h.TargetValue == nil || *h.TargetValue <= 0 {
			return ErrInvalidInput
		}
		if h.TargetUnit == nil || *h.TargetUnit == "" {
			return ErrInvalidInput
		}
	} else {
		if h.TargetValue != nil || h.TargetUnit != nil {
			return ErrInvalidInput
		}
	}
	return nil
}
