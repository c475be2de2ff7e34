package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Image     string         `gorm:"type:text" json:"image,omitempty"`
	Timezone  string         `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Stats is a denormalized projection over habit logs used by the
// leaderboard. Habit logs remain the source of truth; rows here are
// recomputed whenever a log is written and reconciled nightly.
type Stats struct {
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalCompletedHabits int       `gorm:"not null;default:0" json:"total_completed_habits"`
	TotalConsistentDays  int       `gorm:"not null;default:0" json:"total_consistent_days"`
	CurrentStreak        int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak        int       `gorm:"not null;default:0" json:"longest_streak"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Stats) TableName() string {
	return "user_stats"
}

// LeaderboardEntry joins a stats row with the owning user's public profile.
type LeaderboardEntry struct {
	Rank                int       `json:"rank"`
	UserID              uuid.UUID `json:"user_id"`
	Name                string    `json:"name"`
	Image               string    `json:"image,omitempty"`
	TotalConsistentDays int       `json:"total_consistent_days"`
	CurrentStreak       int       `json:"current_streak"`
	LongestStreak       int       `json:"longest_streak"`
}
