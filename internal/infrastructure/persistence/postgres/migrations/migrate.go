package migrations

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
	"github.com/anirudhprmar/pushup-t3/internal/domain/task"
	"github.com/anirudhprmar/pushup-t3/internal/domain/user"
)

// MigrationRecord tracks which schema versions have been applied.
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

const schemaVersion = "2026-08-1"

// RunMigrations creates extensions and auto-migrates the schema. It is
// idempotent and records the applied version.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to migrate migration records: %w", err)
	}

	models := []interface{}{
		&user.User{},
		&user.Stats{},
		&habit.Habit{},
		&habit.Log{},
		&task.Task{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var count int64
	db.Model(&MigrationRecord{}).Where("version = ?", schemaVersion).Count(&count)
	if count == 0 {
		record := MigrationRecord{Version: schemaVersion, AppliedAt: time.Now()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}
	return nil
}
