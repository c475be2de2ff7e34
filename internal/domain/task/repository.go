package task

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
)

type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*Task, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	Complete(ctx context.Context, task *Task, log *habit.Log) error
}

type gormRepository struct {
	db           *gorm.DB
	upsertLog    func(tx *gorm.DB, log *habit.Log) error
	refreshStats func(tx *gorm.DB, userID uuid.UUID) error
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{
		db:           db,
		upsertLog:    habit.UpsertLogTx,
		refreshStats: habit.RefreshUserStats,
	}
}

func (r *gormRepository) Create(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormRepository) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *gormRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *gormRepository) Update(ctx context.Context, task *Task) error {
	result := r.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Complete marks the task completed and, for a habit-linked task,
// applies the given habit log and refreshes the owner's stats
// projection in the same transaction.
func (r *gormRepository) Complete(ctx context.Context, task *Task, log *habit.Log) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Task{}).
			Where("id = ? AND user_id = ?", task.ID, task.UserID).
			Updates(map[string]interface{}{
				"status":       task.Status,
				"completed_at": task.CompletedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return r.propagate(tx, task.UserID, log)
	})
}

// propagate upserts the habit log and refreshes the stats projection
// inside the caller's transaction. A nil log means the task has no
// habit link and nothing propagates.
func (r *gormRepository) propagate(tx *gorm.DB, userID uuid.UUID, log *habit.Log) error {
	if log == nil {
		return nil
	}
	if err := r.upsertLog(tx, log); err != nil {
		return err
	}
	return r.refreshStats(tx, userID)
}
