package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID) ([]Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
	StartTask(ctx context.Context, userID, taskID uuid.UUID) (*Task, error)
	CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*Task, error)
}

type service struct {
	repo      Repository
	habitRepo habit.Repository
	logger    *logrus.Logger
}

func NewService(repo Repository, habitRepo habit.Repository) Service {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return &service{
		repo:      repo,
		habitRepo: habitRepo,
		logger:    log,
	}
}

func (s *service) CreateTask(ctx context.Context, task *Task) error {
	if task.UserID == uuid.Nil || task.Title == "" {
		return ErrInvalidInput
	}
	if task.Status == "" {
		task.Status = StatusPending
	}
	if !task.Status.Valid() {
		return ErrInvalidInput
	}
	if task.HabitID != nil {
		if _, err := s.habitRepo.GetByID(ctx, task.UserID, *task.HabitID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidInput
			}
			return err
		}
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.WithError(err).Error("failed to create task")
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"user_id": task.UserID,
	}).Info("task created")
	return nil
}

func (s *service) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	task, err := s.repo.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *service) ListTasks(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *service) UpdateTask(ctx context.Context, task *Task) error {
	existing, err := s.GetTask(ctx, task.UserID, task.ID)
	if err != nil {
		return err
	}
	if task.Title == "" {
		return ErrInvalidInput
	}
	// Status transitions go through Start/Complete, not Update.
	task.Status = existing.Status
	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *service) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *service) StartTask(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == StatusCompleted {
		return nil, ErrInvalidInput
	}
	now := time.Now()
	task.Status = StatusInProgress
	task.StartedAt = &now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// completionLog builds today's completed habit log for a habit-linked
// task. Tasks without a habit link yield nil and propagate nothing.
func completionLog(task *Task, now time.Time) *habit.Log {
	if task.HabitID == nil {
		return nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &habit.Log{
		HabitID:     *task.HabitID,
		UserID:      task.UserID,
		Date:        datatypes.Date(today),
		Completed:   true,
		CompletedAt: &now,
	}
}

// CompleteTask marks the task done. Tasks linked to a habit also log
// today's habit completion; the write is atomic with the status change.
func (s *service) CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == StatusCompleted {
		return task, nil
	}

	now := time.Now()
	task.Status = StatusCompleted
	task.CompletedAt = &now
	if err := s.repo.Complete(ctx, task, completionLog(task, now)); err != nil {
		s.logger.WithError(err).Error("failed to complete task")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	entry := s.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"user_id": userID,
	})
	if task.HabitID != nil {
		entry = entry.WithField("habit_id", *task.HabitID)
	}
	entry.Info("task completed")
	return task, nil
}
