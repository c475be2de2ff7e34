package task

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
)

type mockTaskRepository struct {
	tasks map[uuid.UUID]*Task

	completeCalls int
	lastCompleted *Task
	lastLog       *habit.Log
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[uuid.UUID]*Task)}
}

func (m *mockTaskRepository) Create(_ context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *mockTaskRepository) GetByID(_ context.Context, userID, taskID uuid.UUID) (*Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTaskRepository) GetByUser(_ context.Context, userID uuid.UUID) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTaskRepository) Update(_ context.Context, t *Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *mockTaskRepository) Delete(_ context.Context, userID, taskID uuid.UUID) error {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *mockTaskRepository) Complete(_ context.Context, t *Task, log *habit.Log) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.completeCalls++
	m.lastCompleted = t
	m.lastLog = log
	m.tasks[t.ID] = t
	return nil
}

type mockHabitRepository struct {
	habits map[uuid.UUID]*habit.Habit
}

func (m *mockHabitRepository) Create(_ context.Context, h *habit.Habit) error {
	m.habits[h.ID] = h
	return nil
}

func (m *mockHabitRepository) GetByID(_ context.Context, userID, habitID uuid.UUID) (*habit.Habit, error) {
	h, ok := m.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return h, nil
}

func (m *mockHabitRepository) GetByUser(_ context.Context, _ uuid.UUID) ([]habit.Habit, error) {
	return nil, nil
}

func (m *mockHabitRepository) Update(_ context.Context, _ *habit.Habit) error { return nil }

func (m *mockHabitRepository) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func (m *mockHabitRepository) UpsertLog(_ context.Context, _ *habit.Log) error { return nil }

func (m *mockHabitRepository) GetLogs(_ context.Context, _ uuid.UUID, _ time.Time) ([]habit.Log, error) {
	return nil, nil
}

func (m *mockHabitRepository) GetLogsByUser(_ context.Context, _ uuid.UUID, _ time.Time) ([]habit.Log, error) {
	return nil, nil
}

func (m *mockHabitRepository) GetLogsByYear(_ context.Context, _ uuid.UUID, _ int) ([]habit.Log, error) {
	return nil, nil
}

func newTestService(repo Repository, habitRepo habit.Repository) Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &service{repo: repo, habitRepo: habitRepo, logger: log}
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	habitID := uuid.New()

	setup := func(linked bool) (*mockTaskRepository, Service, *Task) {
		taskRepo := newMockTaskRepository()
		habitRepo := &mockHabitRepository{habits: map[uuid.UUID]*habit.Habit{
			habitID: {ID: habitID, UserID: userID, Name: "Pushups", Kind: habit.KindBoolean},
		}}
		svc := newTestService(taskRepo, habitRepo)

		newTask := &Task{UserID: userID, Title: "morning pushups"}
		if linked {
			newTask.HabitID = &habitID
		}
		require.NoError(t, svc.CreateTask(ctx, newTask))
		return taskRepo, svc, newTask
	}

	t.Run("marks task completed", func(t *testing.T) {
		repo, svc, created := setup(false)

		completed, err := svc.CompleteTask(ctx, userID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, completed.Status)
		assert.NotNil(t, completed.CompletedAt)
		assert.Equal(t, 1, repo.completeCalls)
		assert.Nil(t, repo.lastLog)
	})

	t.Run("linked task propagates today's habit log", func(t *testing.T) {
		repo, svc, created := setup(true)

		completed, err := svc.CompleteTask(ctx, userID, created.ID)
		require.NoError(t, err)
		require.NotNil(t, completed.HabitID)
		assert.Equal(t, habitID, *completed.HabitID)

		log := repo.lastLog
		require.NotNil(t, log)
		assert.Equal(t, habitID, log.HabitID)
		assert.Equal(t, userID, log.UserID)
		assert.True(t, log.Completed)
		require.NotNil(t, log.CompletedAt)

		now := time.Now()
		want := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		assert.True(t, time.Time(log.Date).Equal(want))
	})

	t.Run("completing twice is a no-op", func(t *testing.T) {
		repo, svc, created := setup(false)

		_, err := svc.CompleteTask(ctx, userID, created.ID)
		require.NoError(t, err)
		_, err = svc.CompleteTask(ctx, userID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, repo.completeCalls)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, svc, _ := setup(false)

		_, err := svc.CompleteTask(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	habitID := uuid.New()

	taskRepo := newMockTaskRepository()
	habitRepo := &mockHabitRepository{habits: map[uuid.UUID]*habit.Habit{
		habitID: {ID: habitID, UserID: userID, Name: "Pushups", Kind: habit.KindBoolean},
	}}
	svc := newTestService(taskRepo, habitRepo)

	t.Run("defaults to pending", func(t *testing.T) {
		newTask := &Task{UserID: userID, Title: "stretch"}
		require.NoError(t, svc.CreateTask(ctx, newTask))
		assert.Equal(t, StatusPending, newTask.Status)
	})

	t.Run("missing title", func(t *testing.T) {
		newTask := &Task{UserID: userID}
		assert.ErrorIs(t, svc.CreateTask(ctx, newTask), ErrInvalidInput)
	})

	t.Run("linked habit must belong to the user", func(t *testing.T) {
		other := uuid.New()
		newTask := &Task{UserID: userID, Title: "stretch", HabitID: &other}
		assert.ErrorIs(t, svc.CreateTask(ctx, newTask), ErrInvalidInput)
	})
}

func TestStartTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	taskRepo := newMockTaskRepository()
	habitRepo := &mockHabitRepository{habits: map[uuid.UUID]*habit.Habit{}}
	svc := newTestService(taskRepo, habitRepo)

	created := &Task{UserID: userID, Title: "stretch"}
	require.NoError(t, svc.CreateTask(ctx, created))

	started, err := svc.StartTask(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	t.Run("completed task cannot restart", func(t *testing.T) {
		_, err := svc.CompleteTask(ctx, userID, created.ID)
		require.NoError(t, err)
		_, err = svc.StartTask(ctx, userID, created.ID)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
