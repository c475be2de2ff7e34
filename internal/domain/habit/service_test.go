package habit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

type mockRepository struct {
	habits map[uuid.UUID]*Habit
	logs   map[uuid.UUID][]Log

	upsertCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		habits: make(map[uuid.UUID]*Habit),
		logs:   make(map[uuid.UUID][]Log),
	}
}

func (m *mockRepository) Create(_ context.Context, h *Habit) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	m.habits[h.ID] = h
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, userID, habitID uuid.UUID) (*Habit, error) {
	h, ok := m.habits[habitID]
	if !ok || h.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return h, nil
}

func (m *mockRepository) GetByUser(_ context.Context, userID uuid.UUID) ([]Habit, error) {
	var out []Habit
	for _, h := range m.habits {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(_ context.Context, h *Habit) error {
	if _, ok := m.habits[h.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.habits[h.ID] = h
	return nil
}

func (m *mockRepository) Delete(_ context.Context, userID, habitID uuid.UUID) error {
	h, ok := m.habits[habitID]
	if !ok || h.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.habits, habitID)
	delete(m.logs, habitID)
	return nil
}

func (m *mockRepository) UpsertLog(_ context.Context, log *Log) error {
	m.upsertCalls++
	existing := m.logs[log.HabitID]
	for i, l := range existing {
		if time.Time(l.Date).Equal(time.Time(log.Date)) {
			log.ID = l.ID
			existing[i] = *log
			return nil
		}
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	m.logs[log.HabitID] = append(existing, *log)
	return nil
}

func (m *mockRepository) GetLogs(_ context.Context, habitID uuid.UUID, since time.Time) ([]Log, error) {
	var out []Log
	for _, l := range m.logs[habitID] {
		if since.IsZero() || !time.Time(l.Date).Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockRepository) GetLogsByUser(_ context.Context, userID uuid.UUID, since time.Time) ([]Log, error) {
	var out []Log
	for _, logs := range m.logs {
		for _, l := range logs {
			if l.UserID != userID {
				continue
			}
			if since.IsZero() || !time.Time(l.Date).Before(since) {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (m *mockRepository) GetLogsByYear(_ context.Context, userID uuid.UUID, year int) ([]Log, error) {
	var out []Log
	for _, logs := range m.logs {
		for _, l := range logs {
			if l.UserID == userID && time.Time(l.Date).Year() == year {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func newTestService(repo Repository) *service {
	return &service{
		repo:   repo,
		logger: logger.NewLogger(),
		now:    func() time.Time { return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func TestCreateHabitValidation(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("boolean habit", func(t *testing.T) {
		h := &Habit{UserID: userID, Name: "Read", Kind: KindBoolean}
		require.NoError(t, svc.CreateHabit(ctx, h))
		assert.NotEqual(t, uuid.Nil, h.ID)
	})

	t.Run("numeric habit requires target", func(t *testing.T) {
		h := &Habit{UserID: userID, Name: "Pushups", Kind: KindNumeric}
		assert.ErrorIs(t, svc.CreateHabit(ctx, h), ErrInvalidInput)

		h.TargetValue = intPtr(50)
		h.TargetUnit = strPtr("reps")
		assert.NoError(t, svc.CreateHabit(ctx, h))
	})

	t.Run("boolean habit rejects target", func(t *testing.T) {
		h := &Habit{UserID: userID, Name: "Read", Kind: KindBoolean, TargetValue: intPtr(10)}
		assert.ErrorIs(t, svc.CreateHabit(ctx, h), ErrInvalidInput)
	})

	t.Run("unknown kind", func(t *testing.T) {
		h := &Habit{UserID: userID, Name: "Read", Kind: Kind("weekly")}
		assert.ErrorIs(t, svc.CreateHabit(ctx, h), ErrInvalidInput)
	})

	t.Run("missing user", func(t *testing.T) {
		h := &Habit{Name: "Read", Kind: KindBoolean}
		assert.ErrorIs(t, svc.CreateHabit(ctx, h), ErrInvalidInput)
	})
}

func TestLogHabit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	setup := func(t *testing.T) (*mockRepository, *service, *Habit) {
		repo := newMockRepository()
		svc := newTestService(repo)
		h := &Habit{
			UserID:    userID,
			Name:      "Read",
			Kind:      KindBoolean,
			CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, svc.CreateHabit(ctx, h))
		return repo, svc, h
	}

	t.Run("same day logged twice keeps one row", func(t *testing.T) {
		repo, svc, h := setup(t)

		first := &Log{HabitID: h.ID, UserID: userID, Completed: false}
		require.NoError(t, svc.LogHabit(ctx, first))

		second := &Log{HabitID: h.ID, UserID: userID, Completed: true}
		require.NoError(t, svc.LogHabit(ctx, second))

		assert.Equal(t, 2, repo.upsertCalls)
		require.Len(t, repo.logs[h.ID], 1)
		assert.True(t, repo.logs[h.ID][0].Completed)
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		repo, svc, h := setup(t)

		log := &Log{HabitID: h.ID, UserID: userID, Completed: true}
		require.NoError(t, svc.LogHabit(ctx, log))

		want := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
		assert.True(t, time.Time(repo.logs[h.ID][0].Date).Equal(want))
	})

	t.Run("future date rejected", func(t *testing.T) {
		_, svc, h := setup(t)

		log := &Log{
			HabitID:   h.ID,
			UserID:    userID,
			Date:      datatypes.Date(time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)),
			Completed: true,
		}
		assert.ErrorIs(t, svc.LogHabit(ctx, log), ErrFutureDate)
	})

	t.Run("date before habit existed rejected", func(t *testing.T) {
		_, svc, h := setup(t)

		log := &Log{
			HabitID:   h.ID,
			UserID:    userID,
			Date:      datatypes.Date(time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC)),
			Completed: true,
		}
		assert.ErrorIs(t, svc.LogHabit(ctx, log), ErrInvalidInput)
	})

	t.Run("boolean habit rejects value", func(t *testing.T) {
		_, svc, h := setup(t)

		log := &Log{HabitID: h.ID, UserID: userID, Completed: true, Value: intPtr(10)}
		assert.ErrorIs(t, svc.LogHabit(ctx, log), ErrInvalidInput)
	})

	t.Run("unknown habit", func(t *testing.T) {
		_, svc, _ := setup(t)

		log := &Log{HabitID: uuid.New(), UserID: userID, Completed: true}
		assert.ErrorIs(t, svc.LogHabit(ctx, log), ErrHabitNotFound)
	})
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := newMockRepository()
	svc := newTestService(repo)

	h := &Habit{
		UserID:      userID,
		Name:        "Pushups",
		Kind:        KindNumeric,
		TargetValue: intPtr(50),
		TargetUnit:  strPtr("reps"),
		CreatedAt:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, svc.CreateHabit(ctx, h))

	for d := 13; d <= 15; d++ {
		log := &Log{
			HabitID:   h.ID,
			UserID:    userID,
			Date:      datatypes.Date(time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)),
			Completed: true,
			Value:     intPtr(40),
		}
		require.NoError(t, svc.LogHabit(ctx, log))
	}

	t.Run("bundles all four windows", func(t *testing.T) {
		stats, err := svc.Statistics(ctx, userID, h.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Week.TotalDays)
		assert.Equal(t, 100, stats.Week.CompletionRate)
		assert.Equal(t, 3, stats.Week.CurrentStreak)
		require.NotNil(t, stats.Week.AvgActualValue)
		assert.InDelta(t, 40.0, *stats.Week.AvgActualValue, 0.001)
		assert.Equal(t, 3, stats.AllTime.TotalDays)
	})

	t.Run("unknown habit", func(t *testing.T) {
		_, err := svc.Statistics(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, ErrHabitNotFound)
	})
}

func TestNotCompletedToday(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := newMockRepository()
	svc := newTestService(repo)

	done := &Habit{UserID: userID, Name: "Read", Kind: KindBoolean, CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	pending := &Habit{UserID: userID, Name: "Run", Kind: KindBoolean, CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.CreateHabit(ctx, done))
	require.NoError(t, svc.CreateHabit(ctx, pending))

	_, err := svc.CompleteHabit(ctx, userID, done.ID, nil, "")
	require.NoError(t, err)

	remaining, err := svc.NotCompletedToday(ctx, userID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, pending.ID, remaining[0].ID)
}

func TestStartHabit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	setup := func(t *testing.T) (*mockRepository, *service, *Habit) {
		repo := newMockRepository()
		svc := newTestService(repo)
		h := &Habit{
			UserID:    userID,
			Name:      "Read",
			Kind:      KindBoolean,
			CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, svc.CreateHabit(ctx, h))
		return repo, svc, h
	}

	t.Run("creates today's log with started_at", func(t *testing.T) {
		repo, svc, h := setup(t)

		log, err := svc.StartHabit(ctx, userID, h.ID)
		require.NoError(t, err)
		assert.NotNil(t, log.StartedAt)
		assert.False(t, log.Completed)
		assert.Equal(t, 1, repo.upsertCalls)
	})

	t.Run("never undoes a completion", func(t *testing.T) {
		repo, svc, h := setup(t)

		_, err := svc.CompleteHabit(ctx, userID, h.ID, nil, "")
		require.NoError(t, err)

		log, err := svc.StartHabit(ctx, userID, h.ID)
		require.NoError(t, err)
		assert.True(t, log.Completed)
		assert.Equal(t, 1, repo.upsertCalls)
	})
}

func TestListHabitsPairsTodayLog(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := newMockRepository()
	svc := newTestService(repo)

	logged := &Habit{UserID: userID, Name: "Read", Kind: KindBoolean, CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	bare := &Habit{UserID: userID, Name: "Run", Kind: KindBoolean, CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.CreateHabit(ctx, logged))
	require.NoError(t, svc.CreateHabit(ctx, bare))

	_, err := svc.CompleteHabit(ctx, userID, logged.ID, nil, "")
	require.NoError(t, err)

	habits, err := svc.ListHabits(ctx, userID)
	require.NoError(t, err)
	require.Len(t, habits, 2)

	byID := make(map[uuid.UUID]HabitWithToday)
	for _, h := range habits {
		byID[h.ID] = h
	}
	require.NotNil(t, byID[logged.ID].TodayLog)
	assert.True(t, byID[logged.ID].TodayLog.Completed)
	assert.Nil(t, byID[bare.ID].TodayLog)
}

func TestUpdateHabitKeepsKind(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := newMockRepository()
	svc := newTestService(repo)

	h := &Habit{UserID: userID, Name: "Read", Kind: KindBoolean}
	require.NoError(t, svc.CreateHabit(ctx, h))

	updated := &Habit{ID: h.ID, UserID: userID, Name: "Read more", Kind: KindNumeric}
	require.NoError(t, svc.UpdateHabit(ctx, updated))
	assert.Equal(t, KindBoolean, updated.Kind)
}
