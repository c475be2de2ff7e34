package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

type mockRepository struct {
	users map[uuid.UUID]*User
	stats map[uuid.UUID]*Stats

	leaderboardCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[uuid.UUID]*User),
		stats: make(map[uuid.UUID]*Stats),
	}
}

func (m *mockRepository) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) GetStats(_ context.Context, userID uuid.UUID) (*Stats, error) {
	s, ok := m.stats[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *mockRepository) UpsertStats(_ context.Context, s *Stats) error {
	m.stats[s.UserID] = s
	return nil
}

func (m *mockRepository) Leaderboard(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	m.leaderboardCalls++
	var entries []LeaderboardEntry
	for id, s := range m.stats {
		entries = append(entries, LeaderboardEntry{
			UserID:              id,
			Name:                m.users[id].Name,
			TotalConsistentDays: s.TotalConsistentDays,
		})
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (m *mockRepository) AllUserIDs(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range m.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, nil, logger.NewLogger())
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := newTestService(repo)

	u := &User{Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, svc.Register(ctx, u))

	t.Run("fresh account has zeroed stats", func(t *testing.T) {
		profile, err := svc.Me(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, profile.User.ID)
		assert.Equal(t, 0, profile.Stats.TotalConsistentDays)
	})

	t.Run("stats joined when present", func(t *testing.T) {
		repo.stats[u.ID] = &Stats{UserID: u.ID, TotalConsistentDays: 12, CurrentStreak: 4}

		profile, err := svc.Me(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, profile.Stats.TotalConsistentDays)
		assert.Equal(t, 4, profile.Stats.CurrentStreak)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Me(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockRepository())

	assert.ErrorIs(t, svc.Register(ctx, &User{Name: "Ana"}), ErrInvalidInput)
	assert.ErrorIs(t, svc.Register(ctx, &User{Email: "ana@example.com"}), ErrInvalidInput)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := newTestService(repo)

	u := &User{Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, svc.Register(ctx, u))

	t.Run("seeds the stats projection", func(t *testing.T) {
		stats, ok := repo.stats[u.ID]
		require.True(t, ok)
		assert.Equal(t, 0, stats.TotalConsistentDays)
	})

	t.Run("existing email returns the existing account", func(t *testing.T) {
		again := &User{Email: "ana@example.com", Name: "Ana B"}
		require.NoError(t, svc.Register(ctx, again))
		assert.Equal(t, u.ID, again.ID)
		assert.Equal(t, "Ana", again.Name)
		assert.Len(t, repo.users, 1)
	})
}

func TestLeaderboardWithoutCache(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc := newTestService(repo)

	u := &User{Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, svc.Register(ctx, u))
	repo.stats[u.ID] = &Stats{UserID: u.ID, TotalConsistentDays: 30}

	entries, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Ana", entries[0].Name)
	assert.Equal(t, 30, entries[0].TotalConsistentDays)
	assert.Equal(t, 1, repo.leaderboardCalls)
}
