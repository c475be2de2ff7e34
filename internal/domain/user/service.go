package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/cache"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	leaderboardKey  = "leaderboard:top"
	leaderboardTTL  = 2 * time.Minute
	leaderboardSize = 50
)

// Profile is a user joined with their consistency counters.
type Profile struct {
	User  User  `json:"user"`
	Stats Stats `json:"stats"`
}

type Service interface {
	Register(ctx context.Context, user *User) error
	Me(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, user *User) error
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

type service struct {
	repo   Repository
	cache  *cache.RedisCache
	logger *logger.Logger
}

func NewService(repo Repository, redisCache *cache.RedisCache, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		cache:  redisCache,
		logger: log,
	}
}

// Register provisions the local account. Registering an email that
// already exists returns the existing account rather than an error, so
// the upstream auth provider can call it on every sign-in.
func (s *service) Register(ctx context.Context, user *User) error {
	if user.Email == "" || user.Name == "" {
		return ErrInvalidInput
	}

	existing, err := s.repo.GetByEmail(ctx, user.Email)
	if err == nil {
		*user = *existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return err
	}
	// Seed the leaderboard projection so the profile reads a row from
	// day one.
	if err := s.repo.UpsertStats(ctx, &Stats{UserID: user.ID}); err != nil {
		s.logger.Error("failed to seed user stats", zap.Error(err))
		return err
	}
	return nil
}

// Me returns the user's profile with their stats projection. A user
// with no logged habits yet gets zeroed stats rather than an error.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		stats = &Stats{UserID: userID}
	}
	return &Profile{User: *u, Stats: *stats}, nil
}

func (s *service) UpdateProfile(ctx context.Context, user *User) error {
	if user.Name == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Leaderboard serves the top 50 from redis when warm, falling back to
// the database and repopulating the cache on a miss.
func (s *service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.cache != nil {
		var cached []LeaderboardEntry
		err := s.cache.Get(ctx, leaderboardKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Error("leaderboard cache read failed", zap.Error(err))
		}
	}

	entries, err := s.repo.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardKey, entries, leaderboardTTL); err != nil {
			s.logger.Error("leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}
