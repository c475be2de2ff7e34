package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/internal/domain/habit"
	"github.com/anirudhprmar/pushup-t3/internal/domain/user"
	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

// Scheduler reconciles the user_stats projection nightly. Log writes
// refresh stats transactionally; this sweep repairs drift from crashed
// transactions and rolls streaks over at midnight.
type Scheduler struct {
	db       *gorm.DB
	userRepo user.Repository
	logger   *logger.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(db *gorm.DB, userRepo user.Repository, log *logger.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		userRepo: userRepo,
		logger:   log,
		interval: 24 * time.Hour,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
	s.logger.Info("stats reconciliation scheduler started")
}

func (s *Scheduler) run() {
	defer close(s.done)

	// First run at the next midnight, then every interval.
	timer := time.NewTimer(untilNextMidnight(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-timer.C:
			s.reconcile()
			timer.Reset(s.interval)
		}
	}
}

func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ids, err := s.userRepo.AllUserIDs(ctx)
	if err != nil {
		s.logger.Error("stats reconciliation: failed to list users", zap.Error(err))
		return
	}

	failed := 0
	for _, id := range ids {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return habit.RefreshUserStats(tx, id)
		})
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.logger.Error("stats reconciliation finished with failures", zap.Int("failed", failed))
		return
	}
	s.logger.Info("stats reconciliation finished")
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	s.logger.Info("stats reconciliation scheduler stopped")
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
