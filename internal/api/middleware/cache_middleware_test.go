package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/anirudhprmar/pushup-t3/internal/domain/events"
)

type fakeClearer struct {
	patterns []string
}

func (f *fakeClearer) ClearByPattern(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func TestDrainInvalidations(t *testing.T) {
	userA := uuid.New().String()
	userB := uuid.New().String()

	eventCh := make(chan events.DashboardEvent, 3)
	eventCh <- events.DashboardEvent{Type: events.HabitLogged, UserID: userA}
	eventCh <- events.DashboardEvent{Type: events.TaskCompleted, UserID: userB}
	eventCh <- events.DashboardEvent{Type: events.HabitLogged, UserID: userA}
	close(eventCh)

	clearer := &fakeClearer{}
	drainInvalidations(context.Background(), clearer, eventCh)

	assert.Equal(t, []string{
		"resp:" + userA + ":*",
		"resp:" + userB + ":*",
		"resp:" + userA + ":*",
	}, clearer.patterns)
}
