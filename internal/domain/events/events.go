package events

import "time"

// Dashboard event types published on cache invalidation.
const (
	HabitCreated   = "habit.created"
	HabitUpdated   = "habit.updated"
	HabitDeleted   = "habit.deleted"
	HabitLogged    = "habit.logged"
	TaskCreated    = "task.created"
	TaskUpdated    = "task.updated"
	TaskCompleted  = "task.completed"
	TaskDeleted    = "task.deleted"
	StatsRefreshed = "stats.refreshed"
)

// DashboardEvent is broadcast over redis pub/sub so dashboard consumers
// can drop stale cached aggregates for the affected user.
type DashboardEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	EntityID  string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
