package habit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anirudhprmar/pushup-t3/internal/domain/user"
)

type Repository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, userID, habitID uuid.UUID) (*Habit, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]Habit, error)
	Update(ctx context.Context, habit *Habit) error
	Delete(ctx context.Context, userID, habitID uuid.UUID) error

	UpsertLog(ctx context.Context, log *Log) error
	GetLogs(ctx context.Context, habitID uuid.UUID, since time.Time) ([]Log, error)
	GetLogsByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]Log, error)
	GetLogsByYear(ctx context.Context, userID uuid.UUID, year int) ([]Log, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

func (r *gormRepository) GetByID(ctx context.Context, userID, habitID uuid.UUID) (*Habit, error) {
	var habit Habit
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", habitID, userID).
		First(&habit).Error
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *gormRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]Habit, error) {
	var habits []Habit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&habits).Error
	return habits, err
}

func (r *gormRepository) Update(ctx context.Context, habit *Habit) error {
	result := r.db.WithContext(ctx).
		Model(&Habit{}).
		Where("id = ? AND user_id = ?", habit.ID, habit.UserID).
		Updates(habit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", habitID, userID).Delete(&Habit{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("habit_id = ?", habitID).Delete(&Log{}).Error; err != nil {
			return err
		}
		// Tasks live in a sibling package; cascade by table to avoid an
		// import cycle.
		if err := tx.Exec(
			"UPDATE tasks SET deleted_at = NOW() WHERE habit_id = ? AND deleted_at IS NULL",
			habitID,
		).Error; err != nil {
			return err
		}
		return RefreshUserStats(tx, userID)
	})
}

// UpsertLog writes one (habit, date) log and refreshes the owner's
// leaderboard projection in the same transaction. A second write for
// the same habit and date updates the existing row.
func (r *gormRepository) UpsertLog(ctx context.Context, log *Log) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := UpsertLogTx(tx, log); err != nil {
			return err
		}
		return RefreshUserStats(tx, log.UserID)
	})
}

// UpsertLogTx performs the raw log upsert inside an existing transaction.
// Shared with the task repository so completing a linked task writes its
// habit log in the same transaction.
func UpsertLogTx(tx *gorm.DB, log *Log) error {
	// started_at is excluded so it survives later upserts for the day.
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed", "value", "note", "completed_at", "updated_at",
		}),
	}).Create(log).Error
}

// RefreshUserStats recomputes the user's leaderboard projection from
// their habits and logs inside the given transaction.
func RefreshUserStats(tx *gorm.DB, userID uuid.UUID) error {
	var habits []Habit
	if err := tx.Where("user_id = ?", userID).Find(&habits).Error; err != nil {
		return err
	}
	var logs []Log
	if err := tx.Where("user_id = ?", userID).Find(&logs).Error; err != nil {
		return err
	}

	completed := 0
	for _, l := range logs {
		if l.Completed {
			completed++
		}
	}
	streaks := ConsistencyStreaks(habits, logs, time.Now())
	consistent := len(fullyCompletedDays(habits, logs, day(time.Now())))

	stats := user.Stats{
		UserID:               userID,
		TotalCompletedHabits: completed,
		TotalConsistentDays:  consistent,
		CurrentStreak:        streaks.Current,
		LongestStreak:        streaks.Longest,
		UpdatedAt:            time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_completed_habits", "total_consistent_days",
			"current_streak", "longest_streak", "updated_at",
		}),
	}).Create(&stats).Error
}

func (r *gormRepository) GetLogs(ctx context.Context, habitID uuid.UUID, since time.Time) ([]Log, error) {
	var logs []Log
	q := r.db.WithContext(ctx).Where("habit_id = ?", habitID)
	if !since.IsZero() {
		q = q.Where("date >= ?", since)
	}
	err := q.Order("date DESC").Find(&logs).Error
	return logs, err
}

func (r *gormRepository) GetLogsByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]Log, error) {
	var logs []Log
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("date >= ?", since)
	}
	err := q.Order("date DESC").Find(&logs).Error
	return logs, err
}

func (r *gormRepository) GetLogsByYear(ctx context.Context, userID uuid.UUID, year int) ([]Log, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var logs []Log
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date ASC").
		Find(&logs).Error
	return logs, err
}
