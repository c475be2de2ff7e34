package habit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anirudhprmar/pushup-t3/pkg/logger"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrFutureDate    = errors.New("cannot log a future date")
)

// HabitWithToday pairs a habit with today's log, nil when the day is
// untouched.
type HabitWithToday struct {
	Habit
	TodayLog *Log `json:"today_log"`
}

// HabitWithStats is a habit joined with its 30-day dashboard score.
type HabitWithStats struct {
	Habit
	CompletionPercent int  `json:"completion_percent"`
	CurrentStreak     int  `json:"current_streak"`
	CompletedToday    bool `json:"completed_today"`
}

type Service interface {
	CreateHabit(ctx context.Context, habit *Habit) error
	GetHabit(ctx context.Context, userID, habitID uuid.UUID) (*Habit, error)
	ListHabits(ctx context.Context, userID uuid.UUID) ([]HabitWithToday, error)
	UpdateHabit(ctx context.Context, habit *Habit) error
	DeleteHabit(ctx context.Context, userID, habitID uuid.UUID) error

	LogHabit(ctx context.Context, log *Log) error
	StartHabit(ctx context.Context, userID, habitID uuid.UUID) (*Log, error)
	CompleteHabit(ctx context.Context, userID, habitID uuid.UUID, value *int, note string) (*Log, error)
	GetLogs(ctx context.Context, userID, habitID uuid.UUID, days int) ([]Log, error)

	Statistics(ctx context.Context, userID, habitID uuid.UUID) (*Statistics, error)
	ListWithStats(ctx context.Context, userID uuid.UUID) ([]HabitWithStats, error)
	CompletionDays(ctx context.Context, userID uuid.UUID, year int) ([]int, error)
	CompletionDaysDetailed(ctx context.Context, userID uuid.UUID, year int) (map[string]bool, error)
	MonthlyAnalysis(ctx context.Context, userID uuid.UUID) ([]MonthStat, error)
	RecentNotes(ctx context.Context, userID uuid.UUID, limit int) ([]Note, error)
	NotCompletedToday(ctx context.Context, userID uuid.UUID) ([]Habit, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (s *service) CreateHabit(ctx context.Context, habit *Habit) error {
	if habit.UserID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := habit.validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, habit); err != nil {
		s.logger.Error("failed to create habit", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) GetHabit(ctx context.Context, userID, habitID uuid.UUID) (*Habit, error) {
	habit, err := s.repo.GetByID(ctx, userID, habitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return habit, nil
}

func (s *service) ListHabits(ctx context.Context, userID uuid.UUID) ([]HabitWithToday, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := day(s.now())
	logs, err := s.repo.GetLogsByUser(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	todayLogs := make(map[uuid.UUID]Log)
	for _, l := range logs {
		if logDay(l).Equal(today) {
			todayLogs[l.HabitID] = l
		}
	}

	result := make([]HabitWithToday, 0, len(habits))
	for _, h := range habits {
		entry := HabitWithToday{Habit: h}
		if l, ok := todayLogs[h.ID]; ok {
			entry.TodayLog = &l
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *service) UpdateHabit(ctx context.Context, habit *Habit) error {
	existing, err := s.GetHabit(ctx, habit.UserID, habit.ID)
	if err != nil {
		return err
	}
	// Kind cannot change after creation; measured fields follow the
	// existing kind's contract.
	habit.Kind = existing.Kind
	if err := habit.validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, habit); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return err
	}
	return nil
}

func (s *service) DeleteHabit(ctx context.Context, userID, habitID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, habitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return err
	}
	return nil
}

// LogHabit validates and upserts one (habit, date) entry. Writing the
// same day twice overwrites the earlier entry.
func (s *service) LogHabit(ctx context.Context, log *Log) error {
	habit, err := s.GetHabit(ctx, log.UserID, log.HabitID)
	if err != nil {
		return err
	}

	d := logDay(*log)
	if d.IsZero() {
		d = day(s.now())
		log.Date = datatypes.Date(d)
	}
	if d.After(day(s.now())) {
		return ErrFutureDate
	}
	if day(habit.CreatedAt).After(d) {
		return ErrInvalidInput
	}
	if !habit.Kind.Measured() && log.Value != nil {
		return ErrInvalidInput
	}
	if log.Value != nil && *log.Value < 0 {
		return ErrInvalidInput
	}
	if log.Completed && log.CompletedAt == nil {
		now := s.now()
		log.CompletedAt = &now
	}

	if err := s.repo.UpsertLog(ctx, log); err != nil {
		s.logger.Error("failed to upsert habit log", zap.Error(err))
		return err
	}
	return nil
}

// StartHabit lazily creates today's log and stamps started_at once. An
// existing log for today is returned untouched so starting never undoes
// a completion.
func (s *service) StartHabit(ctx context.Context, userID, habitID uuid.UUID) (*Log, error) {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}

	today := day(s.now())
	existing, err := s.repo.GetLogs(ctx, habitID, today)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if logDay(existing[i]).Equal(today) {
			return &existing[i], nil
		}
	}

	now := s.now()
	log := &Log{
		HabitID:   habitID,
		UserID:    userID,
		Date:      datatypes.Date(today),
		Completed: false,
		StartedAt: &now,
	}
	if err := s.repo.UpsertLog(ctx, log); err != nil {
		s.logger.Error("failed to start habit log", zap.Error(err))
		return nil, err
	}
	return log, nil
}

func (s *service) CompleteHabit(ctx context.Context, userID, habitID uuid.UUID, value *int, note string) (*Log, error) {
	log := &Log{
		HabitID:   habitID,
		UserID:    userID,
		Date:      datatypes.Date(day(s.now())),
		Completed: true,
		Value:     value,
		Note:      note,
	}
	if err := s.LogHabit(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *service) GetLogs(ctx context.Context, userID, habitID uuid.UUID, days int) ([]Log, error) {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	var since time.Time
	if days > 0 {
		since = day(s.now()).AddDate(0, 0, -(days - 1))
	}
	return s.repo.GetLogs(ctx, habitID, since)
}

func (s *service) Statistics(ctx context.Context, userID, habitID uuid.UUID) (*Statistics, error) {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	logs, err := s.repo.GetLogs(ctx, habitID, time.Time{})
	if err != nil {
		return nil, err
	}
	stats := ComputeStatistics(logs, s.now())
	return &stats, nil
}

func (s *service) ListWithStats(ctx context.Context, userID uuid.UUID) ([]HabitWithStats, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.GetLogsByUser(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	byHabit := make(map[uuid.UUID][]Log)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}

	today := day(s.now())
	result := make([]HabitWithStats, 0, len(habits))
	for _, h := range habits {
		hl := byHabit[h.ID]
		entry := HabitWithStats{
			Habit:             h,
			CompletionPercent: ThirtyDayPercent(hl, today),
			CurrentStreak:     CurrentStreak(hl),
		}
		for _, l := range hl {
			if l.Completed && logDay(l).Equal(today) {
				entry.CompletedToday = true
				break
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *service) CompletionDays(ctx context.Context, userID uuid.UUID, year int) ([]int, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.GetLogsByYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return CompletionDayNumbers(habits, logs, year, s.now()), nil
}

func (s *service) CompletionDaysDetailed(ctx context.Context, userID uuid.UUID, year int) (map[string]bool, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.GetLogsByYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return CompletionDayMap(habits, logs, year, s.now()), nil
}

func (s *service) MonthlyAnalysis(ctx context.Context, userID uuid.UUID) ([]MonthStat, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.GetLogsByYear(ctx, userID, s.now().Year())
	if err != nil {
		return nil, err
	}
	return ComputeMonthlyAnalysis(habits, logs, s.now()), nil
}

func (s *service) RecentNotes(ctx context.Context, userID uuid.UUID, limit int) ([]Note, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.GetLogsByUser(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(habits))
	for _, h := range habits {
		names[h.ID.String()] = h.Name
	}
	return RecentNotes(logs, names, limit), nil
}

func (s *service) NotCompletedToday(ctx context.Context, userID uuid.UUID) ([]Habit, error) {
	habits, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := day(s.now())
	logs, err := s.repo.GetLogsByUser(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	doneToday := make(map[uuid.UUID]bool)
	for _, l := range logs {
		if l.Completed && logDay(l).Equal(today) {
			doneToday[l.HabitID] = true
		}
	}

	remaining := make([]Habit, 0, len(habits))
	for _, h := range habits {
		if !doneToday[h.ID] {
			remaining = append(remaining, h)
		}
	}
	return remaining, nil
}
