package habit

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Period selects the lookback window for habit statistics.
type Period string

const (
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodAllTime Period = "all"
)

// Days returns the window length in days, or 0 for the all-time period.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodQuarter:
		return 90
	default:
		return 0
	}
}

// PeriodStats summarizes one habit over a lookback window.
type PeriodStats struct {
	TotalDays      int      `json:"total_days"`
	CompletedDays  int      `json:"completed_days"`
	CompletionRate int      `json:"completion_rate"`
	CurrentStreak  int      `json:"current_streak"`
	AvgActualValue *float64 `json:"avg_actual_value,omitempty"`
}

// Statistics bundles the four standard windows for one habit.
type Statistics struct {
	Week       PeriodStats `json:"week"`
	Month      PeriodStats `json:"month"`
	NinetyDays PeriodStats `json:"ninety_days"`
	AllTime    PeriodStats `json:"all_time"`
}

// MonthStat is one month's aggregate across all habits existing by that
// month's end.
type MonthStat struct {
	Month          string `json:"month"`
	HabitCount     int    `json:"habit_count"`
	CompletionRate int    `json:"completion_rate"`
	Growth         *int   `json:"growth"`
}

// Note is a dated free-text journal entry extracted from habit logs.
type Note struct {
	HabitID   string    `json:"habit_id"`
	HabitName string    `json:"habit_name,omitempty"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
}

// Streaks holds the user-level consistency counters kept on the
// leaderboard projection.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

const dayFormat = "2006-01-02"

// day truncates a time to its calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func logDay(l Log) time.Time {
	return day(time.Time(l.Date))
}

// roundPercent computes round(part/total*100), guarding division by zero.
func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// CurrentStreak walks the logs from the most recent date backwards,
// counting consecutive completed days. The count stops at the first
// incomplete log or at a calendar gap between logged days.
func CurrentStreak(logs []Log) int {
	if len(logs) == 0 {
		return 0
	}
	sorted := make([]Log, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool {
		return logDay(sorted[i]).After(logDay(sorted[j]))
	})

	streak := 0
	var prev time.Time
	for _, l := range sorted {
		if !l.Completed {
			break
		}
		d := logDay(l)
		if streak > 0 && !d.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
		prev = d
	}
	return streak
}

// ComputePeriodStats aggregates one habit's logs over the given period,
// anchored at today. The average actual value covers completed valued
// logs only and is nil when there are none.
func ComputePeriodStats(logs []Log, period Period, today time.Time) PeriodStats {
	var stats PeriodStats

	var cutoff time.Time
	if days := period.Days(); days > 0 {
		cutoff = day(today).AddDate(0, 0, -(days - 1))
	}

	var valueSum, valueCount int
	var window []Log
	for _, l := range logs {
		d := logDay(l)
		if !cutoff.IsZero() && d.Before(cutoff) {
			continue
		}
		if d.After(day(today)) {
			continue
		}
		window = append(window, l)
		stats.TotalDays++
		if l.Completed {
			stats.CompletedDays++
			if l.Value != nil {
				valueSum += *l.Value
				valueCount++
			}
		}
	}

	stats.CompletionRate = roundPercent(stats.CompletedDays, stats.TotalDays)
	stats.CurrentStreak = CurrentStreak(window)
	if valueCount > 0 {
		avg := float64(valueSum) / float64(valueCount)
		stats.AvgActualValue = &avg
	}
	return stats
}

// ComputeStatistics evaluates all four standard windows over one shared
// log slice.
func ComputeStatistics(logs []Log, today time.Time) Statistics {
	return Statistics{
		Week:       ComputePeriodStats(logs, PeriodWeek, today),
		Month:      ComputePeriodStats(logs, PeriodMonth, today),
		NinetyDays: ComputePeriodStats(logs, PeriodQuarter, today),
		AllTime:    ComputePeriodStats(logs, PeriodAllTime, today),
	}
}

// fullyCompleted reports whether every habit eligible on the day has a
// completed log, and whether any habit is eligible at all. A habit is
// eligible once it existed by that day.
func fullyCompleted(habits []Habit, done map[string]struct{}, d time.Time) (bool, bool) {
	eligible := 0
	for _, h := range habits {
		if day(h.CreatedAt).After(d) {
			continue
		}
		eligible++
		if _, ok := done[h.ID.String()]; !ok {
			return false, true
		}
	}
	return eligible > 0, eligible > 0
}

func completionsByDay(logs []Log, year int, today time.Time) map[time.Time]map[string]struct{} {
	out := make(map[time.Time]map[string]struct{})
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		d := logDay(l)
		if d.Year() != year || d.After(day(today)) {
			continue
		}
		if out[d] == nil {
			out[d] = make(map[string]struct{})
		}
		out[d][l.HabitID.String()] = struct{}{}
	}
	return out
}

func yearRange(year int, today time.Time) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := day(today)
	if end.Year() > year {
		end = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return start, end
}

// CompletionDayNumbers returns the sequence [1..N] where N counts the
// days of the given year, up to today, on which every eligible habit was
// completed. Zero habits yields an empty slice, never an error.
func CompletionDayNumbers(habits []Habit, logs []Log, year int, today time.Time) []int {
	if len(habits) == 0 {
		return []int{}
	}

	completed := completionsByDay(logs, year, today)
	start, end := yearRange(year, today)

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if full, any := fullyCompleted(habits, completed[d], d); any && full {
			count++
		}
	}

	days := make([]int, count)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

// CompletionDayMap maps each logged day of the year, plus today, to
// whether it was fully completed. Today is present even when nothing
// is logged yet, defaulting to false. Unlogged past days are omitted
// to keep the payload proportional to the log history.
func CompletionDayMap(habits []Habit, logs []Log, year int, today time.Time) map[string]bool {
	completed := completionsByDay(logs, year, today)
	anchor := day(today)

	days := make(map[time.Time]struct{})
	for _, l := range logs {
		d := logDay(l)
		if d.Year() == year && !d.After(anchor) {
			days[d] = struct{}{}
		}
	}
	if anchor.Year() == year {
		days[anchor] = struct{}{}
	}

	out := make(map[string]bool, len(days))
	for d := range days {
		full, any := fullyCompleted(habits, completed[d], d)
		out[d.Format(dayFormat)] = any && full
	}
	return out
}

// ConsistencyStreaks computes the user-level current and longest runs of
// consecutive fully-completed days. A run is current when it ends today
// or yesterday.
func ConsistencyStreaks(habits []Habit, logs []Log, today time.Time) Streaks {
	fullDays := fullyCompletedDays(habits, logs, day(today))
	if len(fullDays) == 0 {
		return Streaks{}
	}

	sort.Slice(fullDays, func(i, j int) bool { return fullDays[i].Before(fullDays[j]) })

	var streaks Streaks
	run := 1
	for i := 1; i < len(fullDays); i++ {
		if fullDays[i].Equal(fullDays[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			if run > streaks.Longest {
				streaks.Longest = run
			}
			run = 1
		}
	}
	if run > streaks.Longest {
		streaks.Longest = run
	}

	last := fullDays[len(fullDays)-1]
	anchor := day(today)
	if last.Equal(anchor) || last.Equal(anchor.AddDate(0, 0, -1)) {
		streaks.Current = run
	}
	return streaks
}

func fullyCompletedDays(habits []Habit, logs []Log, today time.Time) []time.Time {
	if len(habits) == 0 {
		return nil
	}

	completed := make(map[time.Time]map[string]struct{})
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		d := logDay(l)
		if d.After(today) {
			continue
		}
		if completed[d] == nil {
			completed[d] = make(map[string]struct{})
		}
		completed[d][l.HabitID.String()] = struct{}{}
	}

	var days []time.Time
	for d, done := range completed {
		if full, any := fullyCompleted(habits, done, d); any && full {
			days = append(days, d)
		}
	}
	return days
}

// ComputeMonthlyAnalysis walks January through today's month of today's
// year. Each habit's monthly rate is its completed days over its logged
// days in that month, and the month averages those rates across habits
// existing by its end. Growth is nil for January, 100 when a zero month
// is followed by a non-zero one, 0 when both are zero, and the rounded
// percent change otherwise.
func ComputeMonthlyAnalysis(habits []Habit, logs []Log, today time.Time) []MonthStat {
	anchor := day(today)
	year := anchor.Year()

	loggedDays := make(map[string]map[time.Month]int)
	completedDays := make(map[string]map[time.Month]int)
	for _, l := range logs {
		d := logDay(l)
		if d.Year() != year || d.After(anchor) {
			continue
		}
		id := l.HabitID.String()
		if loggedDays[id] == nil {
			loggedDays[id] = make(map[time.Month]int)
			completedDays[id] = make(map[time.Month]int)
		}
		loggedDays[id][d.Month()]++
		if l.Completed {
			completedDays[id][d.Month()]++
		}
	}

	var months []MonthStat
	var prevRate int
	for m := time.January; m <= anchor.Month(); m++ {
		monthEnd := time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC)

		var rateSum, habitCount int
		for _, h := range habits {
			if day(h.CreatedAt).After(monthEnd) {
				continue
			}
			habitCount++
			id := h.ID.String()
			rateSum += roundPercent(completedDays[id][m], loggedDays[id][m])
		}

		// Mean of the per-habit rates; rateSum is already in percent.
		stat := MonthStat{
			Month:          m.String(),
			HabitCount:     habitCount,
			CompletionRate: roundPercent(rateSum, habitCount*100),
		}

		if m > time.January {
			var growth int
			switch {
			case prevRate == 0 && stat.CompletionRate == 0:
				growth = 0
			case prevRate == 0:
				growth = 100
			default:
				growth = int(math.Round(float64(stat.CompletionRate-prevRate) / float64(prevRate) * 100))
			}
			stat.Growth = &growth
		}

		prevRate = stat.CompletionRate
		months = append(months, stat)
	}
	return months
}

// RecentNotes returns up to limit non-blank log notes, newest first.
func RecentNotes(logs []Log, habitNames map[string]string, limit int) []Note {
	if limit <= 0 {
		limit = 10
	}

	var notes []Note
	for _, l := range logs {
		text := strings.TrimSpace(l.Note)
		if text == "" {
			continue
		}
		notes = append(notes, Note{
			HabitID:   l.HabitID.String(),
			HabitName: habitNames[l.HabitID.String()],
			Date:      logDay(l),
			Text:      text,
		})
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].Date.After(notes[j].Date) })
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes
}

// ThirtyDayPercent scores a habit by completions over the last 30 days
// against a fixed denominator of 30 expected days.
func ThirtyDayPercent(logs []Log, today time.Time) int {
	cutoff := day(today).AddDate(0, 0, -29)
	completed := 0
	for _, l := range logs {
		d := logDay(l)
		if l.Completed && !d.Before(cutoff) && !d.After(day(today)) {
			completed++
		}
	}
	return roundPercent(completed, 30)
}
