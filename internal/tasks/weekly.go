package tasks

import (
	"math"
	"time"
)

const (
	DefaultDailyGoal = 5
	summaryDays      = 7

	// a day with five completed tasks renders at full intensity
	intensityPerTask = 20
)

type WeeklySummaryDay struct {
	Day       string `json:"day"`
	Label     string `json:"label"`
	Completed int    `json:"completed"`
	Intensity int    `json:"intensity"`
}

type DailySummary struct {
	Today               string             `json:"today"`
	CompletedToday      int                `json:"completed_today"`
	DailyGoal           int                `json:"daily_goal"`
	CompletionRateToday int                `json:"completion_rate_today"`
	WeeklyGoal          int                `json:"weekly_goal"`
	TotalCompletedWeek  int                `json:"total_completed_week"`
	Days                []WeeklySummaryDay `json:"days"`
}

// DateKey formats t as YYYY-MM-DD in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// WindowStart is midnight, in loc, of the oldest day covered by WeeklySummary.
func WindowStart(today time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := today.In(loc).Date()
	return time.Date(y, m, d-(summaryDays-1), 0, 0, 0, 0, loc)
}

// WeeklySummary buckets completed tasks by local creation date over the seven
// days ending today, oldest first.
func WeeklySummary(tasks []Task, today time.Time, loc *time.Location) []WeeklySummaryDay {
	if loc == nil {
		loc = time.Local
	}

	counts := make(map[string]int, summaryDays)
	for _, t := range tasks {
		if t.Done {
			counts[DateKey(t.CreatedAt, loc)]++
		}
	}

	y, m, d := today.In(loc).Date()
	days := make([]WeeklySummaryDay, 0, summaryDays)
	for offset := summaryDays - 1; offset >= 0; offset-- {
		// noon keeps the calendar day stable across DST shifts
		day := time.Date(y, m, d-offset, 12, 0, 0, 0, loc)
		key := day.Format("2006-01-02")

		label := "Today"
		if offset != 0 {
			label = day.Weekday().String()[:3]
		}

		completed := counts[key]
		days = append(days, WeeklySummaryDay{
			Day:       key,
			Label:     label,
			Completed: completed,
			Intensity: Intensity(completed),
		})
	}
	return days
}

// Intensity scales completed linearly onto 0..100, independent of the daily goal.
func Intensity(completed int) int {
	if completed <= 0 {
		return 0
	}
	return min(100, completed*intensityPerTask)
}

// ClampGoal keeps the daily goal at one or more.
func ClampGoal(goal int) int {
	return max(1, goal)
}

func WeeklyGoal(dailyGoal int) int {
	return ClampGoal(dailyGoal) * summaryDays
}

// CompletionRate is completed as a rounded percentage of the goal, capped at 100.
func CompletionRate(completed, dailyGoal int) int {
	goal := ClampGoal(dailyGoal)
	rate := int(math.Round(float64(completed) / float64(goal) * 100))
	return min(100, max(0, rate))
}

// Summarize derives the today and weekly figures for the sidebar.
func Summarize(tasks []Task, dailyGoal int, today time.Time, loc *time.Location) DailySummary {
	goal := ClampGoal(dailyGoal)
	days := WeeklySummary(tasks, today, loc)

	total := 0
	for _, d := range days {
		total += d.Completed
	}
	completedToday := days[len(days)-1].Completed

	return DailySummary{
		Today:               days[len(days)-1].Day,
		CompletedToday:      completedToday,
		DailyGoal:           goal,
		CompletionRateToday: CompletionRate(completedToday, goal),
		WeeklyGoal:          WeeklyGoal(goal),
		TotalCompletedWeek:  total,
		Days:                days,
	}
}
