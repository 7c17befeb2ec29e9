package tasks

import (
	"testing"
	"time"
)

var berlin = time.FixedZone("CET", 3600)

func at(day int, hour int) time.Time {
	return time.Date(2026, time.October, day, hour, 0, 0, 0, berlin)
}

func TestWeeklySummary_CountsPerDay(t *testing.T) {
	today := at(15, 18)
	tasks := []Task{
		{ID: 1, Done: true, CreatedAt: at(15, 9)},
		{ID: 2, Done: true, CreatedAt: at(15, 10)},
		{ID: 3, Done: true, CreatedAt: at(13, 8)},
		{ID: 4, Done: true, CreatedAt: at(10, 23)},
		{ID: 5, Done: true, CreatedAt: at(10, 1)},
		{ID: 6, Done: true, CreatedAt: at(10, 12)},
		{ID: 7, Done: false, CreatedAt: at(14, 12)},
		{ID: 8, Done: true, CreatedAt: at(8, 12)}, // outside the window
	}

	days := WeeklySummary(tasks, today, berlin)
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7", len(days))
	}

	want := map[string]int{
		"2026-10-09": 0,
		"2026-10-10": 3,
		"2026-10-11": 0,
		"2026-10-12": 0,
		"2026-10-13": 1,
		"2026-10-14": 0,
		"2026-10-15": 2,
	}
	sum := 0
	for _, d := range days {
		n, ok := want[d.Day]
		if !ok {
			t.Fatalf("unexpected day %s", d.Day)
		}
		if d.Completed != n {
			t.Fatalf("%s completed = %d, want %d", d.Day, d.Completed, n)
		}
		sum += d.Completed
	}
	if sum != 6 {
		t.Fatalf("sum = %d, want 6", sum)
	}

	if days[0].Day != "2026-10-09" || days[6].Day != "2026-10-15" {
		t.Fatalf("days not ordered oldest first: %s .. %s", days[0].Day, days[6].Day)
	}
	if days[6].Label != "Today" {
		t.Fatalf("last label = %q, want Today", days[6].Label)
	}
	if days[5].Label != "Wed" {
		t.Fatalf("yesterday label = %q, want Wed", days[5].Label)
	}
}

func TestWeeklySummary_UsesLocalCreationDate(t *testing.T) {
	// 23:30 UTC on the 14th is already the 15th in CET
	created := time.Date(2026, time.October, 14, 23, 30, 0, 0, time.UTC)
	tasks := []Task{{Done: true, CreatedAt: created}}

	days := WeeklySummary(tasks, at(15, 12), berlin)
	if days[6].Completed != 1 {
		t.Fatalf("today completed = %d, want 1", days[6].Completed)
	}
	if days[5].Completed != 0 {
		t.Fatalf("yesterday completed = %d, want 0", days[5].Completed)
	}
}

func TestIntensity_Clamped(t *testing.T) {
	cases := map[int]int{
		-1: 0,
		0:  0,
		1:  20,
		4:  80,
		5:  100,
		6:  100,
		50: 100,
	}
	for completed, want := range cases {
		if got := Intensity(completed); got != want {
			t.Errorf("Intensity(%d) = %d, want %d", completed, got, want)
		}
	}
}

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		completed, goal, want int
	}{
		{2, 5, 40},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{7, 5, 100},
		{1, 0, 100}, // goal clamps to 1
		{0, -4, 0},
	}
	for _, tc := range cases {
		if got := CompletionRate(tc.completed, tc.goal); got != tc.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", tc.completed, tc.goal, got, tc.want)
		}
	}
}

func TestSummarize_WorkedExample(t *testing.T) {
	today := at(15, 20)
	tasks := []Task{
		{Done: true, CreatedAt: at(15, 8)},
		{Done: true, CreatedAt: at(15, 9)},
		{Done: false, CreatedAt: at(14, 9)},
	}

	s := Summarize(tasks, DefaultDailyGoal, today, berlin)

	if s.CompletedToday != 2 {
		t.Fatalf("completed today = %d, want 2", s.CompletedToday)
	}
	if s.CompletionRateToday != 40 {
		t.Fatalf("completion rate = %d, want 40", s.CompletionRateToday)
	}
	if s.Days[6].Intensity != 40 {
		t.Fatalf("today intensity = %d, want 40", s.Days[6].Intensity)
	}
	if s.WeeklyGoal != 35 {
		t.Fatalf("weekly goal = %d, want 35", s.WeeklyGoal)
	}
	if s.TotalCompletedWeek != 2 {
		t.Fatalf("weekly total = %d, want 2", s.TotalCompletedWeek)
	}
	if s.Today != "2026-10-15" {
		t.Fatalf("today = %q", s.Today)
	}
}

func TestSummarize_ClampsGoal(t *testing.T) {
	s := Summarize(nil, 0, at(15, 12), berlin)
	if s.DailyGoal != 1 || s.WeeklyGoal != 7 {
		t.Fatalf("goal = %d weekly = %d, want 1 and 7", s.DailyGoal, s.WeeklyGoal)
	}
}

func TestWindowStart(t *testing.T) {
	got := WindowStart(at(15, 18), berlin)
	want := time.Date(2026, time.October, 9, 0, 0, 0, 0, berlin)
	if !got.Equal(want) {
		t.Fatalf("window start = %s, want %s", got, want)
	}
}
