package goals

import "time"

const DefaultDailyGoal = 5

// Goal is the user's daily task target. There is a single row.
type Goal struct {
	DailyGoal  int       `json:"daily_goal"`
	WeeklyGoal int       `json:"weekly_goal"`
	UpdatedAt  time.Time `json:"updated_at"`
}
