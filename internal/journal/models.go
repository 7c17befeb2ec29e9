package journal

import "time"

const (
	MinMood = 1
	MaxMood = 5

	dateKeyLayout = "2006-01-02"
)

// Entry is one day's mood and note. Mood and Note are nil when unset.
type Entry struct {
	ID        int64     `json:"id"`
	DateKey   string    `json:"date_key"`
	Mood      *int      `json:"mood"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Save is the input to Store.Upsert. A zero Mood and an empty Note are
// stored as null.
type Save struct {
	DateKey string
	Mood    int
	Note    string
}
