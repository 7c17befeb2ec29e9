package tasks

import "time"

const (
	SourceWeb       = "web"
	SourceExtension = "extension"
)

type Task struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}

// NewTask is the input to Store.Create. A nil CreatedAt means "now".
type NewTask struct {
	Text      string
	Done      bool
	CreatedAt *time.Time
	Source    string
}

// Patch holds the fields of a partial update; nil fields are left alone.
type Patch struct {
	Text *string
	Done *bool
}

func (p Patch) Empty() bool {
	return p.Text == nil && p.Done == nil
}
