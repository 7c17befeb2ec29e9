package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/apperr"
	"mood-journal-backend/internal/events"
	"mood-journal-backend/internal/respond"
)

type Publisher interface {
	Publish(e events.Event)
}

type Recorder interface {
	Record(r *http.Request, eventName string, props map[string]any)
}

// GoalSource supplies the stored daily goal for the summary endpoint.
type GoalSource interface {
	DailyGoal(ctx context.Context) (int, error)
}

// Deps are the collaborators shared by the task handlers. Events, Analytics
// and Goals may be nil.
type Deps struct {
	Store     *Store
	Events    Publisher
	Analytics Recorder
	Goals     GoalSource
	Log       hclog.Logger
	Now       func() time.Time
	Location  *time.Location
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

func (d Deps) changed(r *http.Request, reason string) {
	if d.Events == nil {
		return
	}
	d.Events.Publish(events.Event{
		Type:   events.TypeUpdated,
		Source: r.Header.Get("X-Platform"),
		Reason: reason,
	})
}

func (d Deps) record(r *http.Request, name string, props map[string]any) {
	if d.Analytics != nil {
		d.Analytics.Record(r, name, props)
	}
}

// -------------------------------
// HANDLERS
// -------------------------------

func ListTasksHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Store.List(r.Context())
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}

func CreateTaskHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text      json.RawMessage `json:"text"`
			Done      *bool           `json:"done"`
			CreatedAt *string         `json:"createdAt"`
			Source    string          `json:"source"`
		}
		if err := respond.Decode(r, &body); err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		text, ok := stringField(body.Text)
		if !ok || strings.TrimSpace(text) == "" {
			respond.Error(w, http.StatusBadRequest, "text is required")
			return
		}

		in := NewTask{Text: text, Source: body.Source}
		if body.Done != nil {
			in.Done = *body.Done
		}
		if body.CreatedAt != nil && strings.TrimSpace(*body.CreatedAt) != "" {
			created, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*body.CreatedAt))
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "createdAt must be an RFC 3339 timestamp")
				return
			}
			in.CreatedAt = &created
		}

		task, err := d.Store.Create(r.Context(), in)
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		d.record(r, "task_created", map[string]any{
			"task_id":  task.ID,
			"text_len": len(task.Text),
			"source":   task.Source,
			"done":     task.Done,
		})
		d.changed(r, "task_created")

		respond.JSON(w, http.StatusCreated, task)
	}
}

func UpdateTaskHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskID(r)
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		var body struct {
			Text json.RawMessage `json:"text"`
			Done json.RawMessage `json:"done"`
		}
		if err := respond.Decode(r, &body); err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		// fields of the wrong type are ignored, as if absent
		var p Patch
		if text, ok := stringField(body.Text); ok {
			p.Text = &text
		}
		if done, ok := boolField(body.Done); ok {
			p.Done = &done
		}

		task, err := d.Store.Update(r.Context(), id, p)
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		if p.Done != nil {
			name := "task_uncompleted"
			if *p.Done {
				name = "task_completed"
			}
			d.record(r, name, map[string]any{
				"task_id":                task.ID,
				"time_since_created_sec": int(d.now().Sub(task.CreatedAt).Seconds()),
			})
		}
		if p.Text != nil {
			d.record(r, "task_updated", map[string]any{
				"task_id":  task.ID,
				"text_len": len(task.Text),
			})
		}
		d.changed(r, "task_updated")

		respond.JSON(w, http.StatusOK, task)
	}
}

func DeleteTaskHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskID(r)
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		if err := d.Store.Delete(r.Context(), id); err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}

		d.record(r, "task_deleted", map[string]any{"task_id": id})
		d.changed(r, "task_deleted")

		w.WriteHeader(http.StatusNoContent)
	}
}

// WeeklyHandler serves the last seven days, today included, oldest first.
func WeeklyHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.now()
		loc := d.location()

		list, err := d.Store.ListCreatedSince(r.Context(), WindowStart(now, loc))
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}
		respond.JSON(w, http.StatusOK, WeeklySummary(list, now, loc))
	}
}

// SummaryHandler serves today's completion figures. ?goal=N overrides the
// stored daily goal.
func SummaryHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goal := DefaultDailyGoal
		if q := strings.TrimSpace(r.URL.Query().Get("goal")); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "goal must be an integer")
				return
			}
			goal = n
		} else if d.Goals != nil {
			stored, err := d.Goals.DailyGoal(r.Context())
			if err != nil {
				respond.Err(w, r, d.Log, err)
				return
			}
			goal = stored
		}

		now := d.now()
		loc := d.location()

		list, err := d.Store.ListCreatedSince(r.Context(), WindowStart(now, loc))
		if err != nil {
			respond.Err(w, r, d.Log, err)
			return
		}
		respond.JSON(w, http.StatusOK, Summarize(list, goal, now, loc))
	}
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("parse task id", "invalid task id")
	}
	return id, nil
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func boolField(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}
