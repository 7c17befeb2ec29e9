// Package extension is the browser extension's task sync logic: a local
// cache that is updated first, mirrored to the backend when possible.
package extension

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/apperr"
	"mood-journal-backend/internal/logging"
)

// Syncer applies task changes locally and then to the backend. Backend
// failures are logged and swallowed; the local change stays.
type Syncer struct {
	cache *Cache
	api   *Client
	log   hclog.Logger
	now   func() time.Time
}

func NewSyncer(cache *Cache, api *Client, log hclog.Logger) *Syncer {
	return &Syncer{cache: cache, api: api, log: logging.OrDiscard(log), now: time.Now}
}

func (s *Syncer) List(ctx context.Context) []LocalTask {
	return s.cache.List(ctx)
}

// Add creates a task. Blank text is ignored and returns ok=false.
func (s *Syncer) Add(ctx context.Context, text string) (task LocalTask, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return LocalTask{}, false, nil
	}

	t := LocalTask{
		LocalID:   uuid.NewString(),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.cache.Put(t); err != nil {
		return LocalTask{}, false, err
	}

	remote, err := s.api.CreateTask(ctx, t.Text, t.CreatedAt)
	if err != nil {
		s.warn("create", t, err)
		return t, true, nil
	}

	id := remote.ID
	t.BackendID = &id
	t.Done = remote.Done
	if !remote.CreatedAt.IsZero() {
		t.CreatedAt = remote.CreatedAt
	}
	if err := s.cache.Put(t); err != nil {
		return LocalTask{}, false, err
	}
	s.notify(ctx)
	return t, true, nil
}

func (s *Syncer) Toggle(ctx context.Context, localID string) (LocalTask, error) {
	t, err := s.cache.Get(localID)
	if err != nil {
		return LocalTask{}, err
	}
	t.Done = !t.Done
	if err := s.cache.Put(t); err != nil {
		return LocalTask{}, err
	}

	if t.BackendID != nil {
		done := t.Done
		if _, err := s.api.UpdateTask(ctx, *t.BackendID, nil, &done); err != nil {
			s.warn("toggle", t, err)
		} else {
			s.notify(ctx)
		}
	}
	return t, nil
}

// Edit replaces the text. Blank text leaves the task unchanged.
func (s *Syncer) Edit(ctx context.Context, localID, text string) (LocalTask, error) {
	t, err := s.cache.Get(localID)
	if err != nil {
		return LocalTask{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" || text == t.Text {
		return t, nil
	}
	t.Text = text
	if err := s.cache.Put(t); err != nil {
		return LocalTask{}, err
	}

	if t.BackendID != nil {
		if _, err := s.api.UpdateTask(ctx, *t.BackendID, &text, nil); err != nil {
			s.warn("edit", t, err)
		} else {
			s.notify(ctx)
		}
	}
	return t, nil
}

func (s *Syncer) Delete(ctx context.Context, localID string) error {
	t, err := s.cache.Get(localID)
	if err != nil {
		return err
	}
	if err := s.cache.Remove(localID); err != nil {
		return err
	}

	if t.BackendID != nil {
		if err := s.api.DeleteTask(ctx, *t.BackendID); err != nil {
			s.warn("delete", t, err)
		} else {
			s.notify(ctx)
		}
	}
	return nil
}

// Capture stores selected page text as a local-only task.
func (s *Syncer) Capture(text string) (LocalTask, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return LocalTask{}, false, nil
	}
	t := LocalTask{LocalID: uuid.NewString(), Text: text, CreatedAt: s.now().UTC()}
	if err := s.cache.Put(t); err != nil {
		return LocalTask{}, false, err
	}
	return t, true, nil
}

// CapturePage stores a page as a task, titled by its title or else its URL.
func (s *Syncer) CapturePage(title, url string) (LocalTask, bool, error) {
	if strings.TrimSpace(title) == "" {
		title = url
	}
	return s.Capture(title)
}

func (s *Syncer) notify(ctx context.Context) {
	if err := s.api.Notify(ctx); err != nil {
		s.log.Warn("notify web pages failed", "error", err)
	}
}

func (s *Syncer) warn(op string, t LocalTask, err error) {
	s.log.Warn("backend sync failed", "op", op, "local_id", t.LocalID, "error", apperr.Upstream("extension "+op, err))
}
