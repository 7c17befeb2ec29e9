package extension

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBackend records calls and answers like the tasks API.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	bodies   []map[string]any
	platform []string
	fail     bool
	nextID   int64
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, body)
	f.platform = append(f.platform, r.Header.Get("X-Platform"))

	if f.fail {
		http.Error(w, `{"error":"Server error"}`, http.StatusInternalServerError)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/tasks":
		f.nextID++
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": f.nextID, "text": body["text"], "done": false,
			"created_at": body["createdAt"], "source": body["source"],
		})
	case r.Method == http.MethodPatch:
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "text": "x", "done": body["done"] == true})
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/api/events":
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) callList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestSyncer(t *testing.T) (*Syncer, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	s := NewSyncer(cache, NewClient(srv.URL, time.Second), nil)
	return s, fb
}

func TestAdd_SyncsAndNotifies(t *testing.T) {
	s, fb := newTestSyncer(t)
	ctx := context.Background()

	task, ok, err := s.Add(ctx, "  read a chapter  ")
	if err != nil || !ok {
		t.Fatalf("add: ok=%v err=%v", ok, err)
	}
	if task.Text != "read a chapter" || task.BackendID == nil || *task.BackendID != 1 {
		t.Fatalf("task = %+v", task)
	}

	want := []string{"POST /api/tasks", "POST /api/events"}
	if got := fb.callList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if fb.bodies[0]["source"] != "extension" || fb.bodies[0]["done"] != false {
		t.Fatalf("create body = %v", fb.bodies[0])
	}
	if fb.bodies[1]["type"] != "updated" {
		t.Fatalf("notify body = %v", fb.bodies[1])
	}
	for _, p := range fb.platform {
		if p != "extension" {
			t.Fatalf("X-Platform = %q", p)
		}
	}

	cached := s.List(ctx)
	if len(cached) != 1 || cached[0].BackendID == nil {
		t.Fatalf("cache = %+v", cached)
	}
}

func TestAdd_BlankIgnored(t *testing.T) {
	s, fb := newTestSyncer(t)
	if _, ok, err := s.Add(context.Background(), "   "); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if len(fb.callList()) != 0 || len(s.List(context.Background())) != 0 {
		t.Fatalf("blank text reached cache or backend")
	}
}

func TestAdd_BackendDownKeepsLocalTask(t *testing.T) {
	s, fb := newTestSyncer(t)
	fb.mu.Lock()
	fb.fail = true
	fb.mu.Unlock()

	task, ok, err := s.Add(context.Background(), "stretch")
	if err != nil || !ok {
		t.Fatalf("add: ok=%v err=%v", ok, err)
	}
	if task.BackendID != nil {
		t.Fatalf("backend id set on failure: %+v", task)
	}
	if got := fb.callList(); len(got) != 1 {
		t.Fatalf("calls = %v, want only the failed create", got)
	}
	if len(s.List(context.Background())) != 1 {
		t.Fatalf("local task missing")
	}
}

func TestToggleEditDelete(t *testing.T) {
	s, fb := newTestSyncer(t)
	ctx := context.Background()

	task, _, err := s.Add(ctx, "water plants")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	toggled, err := s.Toggle(ctx, task.LocalID)
	if err != nil || !toggled.Done {
		t.Fatalf("toggle: %+v %v", toggled, err)
	}
	edited, err := s.Edit(ctx, task.LocalID, "water the plants")
	if err != nil || edited.Text != "water the plants" || !edited.Done {
		t.Fatalf("edit: %+v %v", edited, err)
	}
	if err := s.Delete(ctx, task.LocalID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{
		"POST /api/tasks", "POST /api/events",
		"PATCH /api/tasks/1", "POST /api/events",
		"PATCH /api/tasks/1", "POST /api/events",
		"DELETE /api/tasks/1", "POST /api/events",
	}
	if got := fb.callList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v", got)
	}
	if fb.bodies[2]["done"] != true || fb.bodies[4]["text"] != "water the plants" {
		t.Fatalf("patch bodies = %v / %v", fb.bodies[2], fb.bodies[4])
	}
	if _, err := s.Toggle(ctx, task.LocalID); err != ErrNoTask {
		t.Fatalf("toggle deleted: err = %v", err)
	}
}

func TestUnsyncedTasksStayLocal(t *testing.T) {
	s, fb := newTestSyncer(t)
	ctx := context.Background()

	task, ok, err := s.CapturePage("", "https://example.com/article")
	if err != nil || !ok || task.Text != "https://example.com/article" {
		t.Fatalf("capture page: %+v ok=%v err=%v", task, ok, err)
	}
	if _, err := s.Toggle(ctx, task.LocalID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.Delete(ctx, task.LocalID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := fb.callList(); len(got) != 0 {
		t.Fatalf("local-only task hit backend: %v", got)
	}
}

func TestCacheOrdering(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	base := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	for i, tc := range []struct {
		id   string
		done bool
	}{{"a", true}, {"b", false}, {"c", false}, {"d", true}} {
		if err := cache.Put(LocalTask{LocalID: tc.id, Text: tc.id, Done: tc.done, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	var order []string
	for _, task := range cache.List(context.Background()) {
		order = append(order, task.LocalID)
	}
	if got := strings.Join(order, ""); got != "bcad" {
		t.Fatalf("order = %s, want bcad", got)
	}

	if err := cache.Remove("zzz"); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
}
