package extension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

const taskDir = "tasks"

// ErrNoTask is returned for a local id that is not in the cache.
var ErrNoTask = errors.New("extension: no such local task")

// LocalTask is the extension's own copy of a task. BackendID is nil until
// the backend has acknowledged the create.
type LocalTask struct {
	LocalID   string    `json:"local_id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	BackendID *int64    `json:"backend_id"`
}

// Cache keeps one JSON file per local task under dir/tasks.
type Cache struct {
	d *diskv.Diskv
}

func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("extension: cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("extension: create cache dir: %w", err)
	}
	return &Cache{d: diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      1024 * 1024,
	})}, nil
}

func (c *Cache) Get(localID string) (LocalTask, error) {
	if localID == "" || !c.d.Has(localID) {
		return LocalTask{}, ErrNoTask
	}
	b, err := c.d.Read(localID)
	if err != nil {
		return LocalTask{}, err
	}
	var t LocalTask
	if err := json.Unmarshal(b, &t); err != nil {
		return LocalTask{}, fmt.Errorf("extension: decode %s: %w", localID, err)
	}
	return t, nil
}

func (c *Cache) Put(t LocalTask) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.d.Write(t.LocalID, b)
}

// Remove is a no-op for unknown ids.
func (c *Cache) Remove(localID string) error {
	if !c.d.Has(localID) {
		return nil
	}
	return c.d.Erase(localID)
}

// List returns incomplete tasks first, each group oldest first. Unreadable
// files are skipped.
func (c *Cache) List(ctx context.Context) []LocalTask {
	all := make([]LocalTask, 0)
	for key := range c.d.Keys(ctx.Done()) {
		t, err := c.Get(key)
		if err != nil {
			continue
		}
		all = append(all, t)
	}
	sortTasks(all)
	return all
}

func sortTasks(tasks []LocalTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Done != b.Done {
			return !a.Done
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.LocalID < b.LocalID
	})
}

func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{taskDir}, FileName: key}
}

func pathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}
