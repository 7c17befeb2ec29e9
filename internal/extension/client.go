package extension

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mood-journal-backend/internal/events"
	"mood-journal-backend/internal/tasks"
)

const platform = "extension"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Client talks to the mood journal REST API as the browser extension does.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateTask(ctx context.Context, text string, createdAt time.Time) (tasks.Task, error) {
	var out tasks.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]any{
		"text":      text,
		"done":      false,
		"createdAt": createdAt.UTC().Format(time.RFC3339Nano),
		"source":    tasks.SourceExtension,
	}, &out)
	return out, err
}

// UpdateTask sends only the non-nil fields.
func (c *Client) UpdateTask(ctx context.Context, id int64, text *string, done *bool) (tasks.Task, error) {
	body := map[string]any{}
	if text != nil {
		body["text"] = *text
	}
	if done != nil {
		body["done"] = *done
	}
	var out tasks.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+strconv.FormatInt(id, 10), body, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out)
	return out, err
}

// Notify asks the backend to tell open web pages that tasks changed.
func (c *Client) Notify(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/events", map[string]string{
		"type":   events.TypeUpdated,
		"source": platform,
	}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Platform", platform)

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return &APIError{Method: method, Path: path, Status: res.StatusCode}
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
