package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/db"
	"mood-journal-backend/internal/logging"
)

const (
	PlatformWeb       = "web"
	PlatformExtension = "extension"
	PlatformUnknown   = "unknown"
)

// Envelope is what we store with every event.
type Envelope struct {
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case PlatformWeb, PlatformExtension:
	default:
		platform = PlatformUnknown
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// SourceEventKeyFromRequest returns the client-provided idempotency key, if any.
// A repeated key is ignored on insert.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Log inserts one analytics event. Callers pass sanitized props, never raw
// journal or chat text.
func Log(ctx context.Context, d *db.DB, env Envelope, eventName string, props any, sourceEventKey string, at time.Time) error {
	if eventName == "" {
		return nil
	}

	b, err := json.Marshal(props)
	if err != nil {
		return err
	}

	_, err = d.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			session_id,
			platform, app_version, device_locale,
			source_event_key,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_event_key) DO NOTHING
	`, eventName, db.NewTimestamp(at),
		nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	return err
}

// Recorder logs events for handlers. Failures are logged and never reach the
// caller's response.
type Recorder struct {
	db  *db.DB
	log hclog.Logger
	now func() time.Time
}

func NewRecorder(d *db.DB, log hclog.Logger) *Recorder {
	return &Recorder{db: d, log: logging.OrDiscard(log), now: time.Now}
}

func (rec *Recorder) Record(r *http.Request, eventName string, props map[string]any) {
	if rec == nil || rec.db == nil {
		return
	}
	err := Log(r.Context(), rec.db, FromRequest(r), eventName, props, SourceEventKeyFromRequest(r), rec.now())
	if err != nil {
		rec.log.Warn("analytics event dropped", "event", eventName, "error", err)
	}
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
