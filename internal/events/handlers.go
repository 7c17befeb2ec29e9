package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/respond"
)

const keepAlive = 25 * time.Second

// StreamHandler serves GET /api/events as a server-sent event stream.
func StreamHandler(bus *Bus, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			respond.Error(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		ch, cancel := bus.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case e, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(e)
				if err != nil {
					if log != nil {
						log.Warn("encode event", "error", err)
					}
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
				flusher.Flush()
			}
		}
	}
}

// NotifyHandler serves POST /api/events: a client announces that it changed
// tasks and every open stream is told to re-poll.
func NotifyHandler(bus *Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Source string `json:"source"`
		}
		// an empty body is still a valid notification
		_ = json.NewDecoder(r.Body).Decode(&body)

		bus.Publish(Event{Type: TypeUpdated, Source: strings.TrimSpace(body.Source), Reason: "client_notify"})

		respond.JSON(w, http.StatusAccepted, map[string]any{"ok": true})
	}
}
