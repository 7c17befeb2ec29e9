package analytics

import (
	"encoding/json"
	"net/http"

	"mood-journal-backend/internal/respond"
)

// app_opened: the web page or the extension popup was opened
func AppOpenedHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"` // popup/tab/web/unknown
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		from := body.From
		switch from {
		case "popup", "tab", "web":
		default:
			from = "unknown"
		}

		rec.Record(r, "app_opened", map[string]any{
			"cold_start": body.ColdStart,
			"from":       from,
		})

		respond.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
