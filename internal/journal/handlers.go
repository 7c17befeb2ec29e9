package journal

import (
	"encoding/json"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/respond"
)

type Recorder interface {
	Record(r *http.Request, eventName string, props map[string]any)
}

// -------------------------------
// HANDLERS
// -------------------------------

// SaveHandler upserts the entry for body.dateKey. mood may be a number or
// null; anything falsy is stored as null.
func SaveHandler(store *Store, rec Recorder, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DateKey string          `json:"dateKey"`
			Mood    json.RawMessage `json:"mood"`
			Note    *string         `json:"note"`
		}
		if err := respond.Decode(r, &body); err != nil {
			respond.Err(w, r, log, err)
			return
		}

		in := Save{DateKey: body.DateKey}
		if len(body.Mood) > 0 && string(body.Mood) != "null" {
			if err := json.Unmarshal(body.Mood, &in.Mood); err != nil {
				respond.Error(w, http.StatusBadRequest, "mood must be an integer")
				return
			}
		}
		if body.Note != nil {
			in.Note = *body.Note
		}

		e, err := store.Upsert(r.Context(), in)
		if err != nil {
			respond.Err(w, r, log, err)
			return
		}

		if rec != nil {
			rec.Record(r, "journal_saved", map[string]any{
				"date_key": e.DateKey,
				"has_mood": e.Mood != nil,
				"note_len": len(in.Note),
			})
		}

		respond.JSON(w, http.StatusOK, e)
	}
}

func GetHandler(store *Store, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.Fetch(r.Context(), r.PathValue("dateKey"))
		if err != nil {
			respond.Err(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, e)
	}
}

// ListHandler serves ?from=YYYY-MM-DD&to=YYYY-MM-DD, both optional.
func ListHandler(store *Store, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), q.Get("from"), q.Get("to"))
		if err != nil {
			respond.Err(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}
