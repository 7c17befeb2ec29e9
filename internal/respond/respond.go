// Package respond writes JSON bodies and maps apperr kinds to HTTP statuses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/apperr"
)

const serverError = "Server error"

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Err writes the response for err. Validation and not-found messages go to
// the client as-is; everything else is logged and reported generically.
func Err(w http.ResponseWriter, r *http.Request, log hclog.Logger, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		Error(w, http.StatusBadRequest, apperr.Message(err))
	case apperr.KindNotFound:
		Error(w, http.StatusNotFound, apperr.Message(err))
	default:
		if log != nil {
			log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		Error(w, http.StatusInternalServerError, serverError)
	}
}

// Decode reads a JSON body into dst, reporting malformed input as a
// validation error.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("decode body", "invalid json")
	}
	return nil
}
