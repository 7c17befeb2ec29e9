package goals

import (
	"net/http"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/apperr"
	"mood-journal-backend/internal/respond"
)

func GetGoalHandler(store *Store, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := store.Get(r.Context())
		if err != nil {
			respond.Err(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, g)
	}
}

func SetGoalHandler(store *Store, log hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DailyGoal *int `json:"daily_goal"`
		}
		if err := respond.Decode(r, &body); err != nil {
			respond.Err(w, r, log, err)
			return
		}
		if body.DailyGoal == nil {
			respond.Err(w, r, log, apperr.Validation("set goal", "daily_goal is required"))
			return
		}

		g, err := store.Set(r.Context(), *body.DailyGoal)
		if err != nil {
			respond.Err(w, r, log, err)
			return
		}
		respond.JSON(w, http.StatusOK, g)
	}
}
