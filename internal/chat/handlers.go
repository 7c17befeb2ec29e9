package chat

import (
	"encoding/json"
	"net/http"

	"mood-journal-backend/internal/ai"
	"mood-journal-backend/internal/respond"
)

type Recorder interface {
	Record(r *http.Request, eventName string, props map[string]any)
}

// ChatHandler answers 200 {reply} or, when the relay fell back,
// 500 {error, reply}. A body that is not an object with a messages array is
// relayed as an empty conversation.
func ChatHandler(relay *Relay, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []ai.InboundMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		res := relay.Relay(r.Context(), body.Messages)

		if rec != nil {
			rec.Record(r, "chat_message_sent", map[string]any{
				"messages": len(body.Messages),
				"fallback": res.Fallback,
			})
		}

		if res.Fallback {
			respond.JSON(w, http.StatusInternalServerError, map[string]string{
				"error": "chat server error",
				"reply": res.Reply,
			})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"reply": res.Reply})
	}
}
