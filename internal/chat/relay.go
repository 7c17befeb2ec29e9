// Package chat relays journal chat conversations to the completion service.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/hashicorp/go-hclog"

	"mood-journal-backend/internal/ai"
	"mood-journal-backend/internal/apperr"
	"mood-journal-backend/internal/logging"
)

const (
	FallbackReply = "Sorry, I had trouble connecting to my brain just now. Please try again in a moment."
	EmptyReply    = "I'm here with you. Sometimes it's hard to find the right words, but I'm listening."
)

var errNotConfigured = errors.New("completion client not configured")

type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// Result is always usable as a reply. Fallback is set when the completion
// service failed.
type Result struct {
	Reply    string
	Fallback bool
}

type Relay struct {
	ai  Completer
	log hclog.Logger
}

func NewRelay(c Completer, log hclog.Logger) *Relay {
	return &Relay{ai: c, log: logging.OrDiscard(log)}
}

// Relay forwards the conversation once, without retries.
func (r *Relay) Relay(ctx context.Context, messages []ai.InboundMessage) Result {
	if r.ai == nil {
		r.log.Error("chat completion failed", "error", apperr.Upstream("chat relay", errNotConfigured))
		return Result{Reply: FallbackReply, Fallback: true}
	}

	reply, err := r.ai.Complete(ctx, ai.BuildMessages(messages))
	if err != nil {
		r.log.Error("chat completion failed", "error", apperr.Upstream("chat relay", err))
		return Result{Reply: FallbackReply, Fallback: true}
	}
	if strings.TrimSpace(reply) == "" {
		return Result{Reply: EmptyReply}
	}
	return Result{Reply: reply}
}
