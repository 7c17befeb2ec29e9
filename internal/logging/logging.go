package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New builds the process root logger. Components derive their own with Named.
func New(level string, json bool, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "moodjournal",
		Level:      lvl,
		Output:     out,
		JSONFormat: json,
	})
}

// Discard is used by tests and by callers that were given no logger.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

// OrDiscard returns l, or a null logger when l is nil.
func OrDiscard(l hclog.Logger) hclog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
