// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/qaforum/apiserver/config"
	"golang.org/x/term"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	// FormatAuto picks text for terminals and JSON otherwise.
	FormatAuto = "auto"
)

// New returns a logger writing to w. Unknown levels fall back to info and
// unknown formats to text.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = FormatText
		}
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, options)
	default:
		handler = slog.NewTextHandler(w, options)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name such as "debug" or "WARN" to a slog level.
func ParseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
