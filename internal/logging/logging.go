// ABOUTME: zerolog logger construction for the CLI and MCP server.
// ABOUTME: Writes human-readable console output at a configurable level.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console logger. Unknown or empty levels fall back to info.
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component derives a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
