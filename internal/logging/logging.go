// Package logging constructs the shared structured logger both binaries
// use, honoring LOG_LEVEL and the resolved color policy.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when LOG_LEVEL is unset or fails to parse.
const DefaultLevel = "info"

// LevelFromEnv returns the LOG_LEVEL environment variable's value, or
// DefaultLevel if it is unset.
func LevelFromEnv() string {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		return v
	}
	return DefaultLevel
}

// New constructs a leveled logger tagged with a "component" field
// (sender/receiver), writing to stderr. When colorEnabled is false the
// logfmt formatter is used instead of the default colorized text
// formatter, so output is plain regardless of what the terminal supports.
func New(component, levelStr string, colorEnabled bool) *log.Logger {
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		level = log.InfoLevel
	}

	formatter := log.TextFormatter
	if !colorEnabled {
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Formatter:       formatter,
	})
	return logger.With("component", component)
}
