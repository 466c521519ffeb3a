// Package logging builds the structured loggers used across embscope. Records go through
// log/slog; charmbracelet/log renders them so terminal output matches the viewer's styling.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Supported output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// New returns a logger writing to w at the given level ("debug", "info", "warn", "error")
// in the given format. Empty values mean info and text.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	if level == "" {
		level = "info"
	}
	parsedLevel, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	formatter, err := parseFormat(format)
	if err != nil {
		return nil, err
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           parsedLevel,
		Formatter:       formatter,
		ReportTimestamp: formatter != charmlog.TextFormatter,
		Prefix:          "embscope",
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseFormat(format string) (charmlog.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return charmlog.TextFormatter, nil
	case FormatJSON:
		return charmlog.JSONFormatter, nil
	case FormatLogfmt:
		return charmlog.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format %q (want text, json or logfmt)", format)
	}
}
