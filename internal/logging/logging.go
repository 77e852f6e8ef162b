// Package logging builds the slog logger used by the command-line tools.
//
// Records are written one per line as
//
//	15:04:05 INFO  message key=value other="quoted value"
//
// with the level label colored when writing to a terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// LevelSuccess sits between Info and Warn. It marks completed work.
const LevelSuccess = slog.Level(2)

// Options configures New.
type Options struct {
	// Level is the minimum level written.
	Level slog.Leveler

	// Color enables colored level labels.
	Color bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return slog.New(newConsoleHandler(w, opts))
}

// ParseLevel maps a config level name to a slog level. "verbose" is an
// alias for debug.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "success":
		return LevelSuccess, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var levelStyles = map[slog.Level]lipgloss.Style{
	slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	LevelSuccess:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

func levelLabel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < LevelSuccess:
		return "INFO"
	case level < slog.LevelWarn:
		return "OK"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

func styleFor(level slog.Level) lipgloss.Style {
	switch {
	case level < slog.LevelInfo:
		return levelStyles[slog.LevelDebug]
	case level < LevelSuccess:
		return levelStyles[slog.LevelInfo]
	case level < slog.LevelWarn:
		return levelStyles[LevelSuccess]
	case level < slog.LevelError:
		return levelStyles[slog.LevelWarn]
	default:
		return levelStyles[slog.LevelError]
	}
}
