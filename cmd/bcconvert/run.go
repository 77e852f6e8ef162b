package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/handiism/bandcamp-converter/internal/config"
	"github.com/handiism/bandcamp-converter/internal/convert"
	"github.com/handiism/bandcamp-converter/internal/deps"
	"github.com/handiism/bandcamp-converter/internal/logging"
	"github.com/handiism/bandcamp-converter/internal/model"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// runConversion loads settings, checks the external programs and runs one
// conversion over args. With dirs set, args are album directories rather
// than archive search roots.
func runConversion(cmd *cobra.Command, opts *options, args []string, dirs bool) error {
	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), settings)
	if err != nil {
		return err
	}

	if !settings.DryRun {
		if err := deps.Check(settings); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := convert.NewManager(settings, logProgress(logger))
	defer manager.Close()

	start := time.Now()
	var results []model.Result
	if dirs {
		results, err = manager.ConvertDirs(ctx, args)
	} else {
		results, err = manager.Run(ctx, args)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) > 0 {
		fmt.Fprintln(out, renderResults(results, settings.DryRun))
	}
	summary := manager.Summary()
	fmt.Fprintf(out, "%d files: %d converted, %d skipped, %d failed (%s, %s written)\n",
		summary.Total, summary.Converted, summary.Skipped, summary.Failed,
		time.Since(start).Round(time.Millisecond), humanize.Bytes(outputBytes(results)))

	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}
	return nil
}

func newLogger(w io.Writer, settings *config.Settings) (*slog.Logger, error) {
	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, err
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = logging.ColorEnabled(f)
	}
	logger := logging.New(w, logging.Options{Level: level, Color: color})
	return logger.With("run", uuid.NewString()), nil
}

// logProgress forwards manager events to logger.
func logProgress(logger *slog.Logger) func(convert.ProgressEvent) {
	return func(event convert.ProgressEvent) {
		level := slogLevel(event.Level)
		if event.Path != "" && level >= slog.LevelWarn {
			logger.Log(context.Background(), level, event.Message, "path", event.Path)
			return
		}
		logger.Log(context.Background(), level, event.Message)
	}
}

func slogLevel(level convert.ProgressLevel) slog.Level {
	switch level {
	case convert.LevelVerbose:
		return slog.LevelDebug
	case convert.LevelSuccess:
		return logging.LevelSuccess
	case convert.LevelWarning:
		return slog.LevelWarn
	case convert.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func renderResults(results []model.Result, dryRun bool) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		outcome := res.Outcome.String()
		if dryRun && res.Outcome == model.OutcomePending {
			outcome = "would convert"
		}
		reason := ""
		if res.Reason != nil {
			reason = res.Reason.Error()
		} else if len(res.Warnings) > 0 {
			reason = res.Warnings[0]
		}
		rows = append(rows, []string{outcome, displayPath(res.Source), fileSize(res.Output), reason})
	}
	return renderTable(
		[]string{"Outcome", "Source", "Size", "Reason"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignLeft},
	)
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	return humanize.Bytes(uint64(info.Size()))
}

func outputBytes(results []model.Result) uint64 {
	var total uint64
	for _, res := range results {
		if !res.Converted() {
			continue
		}
		if info, err := os.Stat(res.Output); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
