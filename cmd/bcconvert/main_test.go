package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/bandcamp-converter/internal/config"
	"github.com/handiism/bandcamp-converter/internal/convert"
	"github.com/handiism/bandcamp-converter/internal/deps"
	"github.com/handiism/bandcamp-converter/internal/logging"
	"github.com/spf13/cobra"
)

const (
	fakeFlac = `#!/bin/sh
for last; do :; done
cat "$last"
`
	fakeLame = `#!/bin/sh
for last; do :; done
cat > "$last"
`
	fakeMetaflac = `#!/bin/sh
for last; do :; done
if [ -f "$last.listing" ]; then cat "$last.listing"; fi
`
)

// writeConfig stores settings pointing at fake tools and returns the file path.
func writeConfig(t *testing.T, unpack string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	bin := t.TempDir()
	script := func(name, body string) string {
		path := filepath.Join(bin, name)
		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
		return path
	}

	s := config.DefaultSettings()
	s.UnpackDir = unpack
	s.FlacCommand = script("flac", fakeFlac)
	s.LameCommand = script("lame", fakeLame)
	s.MetaflacCommand = script("metaflac", fakeMetaflac)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootConvertsArchives(t *testing.T) {
	unpack := filepath.Join(t.TempDir(), "unpack")
	cfg := writeConfig(t, unpack)

	downloads := t.TempDir()
	listing := "    comment[0]: TITLE=Song\n    comment[1]: TRACKNUMBER=1\n"
	writeZip(t, filepath.Join(downloads, "Artist - Album.zip"), map[string]string{
		"01 Song.flac":         "audio",
		"01 Song.flac.listing": listing,
	})

	stdout, stderr, err := execute(t, "--config", cfg, "--playlist", downloads)
	if err != nil {
		t.Fatalf("execute: %v\nstderr:\n%s", err, stderr)
	}

	album := filepath.Join(unpack, "Artist", "Album")
	if _, err := os.Stat(filepath.Join(album, "01 Song.mp3")); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(album, "01 Song.flac")); !os.IsNotExist(err) {
		t.Errorf("source should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(album, "Album.m3u")); err != nil {
		t.Errorf("playlist missing: %v", err)
	}
	if !strings.Contains(stdout, "converted") || !strings.Contains(stdout, "1 files: 1 converted, 0 skipped, 0 failed") {
		t.Errorf("unexpected stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "run=") {
		t.Errorf("log lines should carry the run id:\n%s", stderr)
	}
}

func TestRootReportsFailures(t *testing.T) {
	unpack := filepath.Join(t.TempDir(), "unpack")
	cfg := writeConfig(t, unpack)

	album := filepath.Join(t.TempDir(), "Album")
	if err := os.MkdirAll(album, 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(album, "01 Good.flac"), []byte("audio"), 0o644)
	os.WriteFile(filepath.Join(album, "02 Bad.flac"), []byte("audio"), 0o644)
	os.WriteFile(filepath.Join(album, "02 Bad.flac.listing"), []byte("    comment[0]: TRACKNUMBER=two\n"), 0o644)

	stdout, _, err := execute(t, "--config", cfg, "convert", album)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Fatalf("err = %v, want failure count", err)
	}
	if !strings.Contains(stdout, "failed") {
		t.Errorf("table should list the failure:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(album, "02 Bad.flac")); err != nil {
		t.Errorf("failed source must be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(album, "02 Bad.mp3")); !os.IsNotExist(err) {
		t.Errorf("failed output must be rolled back, stat err = %v", err)
	}
}

func TestRootDryRun(t *testing.T) {
	unpack := filepath.Join(t.TempDir(), "unpack")
	cfg := writeConfig(t, unpack)

	downloads := t.TempDir()
	writeZip(t, filepath.Join(downloads, "Artist - Album.zip"), map[string]string{"01 Song.flac": "audio"})

	stdout, stderr, err := execute(t, "--config", cfg, "--dry-run", downloads)
	if err != nil {
		t.Fatalf("execute: %v\nstderr:\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "would convert") {
		t.Errorf("dry run table missing:\n%s", stdout)
	}
	if _, err := os.Stat(unpack); !os.IsNotExist(err) {
		t.Errorf("dry run must not create %s", unpack)
	}
}

func TestRootMissingProgram(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	s, err := config.Load(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.LameCommand = filepath.Join(t.TempDir(), "no-lame")
	if err := s.Save(cfg); err != nil {
		t.Fatal(err)
	}

	_, _, err = execute(t, "--config", cfg, t.TempDir())
	var pre *deps.PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
}

func TestCheckCommand(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	stdout, _, err := execute(t, "--config", cfg, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"flac", "lame", "metaflac", "ok"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("check output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if _, _, err := execute(t, "config", "init", "--path", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if s.LameCommand != "lame" {
		t.Errorf("LameCommand = %q", s.LameCommand)
	}

	if _, _, err := execute(t, "config", "init", "--path", path); err == nil {
		t.Error("expected error when file exists")
	}
	if _, _, err := execute(t, "config", "init", "--path", path, "--overwrite"); err != nil {
		t.Errorf("overwrite: %v", err)
	}
}

func TestLoadSettingsFlags(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	unpack := t.TempDir()

	opts := &options{}
	cmd := &cobra.Command{Use: "bcconvert"}
	bindFlags(cmd, opts)
	if err := cmd.ParseFlags([]string{"--config", cfg, "--unpack-dir", unpack, "--no-descend", "-j", "3", "-v"}); err != nil {
		t.Fatal(err)
	}

	s, err := loadSettings(cmd, opts)
	if err != nil {
		t.Fatal(err)
	}
	if s.UnpackDir != unpack || s.Descend || s.MaxConcurrentConversions != 3 || s.LogLevel != "debug" {
		t.Errorf("flags not applied: %+v", s)
	}
	if s.CreatePlaylist {
		t.Error("unset --playlist must keep the config value")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   convert.ProgressLevel
		want slog.Level
	}{
		{convert.LevelVerbose, slog.LevelDebug},
		{convert.LevelInfo, slog.LevelInfo},
		{convert.LevelSuccess, logging.LevelSuccess},
		{convert.LevelWarning, slog.LevelWarn},
		{convert.LevelError, slog.LevelError},
	}
	for _, tt := range tests {
		if got := slogLevel(tt.in); got != tt.want {
			t.Errorf("slogLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDisplayPath(t *testing.T) {
	got := displayPath(filepath.Join("music", "Artist", "Album", "01 Song.flac"))
	if want := filepath.Join("Album", "01 Song.flac"); got != want {
		t.Errorf("displayPath = %q, want %q", got, want)
	}
	if got := displayPath("song.flac"); got != "song.flac" {
		t.Errorf("displayPath = %q", got)
	}
}
