package deps

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/handiism/bandcamp-converter/internal/config"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Empty", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Errorf("unexpected status for present binary: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Errorf("expected missing binary to be unavailable with detail: %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Errorf("unexpected status for empty command: %#v", results[2])
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	settings := config.DefaultSettings()
	settings.FlacCommand = writeStub(t, dir, "flac")
	settings.LameCommand = filepath.Join(dir, "no-lame")
	settings.MetaflacCommand = filepath.Join(dir, "no-metaflac")

	err := Check(settings)
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PreconditionError", err)
	}
	want := []string{settings.LameCommand, settings.MetaflacCommand}
	if !reflect.DeepEqual(pe.Missing, want) {
		t.Errorf("Missing = %v, want %v", pe.Missing, want)
	}

	settings.LameCommand = writeStub(t, dir, "lame")
	settings.MetaflacCommand = writeStub(t, dir, "metaflac")
	if err := Check(settings); err != nil {
		t.Errorf("Check with all stubs = %v", err)
	}
}

func TestPreconditionError_Message(t *testing.T) {
	err := &PreconditionError{Missing: []string{"lame", "metaflac"}}
	if got := err.Error(); got != "missing commands: lame, metaflac" {
		t.Errorf("Error() = %q", got)
	}
}
