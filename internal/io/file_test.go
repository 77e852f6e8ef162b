package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")

	if err := CopyToFile(context.Background(), strings.NewReader("payload"), dst, 0600); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("got %q", data)
	}

	if err := CopyToFile(context.Background(), strings.NewReader("again"), dst, 0600); err == nil {
		t.Error("expected error when destination exists")
	}
}

func TestCopyToFile_Cancelled(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := CopyToFile(ctx, strings.NewReader("payload"), dst, 0644); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("partial file should be removed")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.m3u")

	for _, content := range []string{"first", "second"} {
		if err := WriteFile(context.Background(), path, []byte(content)); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != content {
			t.Errorf("got %q, want %q", data, content)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestExistsAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")

	if ok, err := Exists(path); ok || err != nil {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Errorf("RemoveIfExists(missing) = %v", err)
	}

	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if ok, err := Exists(path); !ok || err != nil {
		t.Errorf("Exists(present) = %v, %v", ok, err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	if ok, _ := Exists(path); ok {
		t.Error("file should be gone")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(path); err != nil {
		t.Errorf("second call should succeed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
