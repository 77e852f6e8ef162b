package archive

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/handiism/bandcamp-converter/internal/model"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantArtist string
		wantAlbum  string
		wantKind   MatchKind
		wantErr    bool
	}{
		{"strict", "/dl/Boards of Canada - Geogaddi.zip", "Boards of Canada", "Geogaddi", MatchStrict, false},
		{"strict unicode", "Sigur Rós - Ágætis byrjun.zip", "Sigur Rós", "Ágætis byrjun", MatchStrict, false},
		{"strict digits", "Artist 2 - LP_1.zip", "Artist 2", "LP_1", MatchStrict, false},
		{"upper case extension", "A - B.ZIP", "A", "B", MatchStrict, false},
		{"loose punctuation", "Guns N' Roses - Appetite (Deluxe).zip", "Guns N' Roses", "Appetite (Deluxe)", MatchLoose, false},
		{"loose double separator", "A - B - C.zip", "A - B", "C", MatchLoose, false},
		{"no separator", "Artist-Album.zip", "", "", 0, true},
		{"wrong extension", "A - B.tar", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.path, ".zip")
			if tt.wantErr {
				if !errors.Is(err, ErrNameMismatch) {
					t.Fatalf("error = %v, want ErrNameMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if tt.wantArtist != "" && (got.Artist != tt.wantArtist || got.Album != tt.wantAlbum) {
				t.Errorf("got (%q, %q), want (%q, %q)", got.Artist, got.Album, tt.wantArtist, tt.wantAlbum)
			}
		})
	}
}

func TestParseName_NormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent.
	got, err := ParseName("Cafe\u0301 - Noir.zip", ".zip")
	if err != nil {
		t.Fatal(err)
	}
	if got.Artist != "Caf\u00e9" {
		t.Errorf("Artist = %q, want NFC form", got.Artist)
	}
	if got.Kind != MatchStrict {
		t.Errorf("Kind = %v, want strict", got.Kind)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExpander_Expand(t *testing.T) {
	src := t.TempDir()
	unpack := t.TempDir()
	zipPath := filepath.Join(src, "Artist - Album.zip")
	writeZip(t, zipPath, map[string]string{
		"01 One.flac":   "one",
		"02 Two.flac":   "two",
		"cover.jpg":     "jpg",
		"extras/notes":  "n",
		"extras/empty/": "",
	})

	exp := NewExpander(&model.PathConfig{UnpackDir: unpack}, ".zip")
	album, name, err := exp.Expand(context.Background(), zipPath)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if name.Kind != MatchStrict {
		t.Errorf("Kind = %v", name.Kind)
	}
	want := filepath.Join(unpack, "Artist", "Album")
	if album.Path != want {
		t.Errorf("album.Path = %q, want %q", album.Path, want)
	}

	data, err := os.ReadFile(filepath.Join(want, "02 Two.flac"))
	if err != nil || string(data) != "two" {
		t.Errorf("entry not extracted: %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(want, "extras", "notes")); err != nil {
		t.Errorf("nested entry missing: %v", err)
	}

	// Second expansion of the same archive is a skip.
	if _, _, err := exp.Expand(context.Background(), zipPath); !errors.Is(err, ErrDestinationExists) {
		t.Errorf("second Expand error = %v, want ErrDestinationExists", err)
	}
}

func TestExpander_RejectsEscapingEntries(t *testing.T) {
	src := t.TempDir()
	unpack := t.TempDir()
	zipPath := filepath.Join(src, "Evil - Archive.zip")
	writeZip(t, zipPath, map[string]string{"../../escape.txt": "x"})

	exp := NewExpander(&model.PathConfig{UnpackDir: unpack}, ".zip")
	if _, _, err := exp.Expand(context.Background(), zipPath); err == nil {
		t.Fatal("expected error for escaping entry")
	}
	if _, err := os.Stat(filepath.Join(unpack, "Evil", "Archive")); !os.IsNotExist(err) {
		t.Error("partial destination should be removed")
	}
}

func TestExpander_BrokenArchive(t *testing.T) {
	src := t.TempDir()
	zipPath := filepath.Join(src, "A - B.zip")
	if err := os.WriteFile(zipPath, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	exp := NewExpander(&model.PathConfig{UnpackDir: t.TempDir()}, ".zip")
	_, _, err := exp.Expand(context.Background(), zipPath)
	if err == nil || errors.Is(err, ErrDestinationExists) || errors.Is(err, ErrNameMismatch) {
		t.Errorf("expected plain failure, got %v", err)
	}
}

func TestExpander_NameMismatch(t *testing.T) {
	exp := NewExpander(&model.PathConfig{UnpackDir: t.TempDir()}, ".zip")
	if _, _, err := exp.Expand(context.Background(), "/nowhere/untitled.zip"); !errors.Is(err, ErrNameMismatch) {
		t.Errorf("error = %v, want ErrNameMismatch", err)
	}
}

func TestFindMatching(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"a.flac", "b.FLAC", "c.mp3", "sub/d.flac", "sub/deeper/e.Flac"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	// A directory named like a match is not a file.
	if err := os.Mkdir(filepath.Join(root, "dir.flac"), 0755); err != nil {
		t.Fatal(err)
	}

	rel := func(paths []string) []string {
		var out []string
		for _, p := range paths {
			r, _ := filepath.Rel(root, p)
			out = append(out, filepath.ToSlash(r))
		}
		return out
	}

	got, err := FindMatching(root, ".flac", true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.flac", "b.FLAC", "sub/d.flac", "sub/deeper/e.Flac"}
	if !reflect.DeepEqual(rel(got), want) {
		t.Errorf("descend = %v, want %v", rel(got), want)
	}

	got, err = FindMatching(root, ".flac", false)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"a.flac", "b.FLAC"}
	if !reflect.DeepEqual(rel(got), want) {
		t.Errorf("shallow = %v, want %v", rel(got), want)
	}
}

func TestFindMatching_RootIsMatch(t *testing.T) {
	got, err := FindMatching("/does/not/exist/Artist - Album.ZIP", ".zip", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "/does/not/exist/Artist - Album.ZIP" {
		t.Errorf("got %v", got)
	}
}

func TestFindMatching_MissingRoot(t *testing.T) {
	if _, err := FindMatching(filepath.Join(t.TempDir(), "missing"), ".zip", true); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestFindMatching_UnreadableSubtree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	for _, p := range []string{"A - One.zip", "locked/B - Two.zip", "open/C - Three.zip"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	got, err := FindMatching(root, ".zip", true)
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Errorf("err = %v, want error naming the locked directory", err)
	}
	want := []string{
		filepath.Join(root, "A - One.zip"),
		filepath.Join(root, "open", "C - Three.zip"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEntries(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "A - B.zip")
	writeZip(t, zipPath, map[string]string{
		"01.flac":       "",
		"disc2/02.FLAC": "",
		"cover.jpg":     "",
	})

	got, err := Entries(zipPath, ".flac")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"01.flac": true, filepath.Join("disc2", "02.FLAC"): true}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, name := range got {
		if !want[name] {
			t.Errorf("unexpected entry %q", name)
		}
	}
}
