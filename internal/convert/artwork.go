package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// coverNames are the cover files Bandcamp archives ship, in order of preference.
var coverNames = []string{"cover.jpg", "cover.jpeg", "cover.png"}

// findCover returns the cover image in dir, matching names case-insensitively.
// ok is false when there is none.
func findCover(dir string) (path string, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, err
	}
	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			byName[strings.ToLower(e.Name())] = filepath.Join(dir, e.Name())
		}
	}
	for _, name := range coverNames {
		if p, found := byName[name]; found {
			return p, true, nil
		}
	}
	return "", false, nil
}

// loadArtwork reads the album cover in dir and prepares it for embedding:
// resized when configured, always JPEG. Returns nil without error when the
// album has no cover or embedding is disabled.
func (m *Manager) loadArtwork(ctx context.Context, dir string) ([]byte, error) {
	if !m.settings.SaveCoverArtInTags {
		return nil, nil
	}

	path, ok, err := findCover(dir)
	if err != nil || !ok {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if m.settings.CoverArtInTagsResize {
		size := m.settings.CoverArtInTagsMaxSize
		data, err = m.imageService.ResizeImage(ctx, data, size, size)
	} else {
		data, err = m.imageService.ConvertToJPEG(ctx, data)
	}
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", filepath.Base(path), err)
	}
	return data, nil
}
