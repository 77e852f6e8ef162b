package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/bandcamp-converter/internal/io"
	"github.com/handiism/bandcamp-converter/internal/model"
)

// Expander unpacks Bandcamp archives into an artist/album tree.
//
// Example:
//
//	exp := archive.NewExpander(settings.ToPathConfig(), ".zip")
//	album, name, err := exp.Expand(ctx, "/dl/Artist - Album.zip")
//	switch {
//	case errors.Is(err, archive.ErrDestinationExists):
//	    // already expanded, skip
//	case err != nil:
//	    // mismatched name or broken archive
//	}
type Expander struct {
	pathCfg *model.PathConfig
	ext     string
}

// NewExpander creates an Expander writing below pathCfg.UnpackDir and
// accepting archives whose extension is ext.
func NewExpander(pathCfg *model.PathConfig, ext string) *Expander {
	return &Expander{pathCfg: pathCfg, ext: ext}
}

// Destination returns the album an archive would be expanded into, without
// touching the filesystem.
func (e *Expander) Destination(path string) (*model.Album, Name, error) {
	name, err := ParseName(path, e.ext)
	if err != nil {
		return nil, Name{}, err
	}
	return model.NewAlbum(name.Artist, name.Album, e.pathCfg), name, nil
}

// Expand unpacks the archive at path into its album directory.
//
// The returned Name is valid whenever the name could be parsed, so callers
// can warn about loose matches even on failure. The error wraps
// ErrNameMismatch or ErrDestinationExists for the two skip conditions; any
// other error means the archive is unreadable, in which case the partially
// written directory is removed again.
func (e *Expander) Expand(ctx context.Context, path string) (*model.Album, Name, error) {
	album, name, err := e.Destination(path)
	if err != nil {
		return nil, name, err
	}

	if err := ioutils.EnsureDir(filepath.Dir(album.Path)); err != nil {
		return nil, name, fmt.Errorf("create %s: %w", filepath.Dir(album.Path), err)
	}
	// Mkdir, not MkdirAll: claiming the directory is the existence check.
	if err := os.Mkdir(album.Path, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, name, fmt.Errorf("%s: %w", album.Path, ErrDestinationExists)
		}
		return nil, name, fmt.Errorf("create %s: %w", album.Path, err)
	}

	if err := unzip(ctx, path, album.Path); err != nil {
		_ = os.RemoveAll(album.Path)
		return nil, name, fmt.Errorf("unzip %s: %w", path, err)
	}
	return album, name, nil
}

// unzip extracts every entry of the archive at src below dest.
func unzip(ctx context.Context, src, dest string) error {
	r, err := zip.OpenReader(src)
	if r != nil {
		defer r.Close()
	}
	if err != nil {
		return err
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractEntry(ctx, f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(ctx context.Context, f *zip.File, dest string) error {
	name := strings.TrimSuffix(f.Name, "/")
	if name == "" {
		return nil
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return fmt.Errorf("entry %q escapes destination", f.Name)
	}
	target := filepath.Join(dest, filepath.FromSlash(name))

	mode := f.Mode()
	switch {
	case mode.IsDir():
		return ioutils.EnsureDir(target)
	case !mode.IsRegular():
		// Symlinks and devices have no business in a music download.
		return nil
	}

	if err := ioutils.EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	if err := ioutils.CopyToFile(ctx, rc, target, perm|0600); err != nil {
		return fmt.Errorf("extract %q: %w", f.Name, err)
	}
	return nil
}

// Entries returns the paths, relative to the album directory, of the
// archive's regular files ending in ext. It reads only the central
// directory, so nothing is written.
func Entries(path, ext string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if r != nil {
		defer r.Close()
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if f.Mode().IsRegular() && filepath.IsLocal(name) && hasSuffixFold(name, ext) {
			names = append(names, name)
		}
	}
	return names, nil
}
