package archive

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FindMatching lists files under root whose name ends with ext, compared
// case-insensitively.
//
// If root itself ends with ext it is returned as-is without touching the
// filesystem. Otherwise the tree below root is walked when descend is set,
// or only the regular files directly inside root are listed. Results are in
// lexical order.
//
// A subtree that cannot be read is skipped and the walk goes on; the
// returned error then joins every such failure while the matches found
// elsewhere are still returned. Only an unreadable root yields no matches.
func FindMatching(root, ext string, descend bool) ([]string, error) {
	if hasSuffixFold(root, ext) {
		return []string{root}, nil
	}
	if descend {
		return walk(root, ext)
	}
	return shallow(root, ext)
}

func walk(root, ext string) ([]string, error) {
	var (
		matches []string
		skipped []error
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			skipped = append(skipped, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && hasSuffixFold(d.Name(), ext) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, errors.Join(skipped...)
}

func shallow(root, ext string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, e := range entries {
		if !hasSuffixFold(e.Name(), ext) {
			continue
		}
		path := filepath.Join(root, e.Name())
		// Stat follows symlinks, so a link to a file counts as a file.
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			matches = append(matches, path)
		}
	}
	return matches, nil
}
