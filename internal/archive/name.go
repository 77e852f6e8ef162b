package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNameMismatch means the archive name does not look like "Artist - Album".
	ErrNameMismatch = errors.New("archive name does not match \"Artist - Album\"")

	// ErrDestinationExists means the archive was already expanded.
	ErrDestinationExists = errors.New("destination already exists")
)

// Bandcamp names downloads "Artist - Album.zip". Names made only of letters,
// digits, underscores and spaces are trusted; anything else with a " - "
// separator is accepted but may have split in the wrong place.
var (
	strictName = regexp.MustCompile(`^([\p{L}\p{N}_\s]+) - ([\p{L}\p{N}_\s]+)$`)
	looseName  = regexp.MustCompile(`^(.+) - (.+)$`)
)

// MatchKind tells how confidently an archive name was split.
type MatchKind int

const (
	// MatchStrict is a name of plain words on both sides of the separator.
	MatchStrict MatchKind = iota
	// MatchLoose is a name that only matched the generic pattern. Callers
	// should warn so the user can check the resulting directory names.
	MatchLoose
)

func (k MatchKind) String() string {
	if k == MatchLoose {
		return "loose"
	}
	return "strict"
}

// Name is the artist/album pair parsed from an archive file name.
type Name struct {
	Artist string
	Album  string
	Kind   MatchKind
}

// ParseName splits the base name of an archive path into artist and album.
//
// The extension must equal ext, compared case-insensitively. Names are
// normalized to NFC first, since archives created on macOS often carry
// decomposed accents. Returns an error wrapping ErrNameMismatch when neither
// pattern matches.
//
// Example:
//
//	name, err := ParseName("/dl/Boards of Canada - Geogaddi.zip", ".zip")
//	// name.Artist = "Boards of Canada", name.Album = "Geogaddi", name.Kind = MatchStrict
func ParseName(path, ext string) (Name, error) {
	base := filepath.Base(path)
	fileExt := filepath.Ext(base)
	if !equalFold(fileExt, ext) {
		return Name{}, fmt.Errorf("%s: extension %q is not %q: %w", path, fileExt, ext, ErrNameMismatch)
	}
	stem := norm.NFC.String(strings.TrimSuffix(base, fileExt))

	if m := strictName.FindStringSubmatch(stem); m != nil {
		return Name{Artist: m[1], Album: m[2], Kind: MatchStrict}, nil
	}
	if m := looseName.FindStringSubmatch(stem); m != nil {
		return Name{Artist: m[1], Album: m[2], Kind: MatchLoose}, nil
	}
	return Name{}, fmt.Errorf("%s: %w", path, ErrNameMismatch)
}

// equalFold compares with full Unicode case folding.
func equalFold(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// hasSuffixFold reports whether s ends with suffix under Unicode case folding.
func hasSuffixFold(s, suffix string) bool {
	fold := cases.Fold()
	return strings.HasSuffix(fold.String(s), fold.String(suffix))
}
