package metadata

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/handiism/bandcamp-converter/internal/model"
)

// commentLine matches one Vorbis comment entry of a metaflac listing:
//
//	    comment[5]: TRACKNUMBER=70
//
// The key alphabet stops at the first '=', so the value keeps any further '='.
var commentLine = regexp.MustCompile(`^\s*comment\[\d+\]: ([A-Za-z 0-9_]+)=(.*)$`)

// fieldKind tells parseValue how to turn the raw text into an assignment.
type fieldKind int

const (
	kindText fieldKind = iota
	kindTrackNumber
)

type fieldSpec struct {
	field model.TagField
	kind  fieldKind
}

// vorbisFields maps Vorbis comment keys to tag fields. Keys are matched
// case-sensitively; everything else (COMMENT, UNSYNCEDLYRICS, ...) is dropped.
var vorbisFields = map[string]fieldSpec{
	"TITLE":       {model.FieldTitle, kindText},
	"ARTIST":      {model.FieldArtist, kindText},
	"ALBUM":       {model.FieldAlbum, kindText},
	"TRACKNUMBER": {model.FieldTrackNumber, kindTrackNumber},
	"DATE":        {model.FieldYear, kindText},
	// Bandcamp consistently writes ALBUMARTIST.
	"ALBUMARTIST": {model.FieldAlbumArtist, kindText},
}

// ParseListing converts the text output of
// `metaflac --list --block-type=VORBIS_COMMENT` into tag assignments.
//
// Only the first physical line of a multi-line comment is captured;
// continuation lines do not match the comment pattern and are ignored.
//
// A field appearing more than once yields a single assignment, kept at the
// position of its first occurrence and carrying the value of the last.
//
// A TRACKNUMBER value that is not an integer, or any value that is not valid
// UTF-8, aborts parsing with a *ParseError.
func ParseListing(output []byte) ([]model.TagAssignment, error) {
	var assignments []model.TagAssignment
	index := make(map[model.TagField]int)

	for _, line := range bytes.Split(output, []byte("\n")) {
		match := commentLine.FindSubmatch(line)
		if match == nil {
			continue
		}

		key, raw := string(match[1]), match[2]
		spec, ok := vorbisFields[key]
		if !ok {
			continue
		}

		assignment, err := parseValue(key, spec, raw)
		if err != nil {
			return nil, err
		}

		if i, seen := index[spec.field]; seen {
			assignments[i] = assignment
			continue
		}
		index[spec.field] = len(assignments)
		assignments = append(assignments, assignment)
	}

	return assignments, nil
}

func parseValue(key string, spec fieldSpec, raw []byte) (model.TagAssignment, error) {
	if !utf8.Valid(raw) {
		return model.TagAssignment{}, &ParseError{Key: key, Value: string(raw), Err: errInvalidUTF8}
	}
	value := string(raw)

	switch spec.kind {
	case kindTrackNumber:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return model.TagAssignment{}, &ParseError{Key: key, Value: value, Err: err}
		}
		return model.TagAssignment{Field: spec.field, Track: model.TrackNumber{Number: n}}, nil
	default:
		return model.TagAssignment{Field: spec.field, Text: value}, nil
	}
}
