package model

import "fmt"

// TagField identifies one of the metadata fields carried over from a
// lossless source to the compressed output.
type TagField int

const (
	// FieldTitle is the track title (Vorbis TITLE, ID3 TIT2).
	FieldTitle TagField = iota

	// FieldArtist is the track artist (Vorbis ARTIST, ID3 TPE1).
	FieldArtist

	// FieldAlbum is the album title (Vorbis ALBUM, ID3 TALB).
	FieldAlbum

	// FieldTrackNumber is the track position (Vorbis TRACKNUMBER, ID3 TRCK).
	FieldTrackNumber

	// FieldYear is the release date (Vorbis DATE, ID3 TDRC).
	FieldYear

	// FieldAlbumArtist is the album artist (Vorbis ALBUMARTIST, ID3 TPE2).
	FieldAlbumArtist
)

// String returns the lower-case field name used in logs.
func (f TagField) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldArtist:
		return "artist"
	case FieldAlbum:
		return "album"
	case FieldTrackNumber:
		return "track_number"
	case FieldYear:
		return "year"
	case FieldAlbumArtist:
		return "album_artist"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// TrackNumber is the value of a FieldTrackNumber assignment.
//
// Total is always nil for tags read from Vorbis comments; it exists so the
// tag writer can emit "N/Total" when a total is known.
type TrackNumber struct {
	Number int
	Total  *int
}

// String formats the track number the way ID3 TRCK frames expect it.
func (tn TrackNumber) String() string {
	if tn.Total != nil {
		return fmt.Sprintf("%d/%d", tn.Number, *tn.Total)
	}
	return fmt.Sprintf("%d", tn.Number)
}

// TagAssignment is one deferred (field, value) mutation to apply to an
// output file's tag container.
//
// Text holds the value for every field except FieldTrackNumber, which uses
// Track instead.
type TagAssignment struct {
	Field TagField
	Text  string
	Track TrackNumber
}

// Value returns the assignment value as text regardless of field kind.
func (a TagAssignment) Value() string {
	if a.Field == FieldTrackNumber {
		return a.Track.String()
	}
	return a.Text
}

// String renders the assignment as field="value".
func (a TagAssignment) String() string {
	return fmt.Sprintf("%s=%q", a.Field, a.Value())
}

// Lookup returns the assignment for field, if present.
func Lookup(assignments []TagAssignment, field TagField) (TagAssignment, bool) {
	for _, a := range assignments {
		if a.Field == field {
			return a, true
		}
	}
	return TagAssignment{}, false
}
