package audio

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/handiism/bandcamp-converter/internal/model"
)

// TagVersion is the ID3v2 major version every committed tag is written in.
const TagVersion = 4

// setter applies one assignment to an open tag.
type setter func(tag *id3v2.Tag, a model.TagAssignment)

// frameSetters is the dispatch table from tag field to ID3 frame.
var frameSetters = map[model.TagField]setter{
	model.FieldTitle: func(tag *id3v2.Tag, a model.TagAssignment) {
		tag.SetTitle(a.Text)
	},
	model.FieldArtist: func(tag *id3v2.Tag, a model.TagAssignment) {
		tag.SetArtist(a.Text)
	},
	model.FieldAlbum: func(tag *id3v2.Tag, a model.TagAssignment) {
		tag.SetAlbum(a.Text)
	},
	model.FieldTrackNumber: func(tag *id3v2.Tag, a model.TagAssignment) {
		tag.DeleteFrames("TRCK")
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, a.Track.String())
	},
	// DATE may be a full date ("2018-03-09"); TDRC accepts both forms.
	model.FieldYear: func(tag *id3v2.Tag, a model.TagAssignment) {
		tag.DeleteFrames("TDRC")
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, a.Text)
	},
	model.FieldAlbumArtist: func(tag *id3v2.Tag, a model.TagAssignment) {
		tag.DeleteFrames("TPE2")
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, a.Text)
	},
}

// Tagger writes tag assignments to MP3 files.
//
// Tagger uses the id3v2 library to rewrite the placeholder tag lame reserves
// at the start of the file. The result is always an ID3v2.4 tag with UTF-8
// text frames:
//   - Title, Artist, Album, Album Artist
//   - Track Number, Recording date
//   - Cover Art (attached picture)
//
// Example:
//
//	tagger := NewTagger()
//	err := tagger.Commit("/music/Artist/Album/01 Song.mp3", tags, coverJPEG)
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Commit applies assignments (and artwork, if non-nil) to the tag of the MP3
// at path and persists it as ID3v2.4.
//
// Assignments are applied in order, so a later assignment to the same field
// wins. Unknown fields are ignored.
//
// Returns an error if the file cannot be opened or saved; the file is left as
// it was in that case as far as the id3v2 library guarantees.
func (t *Tagger) Commit(path string, assignments []model.TagAssignment, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	// Version first: it decides which frame IDs the Set* helpers use.
	tag.SetVersion(TagVersion)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, a := range assignments {
		if set, ok := frameSetters[a.Field]; ok {
			set(tag, a)
		}
	}

	if artwork != nil {
		setFrontCover(tag, artwork)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	return nil
}

// coverMIME is the only picture type committed: the album cover is loaded
// once per album directory and re-encoded to JPEG before any file is tagged.
const coverMIME = "image/jpeg"

// setFrontCover replaces every attached picture with jpeg as the front
// cover. All tracks of an album share the same bytes.
func setFrontCover(tag *id3v2.Tag, jpeg []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    coverMIME,
		PictureType: id3v2.PTFrontCover,
		Description: "Front cover",
		Picture:     jpeg,
	})
}
