package model

import (
	"path/filepath"
	"strings"
)

// Track is one converted (or previously converted) file of an album, used
// for playlist generation.
type Track struct {
	// Album is a reference to the parent album.
	Album *Album

	// Number is the track number, or 0 if unknown.
	Number int

	// Title is the track title. Falls back to the file name.
	Title string

	// Path is the output file path.
	Path string
}

// NewTrack creates a Track for an output file. When tags carry a title or
// track number they take precedence over the file name.
func NewTrack(album *Album, path string, tags []TagAssignment) *Track {
	track := &Track{
		Album: album,
		Path:  path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	if a, ok := Lookup(tags, FieldTitle); ok && a.Text != "" {
		track.Title = a.Text
	}
	if a, ok := Lookup(tags, FieldTrackNumber); ok {
		track.Number = a.Track.Number
	}

	return track
}

// OutputPath derives the compressed output path for a source file by
// replacing its extension. ext must include the leading dot.
//
// Example:
//
//	OutputPath("/music/A/B/01 Song.flac", ".mp3") // "/music/A/B/01 Song.mp3"
func OutputPath(source, ext string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}
