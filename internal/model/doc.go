// Package model defines the core data structures used throughout
// the bandcamp-converter application.
//
// # Tag assignments
//
// TagAssignment is a deferred (field, value) mutation read from a lossless
// source and applied to the compressed output once transcoding succeeded:
//
//	a := model.TagAssignment{Field: model.FieldTitle, Text: "Roygbiv"}
//	fmt.Println(a) // title="Roygbiv"
//
// # Results
//
// Every discovered source file ends in exactly one Outcome: converted,
// skipped (output already present) or failed (output rolled back).
//
// # Album
//
// Album represents one expanded archive with its computed directory:
//
//	album := model.NewAlbum("Artist", "Title", pathConfig)
//	fmt.Println(album.Path)         // Where the archive is expanded
//	fmt.Println(album.PlaylistPath) // Where the playlist is written
//
// Available placeholders: {artist}, {album}
package model
