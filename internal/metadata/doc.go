// Package metadata extracts the tags to carry over from a FLAC source.
//
// The metaflac listing is the de facto interface: lines of the form
//
//	comment[<index>]: <KEY>=<value>
//
// are mapped to model.TagAssignment values for TITLE, ARTIST, ALBUM,
// TRACKNUMBER, DATE and ALBUMARTIST. Other keys are ignored.
//
//	tags, err := metadata.NewExtractor("metaflac").Extract(ctx, flacPath)
//	var perr *metadata.ParseError
//	if errors.As(err, &perr) {
//	    // corrupt source, e.g. TRACKNUMBER=seven
//	}
package metadata
