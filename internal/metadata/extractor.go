package metadata

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/handiism/bandcamp-converter/internal/model"
)

// DefaultCommand is the metaflac executable looked up on PATH.
const DefaultCommand = "metaflac"

// Extractor reads Vorbis comments from FLAC files by running metaflac and
// parsing its listing.
//
// Example:
//
//	ex := metadata.NewExtractor("metaflac")
//	tags, err := ex.Extract(ctx, "/music/Artist/Album/01 Song.flac")
type Extractor struct {
	command string
}

// NewExtractor creates an Extractor invoking command. An empty command
// falls back to DefaultCommand.
func NewExtractor(command string) *Extractor {
	if command == "" {
		command = DefaultCommand
	}
	return &Extractor{command: command}
}

// Args returns the metaflac arguments listing the VORBIS_COMMENT block of path.
// --no-utf8-convert keeps the raw UTF-8 bytes regardless of locale.
func Args(path string) []string {
	return []string{"--list", "--no-utf8-convert", "--block-type=VORBIS_COMMENT", path}
}

// Extract runs metaflac against path and returns the parsed assignments.
//
// stderr is not surfaced and a non-zero exit status is not an error on its own:
// whatever was printed to stdout is parsed. Only a failure to launch the
// process or a *ParseError is returned.
func (e *Extractor) Extract(ctx context.Context, path string) ([]model.TagAssignment, error) {
	cmd := exec.CommandContext(ctx, e.command, Args(path)...)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", e.command, err)
		}
	}

	return ParseListing(output)
}
