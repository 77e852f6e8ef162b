package convert

import (
	"context"
	"fmt"

	"github.com/handiism/bandcamp-converter/internal/audio"
	"github.com/handiism/bandcamp-converter/internal/config"
	ioutils "github.com/handiism/bandcamp-converter/internal/io"
	"github.com/handiism/bandcamp-converter/internal/metadata"
	"github.com/handiism/bandcamp-converter/internal/model"
	"github.com/handiism/bandcamp-converter/internal/process"
)

// Pipeline converts a single lossless file.
//
// Tag extraction and the decode | encode chain run concurrently; the result
// is committed only once both are done and the encoder succeeded:
//
//	Started -> {tags, transcode} -> Joined -> Converted | Failed | Skipped
//
// A Failed outcome never leaves an output file behind and never touches the
// source. Skipped touches nothing.
type Pipeline struct {
	extractor *metadata.Extractor
	tagger    *audio.Tagger

	flac      string
	lame      string
	lameArgs  []string
	outputExt string
}

// NewPipeline creates a Pipeline from the external tool settings.
func NewPipeline(settings *config.Settings) *Pipeline {
	return &Pipeline{
		extractor: metadata.NewExtractor(settings.MetaflacCommand),
		tagger:    audio.NewTagger(),
		flac:      settings.FlacCommand,
		lame:      settings.LameCommand,
		lameArgs:  settings.LameArgs,
		outputExt: settings.OutputExtension,
	}
}

// Chain returns the decode | encode commands for source.
//
// lame reserves room for an ID3v2 tag (--add-id3v2 --pad-id3v2) so the
// tag commit can rewrite it in place.
func (p *Pipeline) Chain(source, output string) process.Chain {
	args := make([]string, 0, len(p.lameArgs)+4)
	args = append(args, p.lameArgs...)
	args = append(args, "--add-id3v2", "--pad-id3v2", "-", output)

	return process.Chain{
		First:  process.Command{Name: p.flac, Args: []string{"--silent", "--stdout", "--decode", source}},
		Second: process.Command{Name: p.lame, Args: args},
	}
}

type extraction struct {
	tags []model.TagAssignment
	err  error
}

// Run converts source and returns its terminal Result. artwork, if non-nil,
// is embedded as the front cover.
func (p *Pipeline) Run(ctx context.Context, source string, artwork []byte) model.Result {
	output := model.OutputPath(source, p.outputExt)
	result := model.Result{Source: source, Output: output}

	exists, err := ioutils.Exists(output)
	if err != nil {
		return failed(result, fmt.Errorf("check output: %w", err))
	}
	if exists {
		result.Outcome = model.OutcomeSkipped
		result.Reason = ErrOutputExists
		return result
	}

	// Tag extraction runs as a future joined below.
	tagsDone := make(chan extraction, 1)
	go func() {
		tags, err := p.extractor.Extract(ctx, source)
		tagsDone <- extraction{tags: tags, err: err}
	}()

	chainRes, chainErr := p.Chain(source, output).Run(ctx)
	ext := <-tagsDone

	// Transcode failure is authoritative over an extraction error.
	if chainErr != nil {
		rollback(output)
		return failed(result, &TranscodeError{Source: source, ExitCode: -1, Err: chainErr})
	}
	if !chainRes.Success() {
		rollback(output)
		return failed(result, &TranscodeError{
			Source:   source,
			ExitCode: chainRes.ExitCode(),
			Stderr:   chainRes.SecondStderr,
		})
	}
	if chainRes.FirstExit != 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("decoder exited with status %d: %s", chainRes.FirstExit, lastLine(chainRes.FirstStderr)))
	}

	if ext.err != nil {
		rollback(output)
		return failed(result, fmt.Errorf("read tags from %s: %w", source, ext.err))
	}

	if err := p.tagger.Commit(output, ext.tags, artwork); err != nil {
		rollback(output)
		return failed(result, &TagWriteError{Output: output, Err: err})
	}

	result.Outcome = model.OutcomeConverted
	result.Tags = ext.tags

	if err := ioutils.RemoveIfExists(source); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("remove source: %v", err))
	}
	return result
}

func failed(r model.Result, reason error) model.Result {
	r.Outcome = model.OutcomeFailed
	r.Reason = reason
	return r
}

// rollback removes a partial output. Errors are ignored: the output may
// never have been created.
func rollback(output string) {
	_ = ioutils.RemoveIfExists(output)
}
