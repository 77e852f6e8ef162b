package model

import "fmt"

// Outcome is the terminal state of one conversion pipeline.
type Outcome int

const (
	// OutcomePending means the pipeline has been accepted but not finished.
	OutcomePending Outcome = iota

	// OutcomeConverted means the output was written, tagged and the source removed.
	OutcomeConverted

	// OutcomeSkipped means the output already existed; nothing was touched.
	OutcomeSkipped

	// OutcomeFailed means the conversion failed and any output was rolled back.
	OutcomeFailed
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeConverted:
		return "converted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result records what happened to one SourceFile.
type Result struct {
	// Source is the lossless input path.
	Source string

	// Output is the compressed output path derived from Source.
	Output string

	// Outcome is the terminal state.
	Outcome Outcome

	// Reason explains a skip or failure. Nil for conversions.
	Reason error

	// Tags are the assignments applied on commit. Empty unless converted.
	Tags []TagAssignment

	// Warnings are problems that did not change the outcome, such as a
	// decoder failure masked by a successful encoder.
	Warnings []string
}

// Converted reports whether the pipeline committed.
func (r Result) Converted() bool { return r.Outcome == OutcomeConverted }

// Failed reports whether the pipeline failed.
func (r Result) Failed() bool { return r.Outcome == OutcomeFailed }
