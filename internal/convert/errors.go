package convert

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOutputExists is the skip reason for a source whose output is
	// already on disk.
	ErrOutputExists = errors.New("output already exists")

	// ErrLocked means another run holds the unpack directory.
	ErrLocked = errors.New("unpack directory is locked by another run")
)

// TranscodeError reports a failed decode | encode chain for one source.
type TranscodeError struct {
	Source   string
	ExitCode int    // encoder exit code, -1 if killed or never started
	Stderr   string // tail of the encoder's stderr
	Err      error  // set when the chain could not be started
}

func (e *TranscodeError) Error() string {
	var b strings.Builder
	if e.Err != nil {
		fmt.Fprintf(&b, "transcode %s: %v", e.Source, e.Err)
	} else {
		fmt.Fprintf(&b, "transcode %s: encoder exited with status %d", e.Source, e.ExitCode)
	}
	if msg := lastLine(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// TagWriteError reports a failure to commit tags to a transcoded output.
type TagWriteError struct {
	Output string
	Err    error
}

func (e *TagWriteError) Error() string {
	return fmt.Sprintf("write tags to %s: %v", e.Output, e.Err)
}

func (e *TagWriteError) Unwrap() error { return e.Err }

// lastLine returns the last non-empty line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
