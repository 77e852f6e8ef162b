package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait blocks on I/O after a stage exits or is killed.
const waitDelay = 5 * time.Second

// Command is one stage of a Chain: a program name and its arguments.
type Command struct {
	Name string
	Args []string
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ChainResult holds the exit codes of both stages.
//
// Like a shell pipeline, SecondExit is authoritative: a failing first stage is
// only visible through FirstExit, and callers decide whether to act on it.
// An exit code of -1 means the process was terminated by a signal.
type ChainResult struct {
	FirstExit  int
	SecondExit int

	// FirstStderr and SecondStderr hold the tail of each stage's stderr.
	FirstStderr  string
	SecondStderr string
}

// ExitCode returns the exit code of the last stage.
func (r ChainResult) ExitCode() int {
	return r.SecondExit
}

// Success reports whether the last stage exited with status 0.
func (r ChainResult) Success() bool {
	return r.SecondExit == 0
}

// Chain runs two external programs with the standard output of First wired
// directly to the standard input of Second.
//
// Data flows through an OS pipe, so the payload is never staged in memory.
//
// Example:
//
//	chain := process.Chain{
//	    First:  process.Command{Name: "flac", Args: []string{"--silent", "--stdout", "--decode", src}},
//	    Second: process.Command{Name: "lame", Args: []string{"-V0", "-", dst}},
//	}
//	res, err := chain.Run(ctx)
//	if err == nil && !res.Success() {
//	    // encoder failed
//	}
type Chain struct {
	First  Command
	Second Command

	// Dir is the working directory for both stages. Empty means the
	// current directory.
	Dir string
}

// Run starts both stages and waits for both to exit.
//
// An error is returned only when the pipeline cannot be established: the pipe
// cannot be created or a stage fails to start. In that case any stage already
// running is killed and reaped before Run returns. A stage exiting non-zero
// is reported through ChainResult, not as an error.
//
// Cancelling ctx kills both stages.
func (c Chain) Run(ctx context.Context) (ChainResult, error) {
	var result ChainResult

	reader, writer, err := os.Pipe()
	if err != nil {
		return result, fmt.Errorf("create pipe: %w", err)
	}

	first := exec.CommandContext(ctx, c.First.Name, c.First.Args...)
	second := exec.CommandContext(ctx, c.Second.Name, c.Second.Args...)
	first.Dir, second.Dir = c.Dir, c.Dir
	// Grandchildren may keep the stderr pipes open after a stage is killed.
	first.WaitDelay, second.WaitDelay = waitDelay, waitDelay

	firstErr := newTailBuffer(stderrTail)
	secondErr := newTailBuffer(stderrTail)
	first.Stdout = writer
	first.Stderr = firstErr
	second.Stdin = reader
	second.Stdout = nil
	second.Stderr = secondErr

	if err := first.Start(); err != nil {
		reader.Close()
		writer.Close()
		return result, fmt.Errorf("start %s: %w", c.First.Name, err)
	}
	// The child holds its own copy; closing ours lets the reader see EOF
	// once the first stage exits.
	writer.Close()

	if err := second.Start(); err != nil {
		reader.Close()
		_ = first.Process.Kill()
		_ = first.Wait()
		return result, fmt.Errorf("start %s: %w", c.Second.Name, err)
	}
	reader.Close()

	// Wait on the second stage first; if it dies early the first stage gets
	// SIGPIPE and exits on its own.
	secondWait := second.Wait()
	firstWait := first.Wait()

	result.FirstExit = exitCode(first, firstWait)
	result.SecondExit = exitCode(second, secondWait)
	result.FirstStderr = firstErr.String()
	result.SecondStderr = secondErr.String()

	return result, nil
}

// exitCode maps a Wait result to an integer exit code. Errors other than a
// non-zero exit (e.g. a failed stderr copy) count as failure.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code != 0 || waitErr == nil {
			return code
		}
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if waitErr != nil {
		return 1
	}
	return 0
}
