// Package deps verifies that the external programs a conversion run shells
// out to are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/handiism/bandcamp-converter/internal/config"
)

// Requirement defines an external program the converter relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Path        string
	Detail      string
}

// PreconditionError lists every required program that could not be found.
// It aborts a run before any archive is touched.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("missing commands: %s", strings.Join(e.Missing, ", "))
}

// Requirements returns the programs a run with settings needs.
func Requirements(settings *config.Settings) []Requirement {
	return []Requirement{
		{Name: "flac", Command: settings.FlacCommand, Description: "decodes FLAC sources"},
		{Name: "lame", Command: settings.LameCommand, Description: "encodes MP3 output"},
		{Name: "metaflac", Command: settings.MetaflacCommand, Description: "lists Vorbis comments"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Check returns a *PreconditionError naming all unavailable programs, or nil.
func Check(settings *config.Settings) error {
	var missing []string
	for _, s := range CheckBinaries(Requirements(settings)) {
		if !s.Available {
			missing = append(missing, s.Command)
		}
	}
	if len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	return nil
}
