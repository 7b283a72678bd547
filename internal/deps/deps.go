// Package deps checks that the external programs audiovert shells out to are
// installed before any work starts.
package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrMissing reports that at least one required program is unavailable.
var ErrMissing = errors.New("required program not found")

// Requirement defines an external program audiovert relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the programs a run needs. The encoder is required when
// conversions are planned; ffprobe only when it backs tag reading.
func Requirements(encoderProgram string, needEncoder bool, ffprobe string, needProbe bool) []Requirement {
	var reqs []Requirement
	if needEncoder {
		reqs = append(reqs, Requirement{Name: "FFmpeg", Command: encoderProgram, Description: "Encodes converted files"})
	}
	if needProbe {
		reqs = append(reqs, Requirement{Name: "FFprobe", Command: ffprobe, Description: "Reads tags for --meta"})
	}
	return reqs
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
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing returns an error naming every unavailable non-optional program.
func Missing(statuses []Status) error {
	var details []string
	for _, s := range statuses {
		if s.Available || s.Optional {
			continue
		}
		details = append(details, fmt.Sprintf("%s (%s)", s.Name, s.Detail))
	}
	if len(details) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(details, ", "))
}
