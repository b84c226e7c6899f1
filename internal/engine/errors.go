package engine

import "fmt"

// DependencyError indicates a required external tool is missing or broken.
// It is fatal to the whole run and is returned before any file is touched.
type DependencyError struct {
	Tool string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("required tool %q is not available: %v", e.Tool, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// ProbeFailure distinguishes the two ways a probe can go wrong.
type ProbeFailure int

const (
	// ProbeExecutionFailed means ffprobe exited non-zero or could not run.
	ProbeExecutionFailed ProbeFailure = iota
	// ProbeMalformedOutput means ffprobe ran but its metadata could not be
	// parsed (missing fields, non-numeric values, invalid JSON).
	ProbeMalformedOutput
)

// ProbeError is returned when metadata for a file cannot be obtained. The
// file is skipped; probes are never retried.
type ProbeError struct {
	Path string
	Kind ProbeFailure
	Err  error
}

func (e *ProbeError) Error() string {
	switch e.Kind {
	case ProbeMalformedOutput:
		return fmt.Sprintf("probe %s: malformed metadata: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("probe %s: execution failed: %v", e.Path, e.Err)
	}
}

func (e *ProbeError) Unwrap() error { return e.Err }
