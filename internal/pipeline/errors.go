package pipeline

import "fmt"

// PlanningError is returned when a file needs chunking but its probed
// duration cannot be divided into time ranges.
type PlanningError struct {
	Path            string
	DurationSeconds float64
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("plan chunks for %s: invalid duration %.3fs", e.Path, e.DurationSeconds)
}

// SplitError aborts the whole split when extracting one chunk fails.
// ChunkIndex is the 1-based index of the failed extraction.
type SplitError struct {
	ChunkIndex int
	Err        error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("split chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *SplitError) Unwrap() error { return e.Err }

// TranscodeError is returned when encoding an input (a whole file or a single
// chunk) fails or produces an empty output.
type TranscodeError struct {
	Path string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Path, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// MergeError is returned when concatenating transcoded chunks fails. Nothing
// is deleted on a merge failure.
type MergeError struct {
	Path string
	Err  error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge chunks of %s: %v", e.Path, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }
