// Package models holds the data structures shared between the walker, the
// pipeline, and the notify client.
package models

// MediaDescriptor is the parsed metadata for one input file, as reported by
// the probe capability. It is immutable and scoped to a single conversion
// attempt.
type MediaDescriptor struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	SizeBytes       int64   `json:"size_bytes"`
	FormatName      string  `json:"format_name"`
}

// SizeMB returns the file size in mebibytes.
func (d MediaDescriptor) SizeMB() float64 {
	return float64(d.SizeBytes) / (1024 * 1024)
}

// ChunkSpec describes one time-bounded slice of a source file. Index is
// 1-based and matches the _partN suffix of the chunk file on disk.
type ChunkSpec struct {
	Index         int     `json:"index"`
	StartSeconds  float64 `json:"start_seconds"`
	LengthSeconds float64 `json:"length_seconds"`
}

// TranscodeResult is the terminal outcome of processing one file. OutputPath
// is set on success, ErrorDetail on failure.
type TranscodeResult struct {
	Success     bool
	OutputPath  string
	ErrorDetail string
}

// RunCounters tracks per-batch totals. It is owned by the walker and mutated
// only between file completions.
type RunCounters struct {
	TotalCandidates int `json:"total_candidates"`
	Succeeded       int `json:"succeeded"`
	Failed          int `json:"failed"`
}

// RunSummary is the final report for one batch run. It is logged at the end
// of the run and, when a notify URL is configured, posted as JSON.
type RunSummary struct {
	Root string `json:"root"`
	RunCounters
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}
