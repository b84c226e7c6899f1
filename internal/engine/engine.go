// Package engine defines the media-processing capabilities the pipeline
// depends on and provides the ffmpeg/ffprobe subprocess implementation.
//
// The pipeline only ever talks to the Engine interface, so the physical
// invocation (subprocess today, library binding or remote service tomorrow)
// can change without touching the chunking logic.
package engine

import (
	"context"

	"batch-transcoder/pkg/models"
)

// Engine is the capability surface of the external media tool.
type Engine interface {
	// Probe returns duration/size/format metadata for one input file.
	Probe(ctx context.Context, path string) (models.MediaDescriptor, error)

	// Split stream-copies a time range of input into output without
	// re-encoding, starting at startSeconds for lengthSeconds.
	Split(ctx context.Context, input, output string, startSeconds, lengthSeconds float64) error

	// Transcode re-encodes input into the normalized H.264/AAC profile.
	Transcode(ctx context.Context, input, output string) error

	// Concatenate stream-copies the files listed in the manifest, in order,
	// into output.
	Concatenate(ctx context.Context, manifest, output string) error
}
