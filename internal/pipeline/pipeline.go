// Package pipeline converts one media file at a time: probe, chunking
// decision, then either a direct transcode or split -> per-chunk transcode ->
// ordered merge. Intermediate artifacts are deleted as soon as the next stage
// has consumed them, so peak disk usage stays near twice one file's size.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"batch-transcoder/internal/engine"
	"batch-transcoder/pkg/models"
)

// HeadroomCheck is called before the chunked branch with the input path and
// the rough peak disk usage in bytes. Advisory only; it cannot stop the run.
type HeadroomCheck func(path string, requiredBytes uint64)

// Pipeline drives the per-file conversion. Files are processed strictly
// sequentially; chunks within a file are transcoded one at a time in plan
// order.
type Pipeline struct {
	eng         engine.Engine
	thresholdMB float64
	headroom    HeadroomCheck
	log         hclog.Logger
}

// New returns a Pipeline. headroom may be nil to skip the disk check.
func New(eng engine.Engine, thresholdMB float64, headroom HeadroomCheck, log hclog.Logger) *Pipeline {
	return &Pipeline{
		eng:         eng,
		thresholdMB: thresholdMB,
		headroom:    headroom,
		log:         log,
	}
}

// Process converts one file and returns its terminal result. On failure no
// artifacts of the failed stage are deleted; whatever exists stays on disk
// for diagnosis. The original input is removed only by a successful merge
// (chunked branch); for the direct branch deletion is the caller's job.
func (p *Pipeline) Process(ctx context.Context, path string) models.TranscodeResult {
	desc, err := p.eng.Probe(ctx, path)
	if err != nil {
		return failure(err)
	}

	p.log.Info("probed",
		"file", filepath.Base(path),
		"duration_s", fmt.Sprintf("%.2f", desc.DurationSeconds),
		"size_mb", fmt.Sprintf("%.2f", desc.SizeMB()),
		"format", desc.FormatName,
	)

	specs, err := PlanChunks(desc, p.thresholdMB)
	if err != nil {
		return failure(err)
	}

	if specs == nil {
		return p.direct(ctx, path)
	}
	return p.chunked(ctx, desc, specs)
}

// direct is the single-pass branch for files under the chunk threshold.
func (p *Pipeline) direct(ctx context.Context, path string) models.TranscodeResult {
	output := ConvertedName(path)
	p.log.Info("transcoding", "file", filepath.Base(path), "output", filepath.Base(output))

	if err := p.eng.Transcode(ctx, path, output); err != nil {
		return failure(&TranscodeError{Path: path, Err: err})
	}
	if err := verifyArtifact(output); err != nil {
		return failure(&TranscodeError{Path: path, Err: err})
	}
	return success(output)
}

// chunked is the split -> transcode x n -> merge branch for oversized files.
func (p *Pipeline) chunked(ctx context.Context, desc models.MediaDescriptor, specs []models.ChunkSpec) models.TranscodeResult {
	path := desc.Path

	if p.headroom != nil {
		// Peak usage is roughly the original plus one full set of chunks.
		p.headroom(path, uint64(desc.SizeBytes)*2)
	}

	p.log.Info("splitting", "file", filepath.Base(path), "chunks", len(specs))
	chunks, err := p.split(ctx, path, specs)
	if err != nil {
		if len(chunks) > 0 {
			p.log.Warn("split aborted, leaving partial chunks for inspection", "count", len(chunks))
		}
		return failure(err)
	}

	transcoded := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := p.transcodeChunk(ctx, chunk)
		if err != nil {
			return failure(err)
		}
		transcoded = append(transcoded, out)
	}

	output, err := p.merge(ctx, transcoded, path)
	if err != nil {
		return failure(err)
	}
	return success(output)
}

// split extracts every planned chunk by stream copy. On the first failure it
// returns the chunks created so far together with a SplitError; nothing is
// deleted here so the failure stays diagnosable.
func (p *Pipeline) split(ctx context.Context, input string, specs []models.ChunkSpec) ([]string, error) {
	var created []string
	for _, spec := range specs {
		chunk := ChunkName(input, spec.Index)
		if err := p.eng.Split(ctx, input, chunk, spec.StartSeconds, spec.LengthSeconds); err != nil {
			return created, &SplitError{ChunkIndex: spec.Index, Err: err}
		}
		created = append(created, chunk)
		p.log.Debug("created chunk", "chunk", filepath.Base(chunk), "start_s", spec.StartSeconds)
	}
	return created, nil
}

// transcodeChunk encodes one chunk and deletes its source on success,
// reclaiming disk space before the next chunk is produced. On failure the
// source chunk is preserved.
func (p *Pipeline) transcodeChunk(ctx context.Context, chunk string) (string, error) {
	output := ConvertedName(chunk)
	p.log.Info("transcoding chunk", "chunk", filepath.Base(chunk))

	if err := p.eng.Transcode(ctx, chunk, output); err != nil {
		return "", &TranscodeError{Path: chunk, Err: err}
	}
	if err := verifyArtifact(output); err != nil {
		return "", &TranscodeError{Path: chunk, Err: err}
	}

	if err := os.Remove(chunk); err != nil {
		p.log.Warn("could not delete consumed chunk", "chunk", chunk, "error", err)
	}
	return output, nil
}

// merge concatenates the transcoded chunks in plan order. Only after the
// merged output is confirmed to exist and be non-empty are the chunks, the
// manifest, and the original input deleted. On failure everything stays.
func (p *Pipeline) merge(ctx context.Context, chunks []string, original string) (string, error) {
	manifest := manifestName(original)
	if err := writeManifest(manifest, chunks); err != nil {
		return "", &MergeError{Path: original, Err: err}
	}

	output := ConvertedName(original)
	p.log.Info("merging", "chunks", len(chunks), "output", filepath.Base(output))

	if err := p.eng.Concatenate(ctx, manifest, output); err != nil {
		return "", &MergeError{Path: original, Err: err}
	}
	if err := verifyArtifact(output); err != nil {
		return "", &MergeError{Path: original, Err: err}
	}

	for _, chunk := range chunks {
		if err := os.Remove(chunk); err != nil {
			p.log.Warn("could not delete merged chunk", "chunk", chunk, "error", err)
		}
	}
	if err := os.Remove(manifest); err != nil {
		p.log.Warn("could not delete manifest", "manifest", manifest, "error", err)
	}
	if err := os.Remove(original); err != nil {
		p.log.Warn("could not delete original", "file", original, "error", err)
	}
	return output, nil
}

// writeManifest writes a concat-demuxer manifest listing chunks in order.
func writeManifest(path string, chunks []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	for _, chunk := range chunks {
		if _, err := fmt.Fprintf(f, "file '%s'\n", chunk); err != nil {
			f.Close()
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	return f.Close()
}

// verifyArtifact confirms an engine output exists and is non-empty. Sources
// are never deleted on the strength of an unverified output.
func verifyArtifact(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("output is empty: %s", path)
	}
	return nil
}

func success(output string) models.TranscodeResult {
	return models.TranscodeResult{Success: true, OutputPath: output}
}

func failure(err error) models.TranscodeResult {
	return models.TranscodeResult{Success: false, ErrorDetail: err.Error()}
}
