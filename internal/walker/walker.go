// Package walker enumerates candidate media files under a root directory and
// drives each one through the conversion pipeline, accumulating run counters.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"batch-transcoder/internal/pipeline"
	"batch-transcoder/pkg/models"
)

// Walker discovers files and processes them strictly sequentially. A failure
// on one file never aborts the batch.
type Walker struct {
	root       string
	recursive  bool
	extensions map[string]bool
	pipe       *pipeline.Pipeline
	log        hclog.Logger
}

// New returns a Walker over root. extensions maps lowercase extensions
// (with leading dot) to true. recursive selects full-tree search instead of
// the top level only.
func New(root string, recursive bool, extensions map[string]bool, pipe *pipeline.Pipeline, log hclog.Logger) *Walker {
	return &Walker{
		root:       root,
		recursive:  recursive,
		extensions: extensions,
		pipe:       pipe,
		log:        log,
	}
}

// Discover returns the candidate files under the root, sorted for a
// deterministic processing order. Hidden/system-prefixed names, files already
// carrying the converted marker, and unrecognized extensions are filtered
// out.
func (w *Walker) Discover() ([]string, error) {
	fi, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("input directory does not exist: %s", w.root)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", w.root)
	}

	var files []string
	if w.recursive {
		err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if w.isCandidate(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(w.root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if w.isCandidate(entry.Name()) {
				files = append(files, filepath.Join(w.root, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// isCandidate applies the name filters: skip AppleDouble/system "._" files,
// skip already-converted outputs, and keep only configured extensions.
func (w *Walker) isCandidate(name string) bool {
	if strings.HasPrefix(name, "._") {
		return false
	}
	if pipeline.IsConverted(name) {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(name))]
}

// Run processes every candidate in order and returns the batch summary.
// Originals are deleted only after a successful conversion; the chunked
// branch removes its original during the merge, so a missing file here is
// expected.
func (w *Walker) Run(ctx context.Context) (models.RunSummary, error) {
	files, err := w.Discover()
	if err != nil {
		return models.RunSummary{}, err
	}

	counters := models.RunCounters{TotalCandidates: len(files)}
	if len(files) == 0 {
		w.log.Info("no files to process", "root", w.root)
		return models.RunSummary{Root: w.root, RunCounters: counters}, nil
	}

	w.log.Info("found candidates", "count", len(files), "root", w.root)

	for i, path := range files {
		if ctx.Err() != nil {
			w.log.Warn("interrupted, stopping batch")
			break
		}

		w.log.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(files), filepath.Base(path)))

		result := w.pipe.Process(ctx, path)
		if result.Success {
			w.removeOriginal(path)
			counters.Succeeded++
			w.log.Info("converted", "output", filepath.Base(result.OutputPath))
		} else {
			counters.Failed++
			w.log.Error("conversion failed", "file", filepath.Base(path), "error", result.ErrorDetail)
		}

		w.log.Info("progress", "processed", counters.Succeeded+counters.Failed, "total", counters.TotalCandidates)
	}

	w.log.Info("conversion summary",
		"total", counters.TotalCandidates,
		"succeeded", counters.Succeeded,
		"failed", counters.Failed,
	)

	return models.RunSummary{Root: w.root, RunCounters: counters}, nil
}

func (w *Walker) removeOriginal(path string) {
	err := os.Remove(path)
	if err == nil {
		w.log.Info("deleted original", "file", filepath.Base(path))
		return
	}
	// The chunked branch deletes the original inside the merge step.
	if !errors.Is(err, fs.ErrNotExist) {
		w.log.Warn("could not delete original", "file", path, "error", err)
	}
}
