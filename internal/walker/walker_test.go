package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batch-transcoder/internal/engine"
	"batch-transcoder/internal/pipeline"
	"batch-transcoder/pkg/models"
)

// stubEngine reports every file as small (direct branch) and fails encodes
// whose input contains failFor.
type stubEngine struct {
	failFor string
}

var _ engine.Engine = (*stubEngine)(nil)

func (s *stubEngine) Probe(ctx context.Context, path string) (models.MediaDescriptor, error) {
	return models.MediaDescriptor{
		Path:            path,
		DurationSeconds: 30,
		SizeBytes:       1024,
		FormatName:      "matroska,webm",
	}, nil
}

func (s *stubEngine) Split(ctx context.Context, input, output string, start, length float64) error {
	return os.WriteFile(output, []byte("chunk"), 0644)
}

func (s *stubEngine) Transcode(ctx context.Context, input, output string) error {
	if s.failFor != "" && strings.Contains(input, s.failFor) {
		return errors.New("encoder crashed")
	}
	return os.WriteFile(output, []byte("encoded"), 0644)
}

func (s *stubEngine) Concatenate(ctx context.Context, manifest, output string) error {
	return os.WriteFile(output, []byte("merged"), 0644)
}

var testExtensions = map[string]bool{".mkv": true, ".mp4": true, ".mp3": true}

func newWalker(root string, recursive bool, eng engine.Engine) *Walker {
	pipe := pipeline.New(eng, 100, nil, hclog.NewNullLogger())
	return New(root, recursive, testExtensions, pipe, hclog.NewNullLogger())
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("media"), 0644))
}

func TestDiscoverFilters(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "movie.mkv"))
	touch(t, filepath.Join(dir, "song.mp3"))
	touch(t, filepath.Join(dir, "notes.txt"))          // unsupported extension
	touch(t, filepath.Join(dir, "._movie.mkv"))        // AppleDouble junk
	touch(t, filepath.Join(dir, "done..mp4"))          // already converted
	touch(t, filepath.Join(dir, "sub", "nested.mkv"))  // below top level
	touch(t, filepath.Join(dir, "sub", "done2..mp4"))  // converted, nested

	t.Run("local stays at the top level", func(t *testing.T) {
		files, err := newWalker(dir, false, &stubEngine{}).Discover()
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "movie.mkv"),
			filepath.Join(dir, "song.mp3"),
		}, files)
	})

	t.Run("global walks the tree", func(t *testing.T) {
		files, err := newWalker(dir, true, &stubEngine{}).Discover()
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "movie.mkv"),
			filepath.Join(dir, "song.mp3"),
			filepath.Join(dir, "sub", "nested.mkv"),
		}, files)
	})
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := newWalker(filepath.Join(t.TempDir(), "nope"), false, &stubEngine{}).Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunEmptyDirectory(t *testing.T) {
	summary, err := newWalker(t.TempDir(), false, &stubEngine{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCandidates)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
}

func TestRunFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mkv", "bad.mkv", "c.mkv"} {
		touch(t, filepath.Join(dir, name))
	}

	summary, err := newWalker(dir, false, &stubEngine{failFor: "bad.mkv"}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalCandidates)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// The failed file's original survives; successful originals are gone and
	// replaced by marked outputs.
	assert.FileExists(t, filepath.Join(dir, "bad.mkv"))
	assert.NoFileExists(t, filepath.Join(dir, "bad..mp4"))
	for _, name := range []string{"a", "c"} {
		assert.NoFileExists(t, filepath.Join(dir, name+".mkv"))
		assert.FileExists(t, filepath.Join(dir, name+"..mp4"))
	}
}

// After a successful run, re-discovery must not pick up the produced outputs.
func TestRunThenRediscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "movie.mkv"))

	w := newWalker(dir, false, &stubEngine{})
	summary, err := w.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	files, err := w.Discover()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRunHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "movie.mkv"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newWalker(dir, false, &stubEngine{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCandidates)
	assert.Equal(t, 0, summary.Succeeded+summary.Failed)
	assert.FileExists(t, filepath.Join(dir, "movie.mkv"))
}
