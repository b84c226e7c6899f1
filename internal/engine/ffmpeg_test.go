package engine

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbeJSON = `{
	"format": {
		"filename": "movie.mkv",
		"format_name": "matroska,webm",
		"duration": "120.500000",
		"size": "262144000"
	},
	"streams": [{"index": 0, "codec_type": "video", "codec_name": "h264"}]
}`

func TestParseProbe(t *testing.T) {
	desc, err := ParseProbe("movie.mkv", []byte(sampleProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, "movie.mkv", desc.Path)
	assert.InDelta(t, 120.5, desc.DurationSeconds, 1e-9)
	assert.Equal(t, int64(262144000), desc.SizeBytes)
	assert.Equal(t, "matroska,webm", desc.FormatName)
	assert.InDelta(t, 250.0, desc.SizeMB(), 0.01)
}

func TestParseProbeMalformed(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"invalid JSON", `{not json`},
		{"missing duration", `{"format": {"format_name": "mp4", "size": "100"}}`},
		{"non-numeric duration", `{"format": {"format_name": "mp4", "duration": "abc", "size": "100"}}`},
		{"missing size", `{"format": {"format_name": "mp4", "duration": "10.0"}}`},
		{"non-numeric size", `{"format": {"format_name": "mp4", "duration": "10.0", "size": "12MB"}}`},
		{"missing format name", `{"format": {"duration": "10.0", "size": "100"}}`},
		{"negative duration", `{"format": {"format_name": "mp4", "duration": "-5", "size": "100"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProbe("movie.mkv", []byte(tt.json))
			require.Error(t, err)

			var pe *ProbeError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, ProbeMalformedOutput, pe.Kind)
			assert.Equal(t, "movie.mkv", pe.Path)
		})
	}
}

func TestTranscodeArgs(t *testing.T) {
	args := transcodeArgs("in.mkv", "out..mp4")

	assert.Equal(t, []string{
		"-y",
		"-i", "in.mkv",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-strict", "2",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"out..mp4",
	}, args)
}

func TestSplitArgs(t *testing.T) {
	args := splitArgs("in.mkv", "in_part2.mp4", 40.0, 40.0)

	assert.Equal(t, []string{
		"-y",
		"-i", "in.mkv",
		"-ss", "40.000",
		"-t", "40.000",
		"-c", "copy",
		"in_part2.mp4",
	}, args)
}

func TestConcatArgs(t *testing.T) {
	args := concatArgs("list.txt", "movie..mp4")

	assert.Equal(t, []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", "list.txt",
		"-c", "copy",
		"movie..mp4",
	}, args)
}

func TestStderrTail(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", stderrTail("", 5))
	})

	t.Run("keeps last lines", func(t *testing.T) {
		in := "one\ntwo\n\nthree\nfour\n"
		assert.Equal(t, "three; four", stderrTail(in, 2))
	})
}

func TestNewFFmpegEngineMissingTools(t *testing.T) {
	// An empty PATH guarantees LookPath fails regardless of the host.
	t.Setenv("PATH", t.TempDir())

	_, err := NewFFmpegEngine(false, hclog.NewNullLogger())
	require.Error(t, err)

	var de *DependencyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "ffmpeg", de.Tool)
}
