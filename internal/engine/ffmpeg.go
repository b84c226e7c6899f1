package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"batch-transcoder/pkg/models"
)

// Normalized target profile. Every output is H.264 (quality-driven CRF) plus
// AAC at a fixed bitrate, in an MP4 laid out for progressive playback.
const (
	videoCodec  = "libx264"
	videoPreset = "medium"
	videoCRF    = "23"
	audioCodec  = "aac"
	audioRate   = "128k"
)

// FFmpegEngine invokes ffmpeg and ffprobe as subprocesses. All calls are
// synchronous; a capability either completes or fails before the caller
// moves on.
type FFmpegEngine struct {
	ffmpegPath  string
	ffprobePath string
	passthrough bool
	log         hclog.Logger
}

var _ Engine = (*FFmpegEngine)(nil)

// NewFFmpegEngine locates ffmpeg and ffprobe on PATH and verifies both run.
// When passthrough is true, ffmpeg's own diagnostic output is forwarded to
// stderr; otherwise it is captured silently and only surfaces in errors.
func NewFFmpegEngine(passthrough bool, log hclog.Logger) (*FFmpegEngine, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &DependencyError{Tool: "ffmpeg", Err: err}
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, &DependencyError{Tool: "ffprobe", Err: err}
	}

	e := &FFmpegEngine{
		ffmpegPath:  ffmpeg,
		ffprobePath: ffprobe,
		passthrough: passthrough,
		log:         log,
	}

	if err := e.verifyTool(e.ffmpegPath, "ffmpeg"); err != nil {
		return nil, err
	}
	if err := e.verifyTool(e.ffprobePath, "ffprobe"); err != nil {
		return nil, err
	}
	return e, nil
}

// verifyTool runs "<tool> -version" to confirm the binary actually executes.
func (e *FFmpegEngine) verifyTool(path, name string) error {
	if err := exec.Command(path, "-version").Run(); err != nil {
		return &DependencyError{Tool: name, Err: err}
	}
	return nil
}

// Probe runs a single ffprobe JSON call and parses the format section.
func (e *FFmpegEngine) Probe(ctx context.Context, path string) (models.MediaDescriptor, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return models.MediaDescriptor{}, &ProbeError{Path: path, Kind: ProbeExecutionFailed, Err: err}
	}
	return ParseProbe(path, out)
}

// ParseProbe converts raw ffprobe JSON output into a MediaDescriptor.
// Exported so tests don't need a real ffprobe binary.
func ParseProbe(path string, data []byte) (models.MediaDescriptor, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.MediaDescriptor{}, &ProbeError{Path: path, Kind: ProbeMalformedOutput, Err: err}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64)
	if err != nil || duration < 0 {
		return models.MediaDescriptor{}, &ProbeError{
			Path: path, Kind: ProbeMalformedOutput,
			Err: fmt.Errorf("missing or non-numeric format.duration %q", raw.Format.Duration),
		}
	}
	size, err := strconv.ParseInt(strings.TrimSpace(raw.Format.Size), 10, 64)
	if err != nil || size < 0 {
		return models.MediaDescriptor{}, &ProbeError{
			Path: path, Kind: ProbeMalformedOutput,
			Err: fmt.Errorf("missing or non-numeric format.size %q", raw.Format.Size),
		}
	}
	if raw.Format.FormatName == "" {
		return models.MediaDescriptor{}, &ProbeError{
			Path: path, Kind: ProbeMalformedOutput,
			Err: fmt.Errorf("missing format.format_name"),
		}
	}

	return models.MediaDescriptor{
		Path:            path,
		DurationSeconds: duration,
		SizeBytes:       size,
		FormatName:      raw.Format.FormatName,
	}, nil
}

// probeOutput mirrors the slice of ffprobe's JSON we care about. ffprobe
// reports numbers as strings.
type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Split extracts a time range by stream copy (no re-encode).
func (e *FFmpegEngine) Split(ctx context.Context, input, output string, startSeconds, lengthSeconds float64) error {
	args := splitArgs(input, output, startSeconds, lengthSeconds)
	return e.run(ctx, args)
}

// Transcode re-encodes input into the fixed H.264/AAC profile.
func (e *FFmpegEngine) Transcode(ctx context.Context, input, output string) error {
	args := transcodeArgs(input, output)
	return e.run(ctx, args)
}

// Concatenate stream-copies the files listed in manifest, in order, into
// output using the concat demuxer.
func (e *FFmpegEngine) Concatenate(ctx context.Context, manifest, output string) error {
	args := concatArgs(manifest, output)
	return e.run(ctx, args)
}

func splitArgs(input, output string, startSeconds, lengthSeconds float64) []string {
	return []string{
		"-y",
		"-i", input,
		"-ss", formatSeconds(startSeconds),
		"-t", formatSeconds(lengthSeconds),
		"-c", "copy",
		output,
	}
}

func transcodeArgs(input, output string) []string {
	return []string{
		"-y",
		"-i", input,
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-c:a", audioCodec,
		"-strict", "2",
		"-b:a", audioRate,
		"-movflags", "+faststart",
		output,
	}
}

func concatArgs(manifest, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		output,
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// run executes ffmpeg with args, capturing stderr for error reporting. When
// passthrough is enabled stderr is also forwarded to the console in real
// time; otherwise "-loglevel error" keeps the tool quiet.
func (e *FFmpegEngine) run(ctx context.Context, args []string) error {
	if !e.passthrough {
		args = append([]string{"-loglevel", "error"}, args...)
	}

	e.log.Debug("running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	if e.passthrough {
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if tail := stderrTail(stderr.String(), 5); tail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, tail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// stderrTail returns the last n non-empty lines of ffmpeg stderr, joined with
// "; ", so error logs carry the actual tool diagnostic.
func stderrTail(s string, n int) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}
