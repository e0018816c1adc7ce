package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// gracefulTimeout is how long an interrupted FFmpeg process gets to finalize
// its output file before being killed.
const gracefulTimeout = 5 * time.Second

// runFn is the function type for running FFmpeg to completion.
type runFn func(ctx context.Context, path string, args []string, timeout time.Duration) error

// Media performs the container-level operations of a dubbing run:
// extracting the source audio, probing durations, and muxing the dubbed
// track back under the original video stream.
type Media struct {
	ffmpegPath string
	exec       *Executor
	run        runFn
}

// MediaOption configures a Media.
type MediaOption func(*Media)

// WithExecutor sets a custom executor (for testing).
func WithExecutor(e *Executor) MediaOption {
	return func(m *Media) { m.exec = e }
}

// WithRun sets a custom run function (for testing).
func WithRun(fn runFn) MediaOption {
	return func(m *Media) { m.run = fn }
}

// NewMedia creates a Media using the ffmpeg binary at ffmpegPath.
func NewMedia(ffmpegPath string, opts ...MediaOption) *Media {
	m := &Media{
		ffmpegPath: ffmpegPath,
		exec:       NewExecutor(),
		run:        RunGraceful,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ExtractAudio demuxes the audio of inputPath into a mono 16-bit PCM WAV
// file at wavPath, resampled to rate.
func (m *Media) ExtractAudio(ctx context.Context, inputPath, wavPath string, rate int) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(rate),
		"-ac", "1",
		wavPath,
	}
	if err := m.run(ctx, m.ffmpegPath, args, gracefulTimeout); err != nil {
		return fmt.Errorf("extract audio from %s: %w", inputPath, err)
	}
	return nil
}

// Mux writes outputPath with the video stream of videoPath copied untouched
// and audioPath as its only audio stream. The output stops at the shorter
// stream, so an audio track a few frames long of the video never pads the
// container.
func (m *Media) Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
	if err := m.run(ctx, m.ffmpegPath, args, gracefulTimeout); err != nil {
		return fmt.Errorf("mux %s + %s: %w", videoPath, audioPath, err)
	}
	return nil
}

// ProbeDuration reads the container duration of the media file at path.
func (m *Media) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	// A bare -i invocation exits non-zero but still prints the duration
	// banner to stderr.
	out, _ := m.exec.RunOutput(ctx, m.ffmpegPath, []string{"-i", path})
	d, err := parseDuration(out)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return d, nil
}

var (
	// Pattern: Duration: 00:05:23.45
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

	// Fallback pattern: time=00:05:23.45 (from progress output)
	progressRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// parseDuration extracts a duration from FFmpeg stderr output.
func parseDuration(output string) (time.Duration, error) {
	if matches := durationRe.FindStringSubmatch(output); matches != nil {
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4]), nil
	}

	// Use the last progress line, it carries the final time.
	allMatches := progressRe.FindAllStringSubmatch(output, -1)
	if len(allMatches) > 0 {
		matches := allMatches[len(allMatches)-1]
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4]), nil
	}

	return 0, ErrNoDuration
}

// parseTimeComponents converts HH:MM:SS.frac strings to a Duration.
func parseTimeComponents(hours, minutes, seconds, fractional string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	// Normalize the fractional part to milliseconds. Input may carry
	// 1-6+ digits (e.g., ".4", ".45", ".456789").
	frac, _ := strconv.Atoi(fractional)
	ms := frac
	switch n := len(fractional); {
	case n == 1:
		ms = frac * 100
	case n == 2:
		ms = frac * 10
	case n > 3:
		for i := n; i > 3; i-- {
			ms /= 10
		}
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// FormatTime formats a duration for FFmpeg -ss/-to arguments.
func FormatTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
