// Package transcribe converts source audio into timed utterances using
// OpenAI's transcription API.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubber/internal/align"
	"github.com/alnah/go-dubber/internal/apierr"
	"github.com/alnah/go-dubber/internal/lang"
)

// Default retry configuration.
const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// audioTranscriber is an internal interface for OpenAI audio transcription.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance check.
var _ audioTranscriber = (*openai.Client)(nil)

// OpenAITranscriber produces timed utterances via OpenAI's Whisper API,
// with automatic retries and exponential backoff for transient errors.
type OpenAITranscriber struct {
	client     audioTranscriber
	model      string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures an OpenAITranscriber.
type Option func(*OpenAITranscriber)

// WithModel overrides the transcription model. Default: whisper-1, the only
// OpenAI model that returns per-segment timestamps.
func WithModel(model string) Option {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// NewOpenAITranscriber creates a new OpenAITranscriber.
// The client is injected to enable testing with mocks.
func NewOpenAITranscriber(client audioTranscriber, opts ...Option) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:     client,
		model:      openai.Whisper1,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe transcribes the audio file at audioPath and returns its timed
// utterances in source order. When the API returns text without segment
// timing, the whole response collapses into a single utterance spanning the
// reported duration, so downstream alignment still has something to place.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath, sourceLang string) ([]align.Utterance, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: lang.BaseCode(sourceLang),
	}

	cfg := apierr.RetryConfig{
		MaxRetries: t.maxRetries,
		BaseDelay:  t.baseDelay,
		MaxDelay:   t.maxDelay,
	}
	resp, err := apierr.RetryWithBackoff(ctx, cfg, func() (openai.AudioResponse, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return openai.AudioResponse{}, apierr.Classify(err)
		}
		return resp, nil
	}, apierr.IsRetryable)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return utterances(resp)
}

// utterances converts an API response into the internal utterance form.
func utterances(resp openai.AudioResponse) ([]align.Utterance, error) {
	if len(resp.Segments) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil, ErrNoTranscript
		}
		// Timing-less response: one utterance covering the whole track.
		return []align.Utterance{{
			Start: 0,
			End:   secondsToDuration(resp.Duration),
			Text:  text,
		}}, nil
	}

	utts := make([]align.Utterance, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		utts = append(utts, align.Utterance{
			Start: secondsToDuration(s.Start),
			End:   secondsToDuration(s.End),
			Text:  text,
		})
	}
	return utts, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
