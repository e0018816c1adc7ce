// Package synth produces speech audio from translated text using OpenAI's
// text-to-speech API.
package synth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubber/internal/apierr"
	"github.com/alnah/go-dubber/internal/audio"
)

// Default retry configuration.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second

	// maxSpeechResponse caps how much audio one utterance may return (10MB,
	// about five minutes of 24kHz 16-bit mono).
	maxSpeechResponse = 10 * 1024 * 1024
)

// speechCreator is an internal interface for OpenAI speech synthesis.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type speechCreator interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Compile-time interface compliance check.
var _ speechCreator = (*openai.Client)(nil)

// OpenAISynthesizer voices text via OpenAI's TTS API. The API picks voices
// by name rather than by reference audio, so the speaker reference track is
// accepted for interface parity and left unused; voice choice is per
// synthesizer, via WithVoice.
type OpenAISynthesizer struct {
	client     speechCreator
	model      openai.SpeechModel
	voice      openai.SpeechVoice
	rate       int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures an OpenAISynthesizer.
type Option func(*OpenAISynthesizer)

// WithModel sets the TTS model. Default: tts-1.
func WithModel(model openai.SpeechModel) Option {
	return func(s *OpenAISynthesizer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithVoice sets the synthesis voice. Default: nova.
func WithVoice(voice openai.SpeechVoice) Option {
	return func(s *OpenAISynthesizer) {
		if voice != "" {
			s.voice = voice
		}
	}
}

// WithSampleRate sets the sample rate clips are resampled to.
// Default: audio.PipelineRate.
func WithSampleRate(rate int) Option {
	return func(s *OpenAISynthesizer) {
		if rate > 0 {
			s.rate = rate
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(s *OpenAISynthesizer) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(s *OpenAISynthesizer) {
		if base > 0 {
			s.baseDelay = base
		}
		if max > 0 {
			s.maxDelay = max
		}
	}
}

// NewOpenAISynthesizer creates a new OpenAISynthesizer.
// The client is injected to enable testing with mocks.
func NewOpenAISynthesizer(client speechCreator, opts ...Option) *OpenAISynthesizer {
	s := &OpenAISynthesizer{
		client:     client,
		model:      openai.TTSModel1,
		voice:      openai.VoiceNova,
		rate:       audio.PipelineRate,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize voices one line of targetLang text and returns it as a mono
// track at the synthesizer's sample rate.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, _ audio.Track, targetLang string) (audio.Track, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return audio.Track{}, ErrEmptyText
	}

	req := openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	}
	cfg := apierr.RetryConfig{
		MaxRetries: s.maxRetries,
		BaseDelay:  s.baseDelay,
		MaxDelay:   s.maxDelay,
	}
	raw, err := apierr.RetryWithBackoff(ctx, cfg, func() ([]byte, error) {
		resp, err := s.client.CreateSpeech(ctx, req)
		if err != nil {
			return nil, apierr.Classify(err)
		}
		defer func() { _ = resp.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp, maxSpeechResponse))
		if err != nil {
			return nil, fmt.Errorf("reading speech response: %w", err)
		}
		return data, nil
	}, apierr.IsRetryable)
	if err != nil {
		return audio.Track{}, fmt.Errorf("speech synthesis failed: %w", err)
	}

	clip, err := audio.Decode(bytes.NewReader(raw))
	if err != nil {
		return audio.Track{}, fmt.Errorf("decoding speech response: %w", err)
	}
	if clip.Rate() != s.rate {
		clip = clip.Resample(s.rate)
	}
	return clip, nil
}
