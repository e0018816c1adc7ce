package cli

import (
	"context"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubber/internal/config"
	"github.com/alnah/go-dubber/internal/dub"
	"github.com/alnah/go-dubber/internal/ffmpeg"
	"github.com/alnah/go-dubber/internal/synth"
	"github.com/alnah/go-dubber/internal/transcribe"
	"github.com/alnah/go-dubber/internal/translate"
)

// API key environment variables.
const (
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
)

// Translation provider names.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

// deepSeekBaseURL is the OpenAI-compatible endpoint of DeepSeek.
const deepSeekBaseURL = "https://api.deepseek.com/v1"

// deepSeekChatModel is the DeepSeek model used for translation.
const deepSeekChatModel = "deepseek-chat"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	FFmpegResolver    FFmpegResolver
	ConfigLoader      ConfigLoader
	MediaFactory      MediaFactory
	CollaboratorMaker CollaboratorMaker
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve() (string, error)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Media performs container-level operations on source and output files.
type Media interface {
	ExtractAudio(ctx context.Context, inputPath, wavPath string, rate int) error
	Mux(ctx context.Context, videoPath, audioPath, outputPath string) error
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// MediaFactory creates Media handles bound to an ffmpeg binary.
type MediaFactory interface {
	NewMedia(ffmpegPath string) Media
}

// CollaboratorMaker creates the API-backed collaborators of a dubbing run.
type CollaboratorMaker interface {
	NewTranscriber(openaiKey string) dub.Transcriber
	NewTranslator(provider, apiKey string) dub.Translator
	NewSynthesizer(openaiKey, voice string) dub.Synthesizer
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithMediaFactory sets the media factory.
func WithMediaFactory(f MediaFactory) EnvOption {
	return func(e *Env) {
		e.MediaFactory = f
	}
}

// WithCollaboratorMaker sets the collaborator factory.
func WithCollaboratorMaker(m CollaboratorMaker) EnvOption {
	return func(e *Env) {
		e.CollaboratorMaker = m
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stderr:            os.Stderr,
		Getenv:            os.Getenv,
		Now:               time.Now,
		FFmpegResolver:    ffmpeg.NewResolver(),
		ConfigLoader:      &defaultConfigLoader{},
		MediaFactory:      &defaultMediaFactory{},
		CollaboratorMaker: &defaultCollaboratorMaker{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultMediaFactory implements MediaFactory using the ffmpeg package.
type defaultMediaFactory struct{}

func (defaultMediaFactory) NewMedia(ffmpegPath string) Media {
	return ffmpeg.NewMedia(ffmpegPath)
}

// defaultCollaboratorMaker implements CollaboratorMaker using the OpenAI
// and DeepSeek APIs.
type defaultCollaboratorMaker struct{}

func (defaultCollaboratorMaker) NewTranscriber(openaiKey string) dub.Transcriber {
	client := openai.NewClient(openaiKey)
	return transcribe.NewOpenAITranscriber(client)
}

func (defaultCollaboratorMaker) NewTranslator(provider, apiKey string) dub.Translator {
	if provider == ProviderDeepSeek {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = deepSeekBaseURL
		client := openai.NewClientWithConfig(cfg)
		return translate.NewOpenAITranslator(client, translate.WithModel(deepSeekChatModel))
	}
	client := openai.NewClient(apiKey)
	return translate.NewOpenAITranslator(client)
}

func (defaultCollaboratorMaker) NewSynthesizer(openaiKey, voice string) dub.Synthesizer {
	client := openai.NewClient(openaiKey)
	var opts []synth.Option
	if voice != "" {
		opts = append(opts, synth.WithVoice(openai.SpeechVoice(voice)))
	}
	return synth.NewOpenAISynthesizer(client, opts...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver    = (*ffmpeg.Resolver)(nil)
	_ ConfigLoader      = (*defaultConfigLoader)(nil)
	_ MediaFactory      = (*defaultMediaFactory)(nil)
	_ CollaboratorMaker = (*defaultCollaboratorMaker)(nil)
	_ Media             = (*ffmpeg.Media)(nil)
)
