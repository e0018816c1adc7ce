// Package translate converts utterance text between languages using an
// OpenAI-compatible chat completion API.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubber/internal/apierr"
	"github.com/alnah/go-dubber/internal/lang"
)

// Default model and retry configuration.
const (
	defaultModel = openai.GPT4oMini

	// Fewer retries than transcription: one utterance is cheap to lose,
	// its text falls back to the source.
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// systemPrompt instructs the model to translate dialogue for dubbing:
// no commentary, no quotes, length close to the source.
const systemPrompt = "You are a professional dubbing translator. " +
	"Translate the given %s dialogue line into natural spoken %s. " +
	"Keep the translation close to the source in length and rhythm so it can " +
	"be voiced over the same time span. " +
	"Reply with the translated line only, no quotes and no explanations."

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ chatCompleter = (*openai.Client)(nil)

// OpenAITranslator translates dialogue lines via a chat completion API.
// Any OpenAI-compatible endpoint works; DeepSeek via a custom client config
// is the tested alternative.
type OpenAITranslator struct {
	client     chatCompleter
	model      string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures an OpenAITranslator.
type Option func(*OpenAITranslator)

// WithModel sets the chat model used for translation.
func WithModel(model string) Option {
	return func(t *OpenAITranslator) {
		if model != "" {
			t.model = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(t *OpenAITranslator) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(t *OpenAITranslator) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// NewOpenAITranslator creates a new OpenAITranslator.
// The client is injected to enable testing with mocks.
func NewOpenAITranslator(client chatCompleter, opts ...Option) *OpenAITranslator {
	t := &OpenAITranslator{
		client:     client,
		model:      defaultModel,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate translates one dialogue line from sourceLang to targetLang.
// On failure the source text is returned alongside the error, so callers
// can always dub something.
func (t *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPrompt,
					lang.DisplayName(sourceLang), lang.DisplayName(targetLang)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	}

	cfg := apierr.RetryConfig{
		MaxRetries: t.maxRetries,
		BaseDelay:  t.baseDelay,
		MaxDelay:   t.maxDelay,
	}
	out, err := apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := t.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", apierr.Classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyTranslation
		}
		return resp.Choices[0].Message.Content, nil
	}, apierr.IsRetryable)
	if err != nil {
		return text, fmt.Errorf("translation failed: %w", err)
	}

	out = Postprocess(out)
	if out == "" {
		return text, ErrEmptyTranslation
	}
	return out, nil
}
