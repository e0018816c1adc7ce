package transcribe

import "errors"

// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// ErrNoTranscript indicates the API returned neither segments nor text.
var ErrNoTranscript = errors.New("no transcript returned")
