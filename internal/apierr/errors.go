// Package apierr classifies provider errors for the dubbing collaborators
// and carries their shared retry loop. The transcription, translation and
// synthesis adapters all talk to OpenAI-shaped HTTP APIs; each maps the
// provider's error types onto these sentinels at its boundary, so the
// controller and the CLI's exit-code table can reason about failures
// without knowing which endpoint produced them.
//
// Adapters wrap with fmt.Errorf("...: %w", sentinel); callers check with
// errors.Is.
package apierr

import "errors"

// Sentinels for collaborator call failures.
var (
	// ErrRateLimit marks a throttled request. Transient; the retry loop
	// backs off and tries again.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded marks an exhausted account quota. Looks like a 429
	// on the wire but retrying cannot help; the run should surface it.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout marks a request that ran out of time, on either side.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed marks a rejected API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest marks a 4xx the adapter could not classify further,
	// usually a malformed utterance payload.
	ErrBadRequest = errors.New("bad request")
)
