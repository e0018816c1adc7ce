package ffmpeg

import "fmt"

// Environment variable for a custom ffmpeg path.
const envFFmpegPath = "FFMPEG_PATH"

// Resolver locates the FFmpeg binary.
type Resolver struct {
	stat fileStatter
	env  envProvider
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation (for testing).
func WithFileStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.stat = s }
}

// WithEnvProvider sets the environment provider implementation (for testing).
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		stat: osFileStatter{},
		env:  osEnvProvider{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. System PATH
func (r *Resolver) Resolve() (string, error) {
	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: install ffmpeg and ensure it is on PATH, or set %s",
		ErrNotFound, envFFmpegPath)
}
