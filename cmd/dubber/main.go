package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-dubber/internal/apierr"
	"github.com/alnah/go-dubber/internal/audio"
	"github.com/alnah/go-dubber/internal/cli"
	"github.com/alnah/go-dubber/internal/dub"
	"github.com/alnah/go-dubber/internal/ffmpeg"
	"github.com/alnah/go-dubber/internal/interrupt"
	"github.com/alnah/go-dubber/internal/lang"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitAPI        = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the context so a running dub finalizes its
	// partial output; a second Ctrl+C within the window aborts outright.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "dubber",
		Short:   "Dub videos into other languages with aligned synthesized speech",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.DubCmd(env))
	rootCmd.AddCommand(cli.ProbeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
	if handler.WasInterrupted() {
		os.Exit(ExitInterrupt)
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	// These patterns are stable across Cobra versions (tested with v1.8+).
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, cli.ErrAPIKeyMissing) ||
		errors.Is(err, cli.ErrDeepSeekKeyMissing) || errors.Is(err, cli.ErrUnsupportedProvider) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrUnsupportedFormat) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, cli.ErrSameLanguage) ||
		errors.Is(err, lang.ErrInvalid) || errors.Is(err, ffmpeg.ErrNoDuration) ||
		errors.Is(err, audio.ErrInvalidWAV) || errors.Is(err, dub.ErrNoAudio) {
		return ExitValidation
	}

	// API errors (ExitAPI = 5).
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) {
		return ExitAPI
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
