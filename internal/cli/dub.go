package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubber/internal/audio"
	"github.com/alnah/go-dubber/internal/config"
	"github.com/alnah/go-dubber/internal/dub"
	"github.com/alnah/go-dubber/internal/lang"
)

// supportedFormats lists video containers FFmpeg demuxes reliably and that
// carry a video stream the mux step can copy.
var supportedFormats = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
// The list is sorted for deterministic output in tests and user-facing messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// deriveOutputPath converts an input video path to a dubbed output path.
// Example: "talk.mp4" + "en" -> "talk.en.mp4"
func deriveOutputPath(inputPath, targetLang string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "." + lang.Normalize(targetLang) + ext
}

// dubFlags holds the flag values of the dub command.
type dubFlags struct {
	output      string
	sourceLang  string
	targetLang  string
	voice       string
	provider    string
	workDir     string
	keepWorkDir bool
}

// DubCmd creates the dub command.
// The env parameter provides injectable dependencies for testing.
func DubCmd(env *Env) *cobra.Command {
	var flags dubFlags

	cmd := &cobra.Command{
		Use:   "dub <video-file>",
		Short: "Dub a video into another language",
		Long: `Dub a video into another language.

The source audio is transcribed, translated utterance by utterance, and
re-voiced with synthesized speech aligned to the original timing. The dubbed
track is mixed over an attenuated bed of the original audio and muxed back
under the untouched video stream.

Transcription and synthesis always use OpenAI. Translation uses OpenAI by
default, or DeepSeek with --provider deepseek.

Supported formats: avi, m4v, mkv, mov, mp4, webm`,
		Example: `  dubber dub talk.mp4 --to en
  dubber dub lecture.mkv --from ru --to en -o lecture-en.mkv
  dubber dub interview.mp4 --to fr --voice onyx
  dubber dub talk.mp4 --to en --provider deepseek  # Use DeepSeek for translation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDub(cmd, env, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: <input>.<to>.<ext>)")
	cmd.Flags().StringVar(&flags.sourceLang, "from", "", "Source language (ISO 639-1 code; default: auto-detect)")
	cmd.Flags().StringVar(&flags.targetLang, "to", "", "Target language (ISO 639-1 code)")
	cmd.Flags().StringVar(&flags.voice, "voice", "", "Synthesis voice (default: nova)")
	cmd.Flags().StringVar(&flags.provider, "provider", ProviderOpenAI, "LLM provider for translation: openai, deepseek")
	cmd.Flags().StringVar(&flags.workDir, "work-dir", "", "Directory for intermediate audio (default: temp dir)")
	cmd.Flags().BoolVar(&flags.keepWorkDir, "keep-workdir", false, "Keep intermediate audio files after the run")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// runDub executes the dubbing pipeline.
// Validation order: file exists -> format -> languages -> provider -> output -> API keys
func runDub(cmd *cobra.Command, env *Env, inputPath string, flags dubFlags) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. Language validation
	if err := lang.Validate(flags.sourceLang); err != nil {
		return err
	}
	if err := lang.Validate(flags.targetLang); err != nil {
		return err
	}
	if flags.sourceLang != "" &&
		lang.BaseCode(flags.sourceLang) == lang.BaseCode(flags.targetLang) {
		return fmt.Errorf("%w: %s", ErrSameLanguage, flags.targetLang)
	}

	// 4. Provider validation
	if flags.provider != ProviderOpenAI && flags.provider != ProviderDeepSeek {
		return ErrUnsupportedProvider
	}

	// 5. Load config (warn on failure, continue with defaults)
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	// 6. Output path (resolve with output-dir, derive default from input)
	defaultOutput := deriveOutputPath(filepath.Base(inputPath), flags.targetLang)
	output := config.ResolveOutputPath(flags.output, cfg.OutputDir, defaultOutput)
	if _, err := os.Stat(output); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, output)
	}

	// 7. API keys present (OpenAI always needed for transcription and synthesis)
	openaiKey := env.Getenv(EnvOpenAIAPIKey)
	if openaiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}
	translateKey := openaiKey
	if flags.provider == ProviderDeepSeek {
		translateKey = env.Getenv(EnvDeepSeekAPIKey)
		if translateKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrDeepSeekKeyMissing, EnvDeepSeekAPIKey)
		}
	}

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve()
	if err != nil {
		return err
	}
	media := env.MediaFactory.NewMedia(ffmpegPath)

	workDir, cleanup, err := makeWorkDir(flags.workDir, cfg.WorkDir, inputPath)
	if err != nil {
		return err
	}
	defer func() {
		if flags.keepWorkDir {
			fmt.Fprintf(env.Stderr, "Keeping work directory: %s\n", workDir)
			return
		}
		if err := cleanup(); err != nil {
			fmt.Fprintf(env.Stderr, "Warning: failed to clean up %s: %v\n", workDir, err)
		}
	}()

	// === EXTRACTION ===

	fmt.Fprintln(env.Stderr, "Extracting audio...")

	videoDuration, err := media.ProbeDuration(ctx, inputPath)
	if err != nil {
		return err
	}

	sourceWAV := filepath.Join(workDir, "source.wav")
	if err := media.ExtractAudio(ctx, inputPath, sourceWAV, audio.PipelineRate); err != nil {
		return err
	}

	source, err := audio.ReadFile(sourceWAV)
	if err != nil {
		return err
	}

	// Speaker reference for future voice-matching backends; the bundled
	// OpenAI synthesizer selects voices by name and ignores it.
	sm := audio.AnalyzeSilence(source)
	speakerRef, err := audio.SpeakerReference(source, sm)
	if err != nil {
		if !errors.Is(err, audio.ErrNoSpeech) {
			return err
		}
		fmt.Fprintln(env.Stderr, "Warning: no speech found for speaker reference")
	} else if err := audio.WriteFile(filepath.Join(workDir, "reference.wav"), speakerRef); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to write speaker reference: %v\n", err)
	}

	// === DUBBING ===

	voice := flags.voice
	if voice == "" {
		voice = cfg.Voice
	}

	controller := dub.New(
		env.CollaboratorMaker.NewTranscriber(openaiKey),
		env.CollaboratorMaker.NewTranslator(flags.provider, translateKey),
		env.CollaboratorMaker.NewSynthesizer(openaiKey, voice),
		dub.WithWarnFunc(func(msg string) {
			fmt.Fprintf(env.Stderr, "Warning: %s\n", msg)
		}),
		dub.WithProgressFunc(func(msg string) {
			fmt.Fprintf(env.Stderr, "  %s\n", msg)
		}),
		// Per-window tracks stay inspectable under --keep-workdir.
		dub.WithWindowSink(func(w dub.Window, t audio.Track) {
			p := filepath.Join(workDir, fmt.Sprintf("window-%02d.wav", w.Index))
			if err := audio.WriteFile(p, t); err != nil {
				fmt.Fprintf(env.Stderr, "Warning: failed to write %s: %v\n", p, err)
			}
		}),
	)

	fmt.Fprintln(env.Stderr, "Dubbing...")
	dubbed, summary, err := controller.Run(ctx, dub.Input{
		Source:         source,
		SourcePath:     sourceWAV,
		SpeakerRef:     speakerRef,
		SourceLang:     flags.sourceLang,
		TargetLang:     flags.targetLang,
		TargetDuration: videoDuration,
	})
	if err != nil {
		return err
	}

	// === MUX ===

	// An interrupt cancels ctx mid-run; the windows dubbed so far still
	// get written and muxed, so the partial result is playable.
	finishCtx := context.WithoutCancel(ctx)

	dubbedWAV := filepath.Join(workDir, "dubbed.wav")
	if err := audio.WriteFile(dubbedWAV, dubbed); err != nil {
		return err
	}

	fmt.Fprintln(env.Stderr, "Muxing...")
	if err := media.Mux(finishCtx, inputPath, dubbedWAV, output); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "%s\n", summary)
	fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	return nil
}

// makeWorkDir creates the per-run work directory, keyed by the input's
// base name so intermediates for the same video land in the same place:
// <base>/<video-name>/ holds the extracted source track, the speaker
// reference, per-window tracks and the final dubbed track. Flag beats
// config beats the system temp dir. The returned cleanup removes the
// run directory.
func makeWorkDir(flagDir, cfgDir, inputPath string) (string, func() error, error) {
	base := flagDir
	if base == "" {
		base = cfgDir
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), "go-dubber")
	}
	base = config.ExpandPath(base)

	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", nil, fmt.Errorf("cannot create work directory: %w", err)
	}
	return dir, func() error { return os.RemoveAll(dir) }, nil
}
