package cli_test

// Notes:
// - Commands are driven through cobra Execute with a fully faked Env, so no
//   ffmpeg binary, no API keys, and no network are needed.
// - The fake media writes a real WAV where ExtractAudio would, because the
//   pipeline reads the extracted file back from disk.
//
// Coverage Notes:
// - Happy path: extract and mux argument plumbing, work dir lifecycle,
//   collaborator wiring, and the final "Done:" line.
// - The full fail-fast validation ladder, one sentinel error per rung.
// - Output path derivation from the input name and the configured output dir.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubber/internal/align"
	"github.com/alnah/go-dubber/internal/audio"
	"github.com/alnah/go-dubber/internal/cli"
	"github.com/alnah/go-dubber/internal/config"
	"github.com/alnah/go-dubber/internal/dub"
	"github.com/alnah/go-dubber/internal/lang"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeResolver struct {
	path string
	err  error
}

func (r fakeResolver) Resolve() (string, error) { return r.path, r.err }

type fakeLoader struct {
	cfg config.Config
	err error
}

func (l fakeLoader) Load() (config.Config, error) { return l.cfg, l.err }

// fakeMedia records every container operation and writes a real WAV where
// the extraction step would, so the pipeline can read it back.
type fakeMedia struct {
	probeDur time.Duration
	probeErr error

	extractInput string
	extractWAV   string
	extractRate  int

	muxVideo       string
	muxAudio       string
	muxOutput      string
	muxAudioExists bool
}

func (m *fakeMedia) ProbeDuration(_ context.Context, _ string) (time.Duration, error) {
	return m.probeDur, m.probeErr
}

func (m *fakeMedia) ExtractAudio(_ context.Context, inputPath, wavPath string, rate int) error {
	m.extractInput = inputPath
	m.extractWAV = wavPath
	m.extractRate = rate
	// Constant full-speech amplitude, so the speaker reference step finds
	// speech to extract.
	samples := make([]int, audio.SamplesFor(m.probeDur, rate))
	for i := range samples {
		samples[i] = 10000
	}
	return audio.WriteFile(wavPath, audio.NewTrack(samples, rate))
}

func (m *fakeMedia) Mux(_ context.Context, videoPath, audioPath, outputPath string) error {
	m.muxVideo = videoPath
	m.muxAudio = audioPath
	m.muxOutput = outputPath
	_, err := os.Stat(audioPath)
	m.muxAudioExists = err == nil
	return nil
}

type fakeMediaFactory struct {
	media      *fakeMedia
	ffmpegPath string
}

func (f *fakeMediaFactory) NewMedia(ffmpegPath string) cli.Media {
	f.ffmpegPath = ffmpegPath
	return f.media
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(_ context.Context, _, _ string) ([]align.Utterance, error) {
	return []align.Utterance{{Start: 0, End: 1, Text: "Hello."}}, nil
}

type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, _, _, _ string) (string, error) {
	return "Bonjour.", nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(_ context.Context, _ string, _ audio.Track, _ string) (audio.Track, error) {
	return audio.Silence(time.Second, audio.PipelineRate), nil
}

// fakeMaker hands out stub collaborators and records the wiring arguments.
type fakeMaker struct {
	openaiKey    string
	provider     string
	translateKey string
	voice        string
}

func (m *fakeMaker) NewTranscriber(openaiKey string) dub.Transcriber {
	m.openaiKey = openaiKey
	return stubTranscriber{}
}

func (m *fakeMaker) NewTranslator(provider, apiKey string) dub.Translator {
	m.provider = provider
	m.translateKey = apiKey
	return stubTranslator{}
}

func (m *fakeMaker) NewSynthesizer(_, voice string) dub.Synthesizer {
	m.voice = voice
	return stubSynthesizer{}
}

// testHarness bundles a fully faked Env with handles on its fakes.
type testHarness struct {
	env    *cli.Env
	stderr *bytes.Buffer
	media  *fakeMedia
	maker  *fakeMaker
	envars map[string]string
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		stderr: &bytes.Buffer{},
		media:  &fakeMedia{probeDur: 2 * time.Second},
		maker:  &fakeMaker{},
		envars: map[string]string{cli.EnvOpenAIAPIKey: "sk-test"},
	}
	h.env = cli.NewEnv(
		cli.WithStderr(h.stderr),
		cli.WithGetenv(func(key string) string { return h.envars[key] }),
		cli.WithFFmpegResolver(fakeResolver{path: "/usr/bin/ffmpeg"}),
		cli.WithConfigLoader(fakeLoader{}),
		cli.WithMediaFactory(&fakeMediaFactory{media: h.media}),
		cli.WithCollaboratorMaker(h.maker),
	)
	return h
}

// execute runs a freshly built command with the given args, swallowing
// cobra's own usage output.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

// writeVideo drops a placeholder input file and returns its path.
func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("not a real container"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// TestDubRun - End-to-end through the faked pipeline
// ---------------------------------------------------------------------------

func TestDubRun(t *testing.T) {
	t.Run("happy path plumbs extract, dub, and mux", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")
		workBase := t.TempDir()

		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "-o", output, "--work-dir", workBase)
		if err != nil {
			t.Fatalf("dub failed: %v\nstderr:\n%s", err, h.stderr.String())
		}

		if h.media.extractInput != input {
			t.Errorf("extracted from %q, want %q", h.media.extractInput, input)
		}
		if h.media.extractRate != audio.PipelineRate {
			t.Errorf("extract rate = %d, want %d", h.media.extractRate, audio.PipelineRate)
		}
		if got := filepath.Base(h.media.extractWAV); got != "source.wav" {
			t.Errorf("extract target = %q, want source.wav", got)
		}

		if h.media.muxVideo != input {
			t.Errorf("muxed video %q, want %q", h.media.muxVideo, input)
		}
		if got := filepath.Base(h.media.muxAudio); got != "dubbed.wav" {
			t.Errorf("muxed audio = %q, want dubbed.wav", got)
		}
		if h.media.muxOutput != output {
			t.Errorf("muxed to %q, want %q", h.media.muxOutput, output)
		}
		if !h.media.muxAudioExists {
			t.Error("dubbed WAV was not on disk when mux ran")
		}

		if h.maker.openaiKey != "sk-test" {
			t.Errorf("transcriber key = %q, want sk-test", h.maker.openaiKey)
		}
		if h.maker.provider != "openai" || h.maker.translateKey != "sk-test" {
			t.Errorf("translator wired as (%q, %q), want (openai, sk-test)",
				h.maker.provider, h.maker.translateKey)
		}

		if !strings.Contains(h.stderr.String(), "Done: "+output) {
			t.Errorf("stderr missing Done line:\n%s", h.stderr.String())
		}

		entries, err := os.ReadDir(workBase)
		if err != nil {
			t.Fatalf("read work base: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("work directory not cleaned up, %d entries remain", len(entries))
		}
	})

	t.Run("keep-workdir preserves intermediates", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")
		workBase := t.TempDir()

		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "-o", output, "--work-dir", workBase, "--keep-workdir")
		if err != nil {
			t.Fatalf("dub failed: %v", err)
		}

		// The run directory is keyed by the input's base name and holds
		// every intermediate of the run.
		runDir := filepath.Join(workBase, "talk")
		for _, name := range []string{"source.wav", "reference.wav", "window-00.wav", "dubbed.wav"} {
			if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
				t.Errorf("missing intermediate %s: %v", name, err)
			}
		}
		if !strings.Contains(h.stderr.String(), "Keeping work directory") {
			t.Errorf("stderr missing keep notice:\n%s", h.stderr.String())
		}
	})

	t.Run("default output joins configured output dir", func(t *testing.T) {
		h := newHarness(t)
		outDir := t.TempDir()
		h.env.ConfigLoader = fakeLoader{cfg: config.Config{OutputDir: outDir}}
		input := writeVideo(t, t.TempDir(), "talk.mp4")

		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "--work-dir", t.TempDir())
		if err != nil {
			t.Fatalf("dub failed: %v", err)
		}

		want := filepath.Join(outDir, "talk.fr.mp4")
		if h.media.muxOutput != want {
			t.Errorf("output = %q, want %q", h.media.muxOutput, want)
		}
	})

	t.Run("config load failure warns and continues", func(t *testing.T) {
		h := newHarness(t)
		h.env.ConfigLoader = fakeLoader{err: fmt.Errorf("corrupt config")}
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")

		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "-o", output, "--work-dir", t.TempDir())
		if err != nil {
			t.Fatalf("dub failed: %v", err)
		}
		if !strings.Contains(h.stderr.String(), "Warning: failed to load config") {
			t.Errorf("stderr missing config warning:\n%s", h.stderr.String())
		}
	})

	t.Run("flag voice reaches the synthesizer factory", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")

		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "-o", output, "--work-dir", t.TempDir(), "--voice", "onyx")
		if err != nil {
			t.Fatalf("dub failed: %v", err)
		}
		if h.maker.voice != "onyx" {
			t.Errorf("voice = %q, want onyx", h.maker.voice)
		}
	})

	t.Run("deepseek provider uses its own key", func(t *testing.T) {
		h := newHarness(t)
		h.envars[cli.EnvDeepSeekAPIKey] = "ds-test"
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")

		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "-o", output, "--work-dir", t.TempDir(),
			"--provider", "deepseek")
		if err != nil {
			t.Fatalf("dub failed: %v", err)
		}
		if h.maker.provider != "deepseek" || h.maker.translateKey != "ds-test" {
			t.Errorf("translator wired as (%q, %q), want (deepseek, ds-test)",
				h.maker.provider, h.maker.translateKey)
		}
	})
}

// ---------------------------------------------------------------------------
// TestDubValidation - Fail-fast checks, one sentinel per rung
// ---------------------------------------------------------------------------

func TestDubValidation(t *testing.T) {
	t.Run("missing input file", func(t *testing.T) {
		h := newHarness(t)
		err := execute(cli.DubCmd(h.env),
			filepath.Join(t.TempDir(), "missing.mp4"), "--to", "fr")
		if !errors.Is(err, cli.ErrFileNotFound) {
			t.Errorf("err = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "notes.txt")
		err := execute(cli.DubCmd(h.env), input, "--to", "fr")
		if !errors.Is(err, cli.ErrUnsupportedFormat) {
			t.Errorf("err = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("invalid target language", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		err := execute(cli.DubCmd(h.env), input, "--to", "zz")
		if !errors.Is(err, lang.ErrInvalid) {
			t.Errorf("err = %v, want lang.ErrInvalid", err)
		}
	})

	t.Run("source equals target", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		err := execute(cli.DubCmd(h.env), input, "--from", "en", "--to", "en")
		if !errors.Is(err, cli.ErrSameLanguage) {
			t.Errorf("err = %v, want ErrSameLanguage", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		err := execute(cli.DubCmd(h.env), input, "--to", "fr", "--provider", "bing")
		if !errors.Is(err, cli.ErrUnsupportedProvider) {
			t.Errorf("err = %v, want ErrUnsupportedProvider", err)
		}
	})

	t.Run("existing output refused", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := writeVideo(t, t.TempDir(), "out.mp4")
		err := execute(cli.DubCmd(h.env), input, "--to", "fr", "-o", output)
		if !errors.Is(err, cli.ErrOutputExists) {
			t.Errorf("err = %v, want ErrOutputExists", err)
		}
	})

	t.Run("openai key missing", func(t *testing.T) {
		h := newHarness(t)
		delete(h.envars, cli.EnvOpenAIAPIKey)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")
		err := execute(cli.DubCmd(h.env), input, "--to", "fr", "-o", output)
		if !errors.Is(err, cli.ErrAPIKeyMissing) {
			t.Errorf("err = %v, want ErrAPIKeyMissing", err)
		}
	})

	t.Run("deepseek key missing", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		output := filepath.Join(t.TempDir(), "out.mp4")
		err := execute(cli.DubCmd(h.env),
			input, "--to", "fr", "-o", output, "--provider", "deepseek")
		if !errors.Is(err, cli.ErrDeepSeekKeyMissing) {
			t.Errorf("err = %v, want ErrDeepSeekKeyMissing", err)
		}
	})

	t.Run("target language flag is required", func(t *testing.T) {
		h := newHarness(t)
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		err := execute(cli.DubCmd(h.env), input)
		if err == nil || !strings.Contains(err.Error(), "required flag") {
			t.Errorf("err = %v, want required-flag error", err)
		}
	})
}
