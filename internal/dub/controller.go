package dub

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-dubber/internal/align"
	"github.com/alnah/go-dubber/internal/audio"
	"github.com/alnah/go-dubber/internal/format"
)

// Default controller parameters.
const (
	// defaultParallel bounds concurrent translate+synthesize calls within
	// one window. Windows themselves are strictly sequential.
	defaultParallel = 4

	// defaultFailureBudget is how many collaborator failures a window
	// tolerates before it is abandoned and its span becomes silence.
	defaultFailureBudget = 10

	bytesPerGB = 1 << 30
)

// Input describes one dubbing run. The source track and its file path
// refer to the same extracted audio; the path goes to the transcriber,
// the track feeds alignment, assembly and the final bed mix.
type Input struct {
	Source     audio.Track
	SourcePath string
	SpeakerRef audio.Track
	SourceLang string
	TargetLang string

	// TargetDuration locks the output length, preferably to the source
	// video's true duration. Zero falls back to the source track length.
	TargetDuration time.Duration
}

// Summary reports what a run achieved. A run always produces some output
// track, so the summary rather than an error carries the quality story.
type Summary struct {
	Windows           int
	WindowsDegraded   int
	Utterances        int
	UtterancesDropped int
	UtterancesSilent  int
	UtterancesPlaced  int
	TotalShift        time.Duration
	OutputDuration    time.Duration
}

// String returns a one-line run report.
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d windows ok, %d/%d utterances placed (%d silent, %d dropped), drift %v, output %s",
		s.Windows-s.WindowsDegraded, s.Windows,
		s.UtterancesPlaced, s.Utterances,
		s.UtterancesSilent, s.UtterancesDropped,
		s.TotalShift.Round(time.Millisecond),
		format.Duration(s.OutputDuration))
}

// Controller runs the windowed dubbing pipeline. Collaborator handles are
// injected at construction and owned by the caller; the controller holds
// no global state and may be reused for consecutive runs.
type Controller struct {
	transcriber Transcriber
	translator  Translator
	synthesizer Synthesizer

	aligner   *align.Aligner
	fitter    *audio.Fitter
	assembler *audio.Assembler

	rate          int
	parallel      int
	failureBudget int
	warn          audio.WarnFunc
	progress      func(msg string)

	// Injectable memory probe and reclaim hook (defaults to the runtime).
	heapBytes func() uint64
	reclaim   func()

	// windowSink receives each window's finished track before it joins
	// the combined timeline.
	windowSink func(w Window, t audio.Track)

	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithSampleRate sets the pipeline sample rate. Default: audio.PipelineRate.
func WithSampleRate(rate int) Option {
	return func(c *Controller) {
		if rate > 0 {
			c.rate = rate
		}
	}
}

// WithParallelism bounds concurrent collaborator calls within a window.
// Default: 4.
func WithParallelism(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.parallel = n
		}
	}
}

// WithFailureBudget sets how many collaborator failures a window tolerates
// before being abandoned. Default: 10.
func WithFailureBudget(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.failureBudget = n
		}
	}
}

// WithWarnFunc sets a callback for warning messages.
func WithWarnFunc(fn audio.WarnFunc) Option {
	return func(c *Controller) { c.warn = fn }
}

// WithProgressFunc sets a callback for progress messages.
func WithProgressFunc(fn func(msg string)) Option {
	return func(c *Controller) { c.progress = fn }
}

// WithWindowSink registers a callback invoked once per processed window
// with the track that covers its span, degraded silence included. Used to
// persist per-window tracks into the work directory for inspection.
func WithWindowSink(fn func(w Window, t audio.Track)) Option {
	return func(c *Controller) { c.windowSink = fn }
}

// WithMemoryProbe injects the heap reading and reclaim hook (for testing).
func WithMemoryProbe(heapBytes func() uint64, reclaim func()) Option {
	return func(c *Controller) {
		if heapBytes != nil {
			c.heapBytes = heapBytes
		}
		if reclaim != nil {
			c.reclaim = reclaim
		}
	}
}

// New creates a Controller with the given collaborators.
func New(t Transcriber, tr Translator, s Synthesizer, opts ...Option) *Controller {
	c := &Controller{
		transcriber:   t,
		translator:    tr,
		synthesizer:   s,
		rate:          audio.PipelineRate,
		parallel:      defaultParallel,
		failureBudget: defaultFailureBudget,
		heapBytes:     runtimeHeapBytes,
		reclaim:       runtime.GC,
		state:         StateInit,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.aligner = align.NewAligner(align.WithAlignerWarnFunc(c.warnFn()))
	c.fitter = audio.NewFitter(audio.WithFitterWarnFunc(c.warn))
	c.assembler = audio.NewAssembler(c.rate, audio.WithAssemblerWarnFunc(c.warn))
	return c
}

// State returns the controller's current position in the run state machine.
func (c *Controller) State() State { return c.state }

// Run executes a full dubbing run and always returns an output track,
// possibly mostly silence, together with a summary of what succeeded.
// Only a completely unusable input (no audio at all) is a hard error.
func (c *Controller) Run(ctx context.Context, in Input) (audio.Track, Summary, error) {
	var sum Summary
	if in.Source.Empty() {
		return audio.Track{}, sum, ErrNoAudio
	}
	total := in.Source.Duration()
	target := in.TargetDuration
	if target <= 0 {
		target = total
	}

	// Derive the silence map and utterance list once, globally.
	c.state = StateExtracting
	sm := audio.AnalyzeSilence(in.Source)

	utts := c.transcribe(ctx, in)
	utts, dropped := align.Normalize(utts)
	sum.Utterances = len(utts)
	sum.UtterancesDropped = dropped
	if dropped > 0 {
		c.warnf("dropped %d malformed utterances", dropped)
	}

	windows, policy := PlanWindows(total)
	sum.Windows = len(windows)
	c.progressf("%d windows of %s (memory ceiling %d GB)",
		len(windows), format.Duration(policy.WindowSize), policy.MemoryCeilingGB)

	// Windows run strictly sequentially: the oversize-shift strategy and
	// the single global mix both depend on deterministic ordering.
	combined := audio.NewBuilder(c.rate)
	ceiling := uint64(policy.MemoryCeilingGB) * bytesPerGB
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			// Canceled: keep what prior windows produced.
			c.warnf("canceled at %s, keeping partial output", w)
			break
		}

		c.state = StateAligning
		track, err := c.runWindow(ctx, w, utts, in, ceiling, &sum)
		if err != nil {
			c.warnf("%s failed (%v), span becomes silence", w, err)
			sum.WindowsDegraded++
			track = audio.Silence(w.Duration(), c.rate)
		}

		if c.windowSink != nil {
			c.windowSink(w, track)
		}

		c.state = StateCombining
		if err := combined.Append(track); err != nil {
			return audio.Track{}, sum, err
		}

		// Reclaim point: per-window buffers are dead here, keep peak
		// memory proportional to one window's audio.
		c.reclaim()
	}

	// Outer prosody reconstruction, duration lock and the single global
	// bed mix.
	c.state = StateMixing
	out, err := c.assembler.Finish(combined.Finalize(), sm, target)
	if err != nil {
		return audio.Track{}, sum, err
	}
	out, err = audio.MixBed(out, in.Source, audio.BedGainDB)
	if err != nil {
		return audio.Track{}, sum, err
	}

	c.state = StateDone
	sum.OutputDuration = out.Duration()
	return out, sum, nil
}

// transcribe fetches the utterance list, falling back to silence-only
// treatment when the transcriber fails or finds nothing: per the error
// taxonomy a collaborator failure never kills the run.
func (c *Controller) transcribe(ctx context.Context, in Input) []align.Utterance {
	utts, err := c.transcriber.Transcribe(ctx, in.SourcePath, in.SourceLang)
	if err != nil {
		c.warnf("transcription failed (%v), output will be bed only", err)
		return nil
	}
	if len(utts) == 0 {
		c.warnf("no speech transcribed, output will be bed only")
	}
	return utts
}

// runWindow translates, synthesizes, aligns and fits one window. The
// returned track covers at least the window's nominal duration unless the
// translated speech overran it, in which case the overrun is kept whole
// and later windows drift (never truncate translated speech).
func (c *Controller) runWindow(ctx context.Context, w Window, all []align.Utterance, in Input, ceiling uint64, sum *Summary) (audio.Track, error) {
	if ceiling > 0 && c.heapBytes() > ceiling {
		c.reclaim()
		if c.heapBytes() > ceiling {
			return audio.Track{}, fmt.Errorf("%w: %s", ErrMemoryCeiling, w)
		}
	}

	utts := w.utterancesIn(all)
	if len(utts) == 0 {
		return audio.Silence(w.Duration(), c.rate), nil
	}
	c.progressf("%s: %d utterances", w, len(utts))

	clips, tracks, failures := c.synthesizeAll(ctx, utts, in)
	if failures > c.failureBudget {
		return audio.Track{}, fmt.Errorf("%w: %d failures", ErrTooManyFailures, failures)
	}

	plan := c.aligner.Plan(clips, w.Start)
	sum.TotalShift += plan.Shift

	pieces := make([]audio.Piece, 0, len(plan.Placements))
	for _, p := range plan.Placements {
		piece := audio.Piece{Gap: p.Gap}
		if p.Strategy == align.PlaceSilence {
			piece.Clip = audio.Silence(p.Duration, c.rate)
			sum.UtterancesSilent++
		} else {
			piece.Clip = tracks[p.Index]
			sum.UtterancesPlaced++
		}
		pieces = append(pieces, piece)
	}

	c.state = StateAssembling
	track, err := c.assembler.Concat(pieces)
	if err != nil {
		return audio.Track{}, fmt.Errorf("%w: %s", ErrWindowFailed, err)
	}

	// Total-length correction for the window, by pause widening only.
	// Oversize windows pass through untouched and spill into the next.
	return c.fitter.Fit(track, w.Duration()), nil
}

// synthesizeAll translates and synthesizes every utterance of a window.
// Calls run concurrently under a bounded group; results are collected in
// utterance order, so the subsequent alignment stays deterministic.
func (c *Controller) synthesizeAll(ctx context.Context, utts []align.Utterance, in Input) ([]align.Clip, []audio.Track, int) {
	clips := make([]align.Clip, len(utts))
	tracks := make([]audio.Track, len(utts))
	failed := make([]bool, len(utts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, u := range utts {
		g.Go(func() error {
			text, err := c.translator.Translate(gctx, u.Text, in.SourceLang, in.TargetLang)
			if err != nil || text == "" {
				// Contract says translators fall back themselves; guard
				// anyway and dub the untranslated text over silence-free
				// failure of the whole span.
				failed[i] = true
				text = u.Text
			}

			clip, synthErr := c.synthesizer.Synthesize(gctx, text, in.SpeakerRef, in.TargetLang)
			if synthErr != nil || clip.Empty() {
				failed[i] = true
				clips[i] = align.Clip{Utterance: u, Text: text, Synthesized: false}
				return nil
			}
			if clip.Rate() != c.rate {
				clip = clip.Resample(c.rate)
			}
			clips[i] = align.Clip{Utterance: u, Text: text, Duration: clip.Duration(), Synthesized: true}
			tracks[i] = clip
			return nil
		})
	}
	// Workers only record failures, they never return errors.
	_ = g.Wait()

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	return clips, tracks, failures
}

func (c *Controller) warnf(format string, args ...any) {
	if c.warn != nil {
		c.warn(fmt.Sprintf(format, args...))
	}
}

func (c *Controller) progressf(format string, args ...any) {
	if c.progress != nil {
		c.progress(fmt.Sprintf(format, args...))
	}
}

// warnFn adapts the controller's warn callback for the aligner.
func (c *Controller) warnFn() func(string) {
	return func(msg string) { c.warnf("%s", msg) }
}

// runtimeHeapBytes reads the live heap size.
func runtimeHeapBytes() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}
