package align

import (
	"fmt"
	"regexp"
	"time"
)

// Alignment limits.
const (
	// MaxGap is how far a clip may eat into the pause after its source
	// window before the aligner gives up and shifts the remainder.
	MaxGap = 400 * time.Millisecond

	// MaxPause caps any reconstructed pause between placements.
	MaxPause = 2 * time.Second

	// ContinuationPause caps the pause after a clip whose translated text
	// did not end a sentence, so a split phrase never gets an unnatural
	// mid-sentence hole.
	ContinuationPause = 120 * time.Millisecond
)

// terminalPunct matches translated text that ends a sentence.
var terminalPunct = regexp.MustCompile(`[.!?…:]\s*$`)

// Strategy records how a placement was decided.
type Strategy int

const (
	// PlaceShort: the clip fits inside its source window; placed at the
	// cursor, accepting forward drift rather than padding per utterance.
	PlaceShort Strategy = iota

	// PlaceInGap: the clip overruns its window but fits by consuming the
	// following pause (up to MaxGap).
	PlaceInGap

	// PlaceOversizeShift: the clip overruns window and pause; placed whole
	// at the cursor, shifting everything after it. Translated speech is
	// never truncated: meaning outranks sync.
	PlaceOversizeShift

	// PlaceSilence: synthesis failed; the source span is covered by
	// silence of the utterance's own duration.
	PlaceSilence
)

// String returns the strategy name for logs and summaries.
func (s Strategy) String() string {
	switch s {
	case PlaceShort:
		return "short"
	case PlaceInGap:
		return "in-gap"
	case PlaceOversizeShift:
		return "oversize-shift"
	case PlaceSilence:
		return "silence"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Clip pairs an utterance with its synthesized result: the translated
// text, the measured clip duration, and whether synthesis succeeded.
// For failed synthesis the duration is ignored and the source span is
// used instead.
type Clip struct {
	Utterance   Utterance
	Text        string
	Duration    time.Duration
	Synthesized bool
}

// Placement is the decided position of one clip on the output timeline:
// the silence inserted before it, its onset, and its duration budget.
// Read-only once the plan is built.
type Placement struct {
	Index    int
	Gap      time.Duration
	Onset    time.Duration
	Duration time.Duration
	Strategy Strategy
}

// End returns the output time at which the placement finishes.
func (p Placement) End() time.Duration { return p.Onset + p.Duration }

// Plan is the ordered set of placements for one window, plus the
// cumulative shift the oversize strategy introduced.
type Plan struct {
	Placements []Placement
	Shift      time.Duration
}

// Len returns the total output duration the plan covers.
func (p Plan) Len() time.Duration {
	if len(p.Placements) == 0 {
		return 0
	}
	return p.Placements[len(p.Placements)-1].End()
}

// Aligner computes placement plans. Safe for reuse across windows; the
// cursor state lives entirely within one Plan call, so identical input
// always yields an identical plan.
type Aligner struct {
	maxGap            time.Duration
	maxPause          time.Duration
	continuationPause time.Duration
	warn              func(msg string)
}

// AlignerOption configures an Aligner.
type AlignerOption func(*Aligner)

// WithMaxGap overrides the pause-consumption limit. Default: 400ms.
func WithMaxGap(d time.Duration) AlignerOption {
	return func(a *Aligner) {
		if d >= 0 {
			a.maxGap = d
		}
	}
}

// WithMaxPause overrides the reconstructed-pause cap. Default: 2s.
func WithMaxPause(d time.Duration) AlignerOption {
	return func(a *Aligner) {
		if d >= 0 {
			a.maxPause = d
		}
	}
}

// WithContinuationPause overrides the mid-sentence pause cap. Default: 120ms.
func WithContinuationPause(d time.Duration) AlignerOption {
	return func(a *Aligner) {
		if d >= 0 {
			a.continuationPause = d
		}
	}
}

// WithAlignerWarnFunc sets a callback for warning messages.
func WithAlignerWarnFunc(fn func(msg string)) AlignerOption {
	return func(a *Aligner) { a.warn = fn }
}

// NewAligner creates an Aligner with the given options.
func NewAligner(opts ...AlignerOption) *Aligner {
	a := &Aligner{
		maxGap:            MaxGap,
		maxPause:          MaxPause,
		continuationPause: ContinuationPause,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Plan places the window's clips on an output timeline starting at zero,
// where zero corresponds to windowStart in source time. Clips must be in
// utterance order. The cursor only moves forward, so placements never
// overlap; malformed utterances are skipped without a placement entry.
//
// Per clip with source window [start, end), measured duration D and
// source duration ru = end - start:
//   - a pause of min(start - cursor, MaxPause) is reconstructed first when
//     the source onset is still ahead of the cursor, capped at
//     ContinuationPause when the previous translated text did not end a
//     sentence;
//   - D <= ru: placed at the cursor (short clips are never padded here;
//     total-length correction happens downstream);
//   - D <= ru + min(gap to next, MaxGap): placed at the cursor, consuming
//     the following pause;
//   - otherwise: placed whole at the cursor and everything after shifts
//     by D - ru.
func (a *Aligner) Plan(clips []Clip, windowStart time.Duration) Plan {
	var plan Plan
	cursor := time.Duration(0)
	prevTerminal := true

	for i, c := range clips {
		u := c.Utterance
		if !u.Valid() {
			continue
		}
		ru := u.Duration()

		// Reconstruct the pause up to this utterance's source onset.
		gap := time.Duration(0)
		if start := u.Start - windowStart; start > cursor {
			gap = min(start-cursor, a.maxPause)
			if !prevTerminal {
				gap = min(gap, a.continuationPause)
			}
		}

		p := Placement{Index: i, Gap: gap, Onset: cursor + gap}

		// The pause after this utterance is only available if drift has
		// not already pushed the onset past the utterance's source end.
		srcGap := a.gapToNext(clips, i, u)
		if p.Onset > u.End-windowStart {
			srcGap = 0
		}

		switch {
		case !c.Synthesized:
			p.Duration = ru
			p.Strategy = PlaceSilence
		case c.Duration <= ru:
			p.Duration = c.Duration
			p.Strategy = PlaceShort
		case c.Duration <= ru+min(srcGap, a.maxGap):
			p.Duration = c.Duration
			p.Strategy = PlaceInGap
		default:
			p.Duration = c.Duration
			p.Strategy = PlaceOversizeShift
			plan.Shift += c.Duration - ru
			a.warnf("clip %d runs %v over its source window, shifting later speech",
				i, (c.Duration - ru).Round(time.Millisecond))
		}

		cursor = p.End()
		plan.Placements = append(plan.Placements, p)
		prevTerminal = c.Text == "" || terminalPunct.MatchString(c.Text)
	}
	return plan
}

// gapToNext returns the source-time pause between utterance i and the next
// valid utterance's start, or 0 when there is none.
func (a *Aligner) gapToNext(clips []Clip, i int, u Utterance) time.Duration {
	for _, c := range clips[i+1:] {
		if c.Utterance.Valid() {
			return max(0, c.Utterance.Start-u.End)
		}
	}
	return 0
}

func (a *Aligner) warnf(format string, args ...any) {
	if a.warn != nil {
		a.warn(fmt.Sprintf(format, args...))
	}
}
