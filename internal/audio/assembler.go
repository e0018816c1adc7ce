package audio

import (
	"fmt"
	"time"
)

// durationTolerance is the slack allowed before the assembler truncates an
// over-long track; tracks short by any amount are always padded.
const durationTolerance = 50 * time.Millisecond

// Piece is one (gap, clip) pair on the output timeline, in placement order.
// A Piece with an empty Clip contributes only its gap.
type Piece struct {
	Gap  time.Duration
	Clip Track
}

// Assembler concatenates placement-ordered pieces into a single track and
// reconstructs the original's outer prosody: leading silence, a trailing
// pause, and a locked total duration.
type Assembler struct {
	rate int
	warn WarnFunc
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithAssemblerWarnFunc sets a callback for warning messages.
func WithAssemblerWarnFunc(fn WarnFunc) AssemblerOption {
	return func(a *Assembler) { a.warn = fn }
}

// NewAssembler creates an Assembler producing tracks at the given rate.
func NewAssembler(rate int, opts ...AssemblerOption) *Assembler {
	a := &Assembler{rate: rate}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Concat joins pieces into one continuous track. Used once per window;
// the outer prosody steps happen globally in Finish.
func (a *Assembler) Concat(pieces []Piece) (Track, error) {
	b := NewBuilder(a.rate)
	for _, p := range pieces {
		b.AppendSilence(p.Gap)
		if err := b.Append(p.Clip); err != nil {
			return Track{}, err
		}
	}
	return b.Finalize(), nil
}

// Finish applies the source track's outer prosody to an assembled track:
// leading silence from the silence map (when above the reconstruction
// threshold), a single trailing pause sized to the map's average
// inter-speech gap, then a total-duration lock to target. Short tracks are
// trailing-padded; tracks long by more than the tolerance are truncated.
// A zero target falls back to the silence map's total duration.
func (a *Assembler) Finish(t Track, sm SilenceMap, target time.Duration) (Track, error) {
	if target <= 0 {
		target = sm.Total
	}

	b := NewBuilder(a.rate)
	if lead := sm.LeadingSilence(); lead > 0 {
		b.AppendSilence(lead)
	}
	if err := b.Append(t); err != nil {
		return Track{}, err
	}
	if pause := sm.AverageGap(); pause > 0 {
		b.AppendSilence(pause)
	}
	out := b.Finalize()

	if out.Empty() && target <= 0 {
		return Track{}, ErrEmptyAssembly
	}

	switch cur := out.Duration(); {
	case cur < target:
		out = out.PadTo(target)
	case cur > target+durationTolerance:
		a.warnf("assembled track %v over target %v, truncating",
			cur.Round(time.Millisecond), target.Round(time.Millisecond))
		out = out.TruncateTo(target)
	}

	if out.Empty() {
		return Track{}, ErrEmptyAssembly
	}
	return out, nil
}

func (a *Assembler) warnf(format string, args ...any) {
	if a.warn != nil {
		a.warn(fmt.Sprintf(format, args...))
	}
}
