package audio

import (
	"fmt"
	"time"
)

// Builder is an append-only accumulation buffer for one output timeline.
// It replaces ad-hoc track concatenation with an explicit type: clips and
// silences go in one after another, and Finalize seals the result. A
// finalized builder rejects further appends.
type Builder struct {
	samples   []int
	rate      int
	finalized bool
}

// NewBuilder creates a Builder producing tracks at the given sample rate.
func NewBuilder(rate int) *Builder {
	return &Builder{rate: rate}
}

// Append adds a clip to the end of the timeline. The clip's sample rate
// must match the builder's.
func (b *Builder) Append(t Track) error {
	if b.finalized {
		return fmt.Errorf("append after finalize: %w", ErrEmptyAssembly)
	}
	if t.Empty() {
		return nil
	}
	if t.rate != b.rate {
		return fmt.Errorf("%w: clip %d Hz, builder %d Hz", ErrRateMismatch, t.rate, b.rate)
	}
	b.samples = append(b.samples, t.samples...)
	return nil
}

// AppendSilence adds a silent span to the end of the timeline.
// Non-positive durations are ignored.
func (b *Builder) AppendSilence(d time.Duration) {
	if b.finalized || d <= 0 {
		return
	}
	b.samples = append(b.samples, make([]int, SamplesFor(d, b.rate))...)
}

// Len returns the current timeline length.
func (b *Builder) Len() time.Duration {
	if b.rate <= 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.rate)
}

// Finalize seals the builder and returns the accumulated track.
func (b *Builder) Finalize() Track {
	b.finalized = true
	return Track{samples: b.samples, rate: b.rate}
}
