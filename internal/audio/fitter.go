package audio

import (
	"fmt"
	"math"
	"time"
)

// Duration fitting parameters.
const (
	// fitTolerance is the band within which a clip passes through
	// unchanged: timing this close is inaudible.
	fitTolerance = 40 * time.Millisecond

	// minPadWorth is the smallest deficit worth distributing across
	// interior pauses; below this a single trailing pad suffices.
	minPadWorth = 50 * time.Millisecond

	// minRegionShare / maxRegionShare bound the extra pause added to one
	// quiet region so a single pause never sounds unnatural.
	minRegionShare = 30 * time.Millisecond
	maxRegionShare = 150 * time.Millisecond

	// maxRegionPause caps the total length of any one extended pause.
	maxRegionPause = 200 * time.Millisecond
)

// WarnFunc is a callback for warning messages during processing.
// Set to nil to suppress warnings, or provide a custom handler.
type WarnFunc func(msg string)

// Fitter reconciles a clip to a target duration using pause insertion only.
// It never shrinks a clip and never alters speech rate or pitch: oversize
// clips pass through unchanged and the excess is absorbed upstream by the
// aligner's shift strategy.
type Fitter struct {
	frameWindow time.Duration
	peakRatio   float64
	warn        WarnFunc
}

// FitterOption configures a Fitter.
type FitterOption func(*Fitter)

// WithFitterFrameWindow sets the quiet-region analysis window.
// Default: 50ms.
func WithFitterFrameWindow(d time.Duration) FitterOption {
	return func(f *Fitter) {
		if d > 0 {
			f.frameWindow = d
		}
	}
}

// WithFitterPeakRatio sets the peak-relative quiet threshold.
// Default: 0.15.
func WithFitterPeakRatio(r float64) FitterOption {
	return func(f *Fitter) {
		if r > 0 {
			f.peakRatio = r
		}
	}
}

// WithFitterWarnFunc sets a callback for warning messages.
func WithFitterWarnFunc(fn WarnFunc) FitterOption {
	return func(f *Fitter) {
		f.warn = fn
	}
}

// NewFitter creates a Fitter with the given options.
func NewFitter(opts ...FitterOption) *Fitter {
	f := &Fitter{
		frameWindow: defaultFrameWindow,
		peakRatio:   defaultPeakRatio,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit returns a clip whose duration matches target. Within the tolerance
// band, and for any clip longer than target, the input is returned
// unchanged. Shorter clips are lengthened by distributing the deficit
// across interior quiet regions, topped up with a trailing pad to the
// exact target. Fitting never fails: degenerate input passes through.
func (f *Fitter) Fit(clip Track, target time.Duration) Track {
	cur := clip.Duration()
	if clip.Empty() || target <= 0 {
		return clip
	}
	diff := target - cur
	if diff < 0 {
		if -diff > fitTolerance {
			f.warnf("clip %v over target %v, kept whole to preserve speech",
				cur.Round(time.Millisecond), target.Round(time.Millisecond))
		}
		return clip
	}
	if diff <= fitTolerance {
		return clip
	}
	if diff < minPadWorth {
		return clip.PadTo(target)
	}

	stretched := f.widenPauses(clip, diff)
	// Trailing pad covers whatever the interior pauses could not absorb.
	return stretched.PadTo(target)
}

// widenPauses lengthens each interior quiet region of the clip by an even
// share of the deficit, bounded per region. Returns the clip unchanged when
// it has no interior quiet region.
func (f *Fitter) widenPauses(clip Track, deficit time.Duration) Track {
	regions := f.quietRegions(clip)
	if len(regions) == 0 {
		return clip
	}

	share := deficit / time.Duration(len(regions))
	share = min(max(share, minRegionShare), maxRegionShare)

	rate := clip.rate
	out := make([]int, 0, clip.NumSamples()+SamplesFor(deficit, rate))
	cursor := time.Duration(0)
	for _, r := range regions {
		seg := clip.Slice(cursor, r.End)
		out = append(out, seg.samples...)

		extended := min(r.Duration()+share, maxRegionPause)
		if pad := extended - r.Duration(); pad > 0 {
			out = append(out, make([]int, SamplesFor(pad, rate))...)
		}
		cursor = r.End
	}
	tail := clip.Slice(cursor, clip.Duration())
	out = append(out, tail.samples...)

	return Track{samples: out, rate: rate}
}

// quietRegions finds interior low-energy spans of the clip using the same
// short-time RMS technique as silence analysis. Regions touching either
// end of the clip are excluded: leading and trailing silence belong to the
// assembler, not the fitter.
func (f *Fitter) quietRegions(clip Track) []Interval {
	frames := frameRMS(clip.samples, SamplesFor(f.frameWindow, clip.rate))
	peak := 0.0
	for _, e := range frames {
		peak = math.Max(peak, e)
	}
	if peak == 0 {
		return nil
	}
	threshold := peak * f.peakRatio

	var out []Interval
	start := -1
	for i := 0; i <= len(frames); i++ {
		quiet := i < len(frames) && frames[i] < threshold
		if quiet && start < 0 {
			start = i
		}
		if !quiet && start >= 0 {
			if start > 0 && i < len(frames) { // interior only
				out = append(out, Interval{
					Start: time.Duration(start) * f.frameWindow,
					End:   time.Duration(i) * f.frameWindow,
				})
			}
			start = -1
		}
	}
	return out
}

func (f *Fitter) warnf(format string, args ...any) {
	if f.warn != nil {
		f.warn(fmt.Sprintf(format, args...))
	}
}
