package audio

import (
	"fmt"
	"math"
	"time"
)

// Silence analysis parameters.
const (
	// defaultFrameWindow is the short-time energy analysis window.
	defaultFrameWindow = 50 * time.Millisecond

	// defaultPeakRatio classifies frames below this fraction of the peak
	// RMS as silent. Suits voice recordings with typical background noise.
	defaultPeakRatio = 0.15

	// defaultFloorDB is the absolute silence floor in dBFS. Frames below
	// this level are silent regardless of the peak-relative threshold.
	defaultFloorDB = -40.0

	// defaultMinSilence is the minimum silence run to keep. Shorter runs
	// are merged into the adjacent speech to avoid over-splitting on
	// plosives and breath gaps.
	defaultMinSilence = 100 * time.Millisecond

	// minProsodyGap is the smallest gap or leading silence worth
	// reconstructing; anything shorter is treated as contiguous speech.
	minProsodyGap = 50 * time.Millisecond

	// fullScale is the peak amplitude of 16-bit PCM.
	fullScale = 32767.0
)

// Interval is a half-open [Start, End) span of detected speech.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration { return iv.End - iv.Start }

// String returns a human-readable representation for logging.
func (iv Interval) String() string {
	return fmt.Sprintf("%v-%v", iv.Start.Round(time.Millisecond), iv.End.Round(time.Millisecond))
}

// SilenceMap holds the detected speech intervals of a track plus its total
// duration. Intervals are sorted and non-overlapping. Read-only once built.
type SilenceMap struct {
	Speech []Interval
	Total  time.Duration
}

// SilenceOption configures silence analysis.
type SilenceOption func(*silenceAnalyzer)

// WithFrameWindow sets the short-time energy analysis window.
// Default: 50ms.
func WithFrameWindow(d time.Duration) SilenceOption {
	return func(a *silenceAnalyzer) {
		if d > 0 {
			a.frameWindow = d
		}
	}
}

// WithPeakRatio sets the peak-relative silence threshold.
// Default: 0.15 (15% of peak RMS).
func WithPeakRatio(r float64) SilenceOption {
	return func(a *silenceAnalyzer) {
		if r > 0 {
			a.peakRatio = r
		}
	}
}

// WithFloorDB sets the absolute silence floor in dBFS.
// Default: -40 dBFS.
func WithFloorDB(db float64) SilenceOption {
	return func(a *silenceAnalyzer) {
		a.floorDB = db
	}
}

// WithMinSilence sets the minimum silence run to keep.
// Default: 100ms.
func WithMinSilence(d time.Duration) SilenceOption {
	return func(a *silenceAnalyzer) {
		if d > 0 {
			a.minSilence = d
		}
	}
}

type silenceAnalyzer struct {
	frameWindow time.Duration
	peakRatio   float64
	floorDB     float64
	minSilence  time.Duration
}

// AnalyzeSilence derives the speech/silence map of a track from short-time
// RMS energy. Frames below the peak-relative threshold or below the
// absolute floor count as silent; silent runs shorter than the minimum
// silence length are merged into adjacent speech. Deterministic; an empty
// track yields an empty map with the full duration marked silent.
func AnalyzeSilence(t Track, opts ...SilenceOption) SilenceMap {
	a := &silenceAnalyzer{
		frameWindow: defaultFrameWindow,
		peakRatio:   defaultPeakRatio,
		floorDB:     defaultFloorDB,
		minSilence:  defaultMinSilence,
	}
	for _, opt := range opts {
		opt(a)
	}

	sm := SilenceMap{Total: t.Duration()}
	if t.Empty() || t.rate <= 0 {
		return sm
	}

	frames := frameRMS(t.samples, SamplesFor(a.frameWindow, t.rate))
	peak := 0.0
	for _, e := range frames {
		peak = math.Max(peak, e)
	}
	if peak == 0 {
		return sm
	}

	threshold := math.Max(peak*a.peakRatio, fullScale*math.Pow(10, a.floorDB/20))
	silent := make([]bool, len(frames))
	for i, e := range frames {
		silent[i] = e < threshold
	}
	mergeShortRuns(silent, framesFor(a.minSilence, a.frameWindow))

	sm.Speech = speechIntervals(silent, a.frameWindow, sm.Total)
	return sm
}

// frameRMS computes the root-mean-square energy per fixed-size frame.
// The trailing partial frame is included.
func frameRMS(samples []int, frameLen int) []float64 {
	if frameLen <= 0 {
		frameLen = 1
	}
	n := (len(samples) + frameLen - 1) / frameLen
	out := make([]float64, n)
	for i := range n {
		lo := i * frameLen
		hi := min(lo+frameLen, len(samples))
		var sum float64
		for _, s := range samples[lo:hi] {
			sum += float64(s) * float64(s)
		}
		out[i] = math.Sqrt(sum / float64(hi-lo))
	}
	return out
}

// mergeShortRuns reclassifies silent runs shorter than minFrames as speech.
func mergeShortRuns(silent []bool, minFrames int) {
	if minFrames <= 1 {
		return
	}
	runStart := -1
	for i := 0; i <= len(silent); i++ {
		if i < len(silent) && silent[i] {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 && i-runStart < minFrames {
			for j := runStart; j < i; j++ {
				silent[j] = false
			}
		}
		runStart = -1
	}
}

// speechIntervals converts the per-frame classification to speech
// intervals, clamping the last boundary to the track duration.
func speechIntervals(silent []bool, frame, total time.Duration) []Interval {
	var out []Interval
	start := -1
	for i := 0; i <= len(silent); i++ {
		speech := i < len(silent) && !silent[i]
		if speech && start < 0 {
			start = i
		}
		if !speech && start >= 0 {
			iv := Interval{
				Start: time.Duration(start) * frame,
				End:   min(time.Duration(i)*frame, total),
			}
			if iv.End > iv.Start {
				out = append(out, iv)
			}
			start = -1
		}
	}
	return out
}

// framesFor converts a duration to a whole number of analysis frames.
func framesFor(d, frame time.Duration) int {
	if frame <= 0 {
		return 0
	}
	return int(d / frame)
}

// LeadingSilence returns the silence before the first speech interval, or 0
// if the track starts with speech (within the prosody gap threshold) or has
// no speech at all.
func (sm SilenceMap) LeadingSilence() time.Duration {
	if len(sm.Speech) == 0 {
		return 0
	}
	if sm.Speech[0].Start <= minProsodyGap {
		return 0
	}
	return sm.Speech[0].Start
}

// AverageGap returns the mean pause between consecutive speech intervals,
// counting only gaps above the prosody threshold. Returns 0 when there are
// fewer than two speech intervals or no qualifying gaps.
func (sm SilenceMap) AverageGap() time.Duration {
	if len(sm.Speech) < 2 {
		return 0
	}
	var total time.Duration
	count := 0
	for i := range len(sm.Speech) - 1 {
		gap := sm.Speech[i+1].Start - sm.Speech[i].End
		if gap > minProsodyGap {
			total += gap
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / time.Duration(count)
}

// Longest returns the longest speech interval and whether one exists.
func (sm SilenceMap) Longest() (Interval, bool) {
	if len(sm.Speech) == 0 {
		return Interval{}, false
	}
	best := sm.Speech[0]
	for _, iv := range sm.Speech[1:] {
		if iv.Duration() > best.Duration() {
			best = iv
		}
	}
	return best, true
}
