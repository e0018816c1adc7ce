// Package audio implements the PCM-level core of the dubbing pipeline:
// the immutable Track type, silence analysis, pause-based duration fitting,
// the append-only track builder, prosody reconstruction, and bed mixing.
//
// All tracks are mono. A pipeline run fixes one sample rate on construction
// (16 kHz by default) and every operation that combines two tracks checks
// that their rates match; tracks from external sources are resampled at the
// ingestion boundary.
package audio

import (
	"fmt"
	"time"
)

// PipelineRate is the sample rate used throughout a dubbing run.
// 16 kHz mono is what the extraction step produces and what the
// transcription API expects.
const PipelineRate = 16000

// Track is an ordered sequence of mono PCM samples at a fixed sample rate.
// Samples are in the signed 16-bit range. A Track is immutable once
// produced; every transform returns a new Track.
type Track struct {
	samples []int
	rate    int
}

// NewTrack creates a Track from raw samples. The slice is owned by the
// Track afterwards; callers must not mutate it.
func NewTrack(samples []int, rate int) Track {
	return Track{samples: samples, rate: rate}
}

// Silence returns a silent track of the given duration.
func Silence(d time.Duration, rate int) Track {
	if d < 0 {
		d = 0
	}
	return Track{samples: make([]int, SamplesFor(d, rate)), rate: rate}
}

// Rate returns the sample rate in Hz.
func (t Track) Rate() int { return t.rate }

// NumSamples returns the number of PCM samples.
func (t Track) NumSamples() int { return len(t.samples) }

// Empty reports whether the track contains no samples.
func (t Track) Empty() bool { return len(t.samples) == 0 }

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	if t.rate <= 0 {
		return 0
	}
	return time.Duration(len(t.samples)) * time.Second / time.Duration(t.rate)
}

// String returns a human-readable representation for logging.
func (t Track) String() string {
	return fmt.Sprintf("track %d samples @ %d Hz (%v)", len(t.samples), t.rate, t.Duration().Round(time.Millisecond))
}

// Slice returns the sub-track covering [start, end). Bounds are clamped to
// the track; an inverted range yields an empty track.
func (t Track) Slice(start, end time.Duration) Track {
	lo := clampSample(SamplesFor(start, t.rate), len(t.samples))
	hi := clampSample(SamplesFor(end, t.rate), len(t.samples))
	if hi < lo {
		hi = lo
	}
	out := make([]int, hi-lo)
	copy(out, t.samples[lo:hi])
	return Track{samples: out, rate: t.rate}
}

// PadTo returns the track extended with trailing silence to the target
// duration. Tracks already at least that long are returned unchanged.
func (t Track) PadTo(target time.Duration) Track {
	want := SamplesFor(target, t.rate)
	if want <= len(t.samples) {
		return t
	}
	out := make([]int, want)
	copy(out, t.samples)
	return Track{samples: out, rate: t.rate}
}

// TruncateTo returns the track cut to the target duration. Tracks already
// at most that long are returned unchanged.
func (t Track) TruncateTo(target time.Duration) Track {
	want := SamplesFor(target, t.rate)
	if want >= len(t.samples) {
		return t
	}
	out := make([]int, want)
	copy(out, t.samples[:want])
	return Track{samples: out, rate: t.rate}
}

// Resample converts the track to a different sample rate using linear
// interpolation. This is a format conversion for ingestion boundaries
// (e.g. 24 kHz synthesis output into a 16 kHz pipeline); it does not alter
// speech rate relative to wall-clock time.
func (t Track) Resample(rate int) Track {
	if rate == t.rate || len(t.samples) == 0 || t.rate <= 0 {
		return Track{samples: t.samples, rate: rate}
	}
	n := int(int64(len(t.samples)) * int64(rate) / int64(t.rate))
	if n <= 0 {
		return Track{samples: nil, rate: rate}
	}
	out := make([]int, n)
	ratio := float64(t.rate) / float64(rate)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(t.samples)-1 {
			out[i] = t.samples[len(t.samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int(float64(t.samples[j])*(1-frac) + float64(t.samples[j+1])*frac)
	}
	return Track{samples: out, rate: rate}
}

// SamplesFor converts a duration to a sample count at the given rate.
func SamplesFor(d time.Duration, rate int) int {
	if d <= 0 || rate <= 0 {
		return 0
	}
	return int(int64(d) * int64(rate) / int64(time.Second))
}

// clampSample restricts an index to [0, n].
func clampSample(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
