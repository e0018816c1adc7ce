package audio_test

// Notes:
// - Black-box testing: all tests build tracks through NewTrack/Silence and
//   observe them through the public accessors only.
// - Sample-exact PCM math (mixing, attenuation) is covered by the internal
//   mixer tests; here we verify durations, bounds and rate handling.

import (
	"testing"
	"time"

	"github.com/alnah/go-dubber/internal/audio"
)

const testRate = 16000

// constSamples returns n copies of value v.
func constSamples(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// TestTrackBasics - Construction and accessors
// ---------------------------------------------------------------------------

func TestTrackBasics(t *testing.T) {
	t.Parallel()

	t.Run("new track reports samples, rate and duration", func(t *testing.T) {
		t.Parallel()

		tr := audio.NewTrack(constSamples(testRate, 100), testRate)
		if tr.NumSamples() != testRate {
			t.Errorf("NumSamples() = %d, want %d", tr.NumSamples(), testRate)
		}
		if tr.Rate() != testRate {
			t.Errorf("Rate() = %d, want %d", tr.Rate(), testRate)
		}
		if tr.Duration() != time.Second {
			t.Errorf("Duration() = %v, want 1s", tr.Duration())
		}
		if tr.Empty() {
			t.Error("Empty() = true for a non-empty track")
		}
	})

	t.Run("zero value is empty with zero duration", func(t *testing.T) {
		t.Parallel()

		var tr audio.Track
		if !tr.Empty() {
			t.Error("zero value Empty() = false")
		}
		if tr.Duration() != 0 {
			t.Errorf("zero value Duration() = %v, want 0", tr.Duration())
		}
	})

	t.Run("silence has the requested duration", func(t *testing.T) {
		t.Parallel()

		tr := audio.Silence(250*time.Millisecond, testRate)
		if tr.Duration() != 250*time.Millisecond {
			t.Errorf("Duration() = %v, want 250ms", tr.Duration())
		}
	})

	t.Run("negative silence duration yields empty track", func(t *testing.T) {
		t.Parallel()

		tr := audio.Silence(-time.Second, testRate)
		if !tr.Empty() {
			t.Errorf("Silence(-1s) not empty: %d samples", tr.NumSamples())
		}
	})
}

// ---------------------------------------------------------------------------
// TestSlice - Sub-track extraction with clamped bounds
// ---------------------------------------------------------------------------

func TestSlice(t *testing.T) {
	t.Parallel()

	tr := audio.NewTrack(constSamples(testRate, 100), testRate) // 1s

	tests := []struct {
		name       string
		start, end time.Duration
		want       time.Duration
	}{
		{name: "interior range", start: 200 * time.Millisecond, end: 700 * time.Millisecond, want: 500 * time.Millisecond},
		{name: "full range", start: 0, end: time.Second, want: time.Second},
		{name: "end beyond track clamps", start: 500 * time.Millisecond, end: 5 * time.Second, want: 500 * time.Millisecond},
		{name: "negative start clamps to zero", start: -time.Second, end: 100 * time.Millisecond, want: 100 * time.Millisecond},
		{name: "inverted range is empty", start: 800 * time.Millisecond, end: 200 * time.Millisecond, want: 0},
		{name: "range past the end is empty", start: 2 * time.Second, end: 3 * time.Second, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tr.Slice(tt.start, tt.end)
			if got.Duration() != tt.want {
				t.Errorf("Slice(%v, %v).Duration() = %v, want %v", tt.start, tt.end, got.Duration(), tt.want)
			}
			if got.Rate() != testRate {
				t.Errorf("Slice rate = %d, want %d", got.Rate(), testRate)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPadAndTruncate - Length adjustment
// ---------------------------------------------------------------------------

func TestPadAndTruncate(t *testing.T) {
	t.Parallel()

	t.Run("PadTo extends a short track", func(t *testing.T) {
		t.Parallel()

		tr := audio.Silence(time.Second, testRate).PadTo(3 * time.Second)
		if tr.Duration() != 3*time.Second {
			t.Errorf("Duration() = %v, want 3s", tr.Duration())
		}
	})

	t.Run("PadTo leaves a long track alone", func(t *testing.T) {
		t.Parallel()

		tr := audio.Silence(3*time.Second, testRate).PadTo(time.Second)
		if tr.Duration() != 3*time.Second {
			t.Errorf("Duration() = %v, want 3s", tr.Duration())
		}
	})

	t.Run("TruncateTo cuts a long track", func(t *testing.T) {
		t.Parallel()

		tr := audio.Silence(3*time.Second, testRate).TruncateTo(time.Second)
		if tr.Duration() != time.Second {
			t.Errorf("Duration() = %v, want 1s", tr.Duration())
		}
	})

	t.Run("TruncateTo leaves a short track alone", func(t *testing.T) {
		t.Parallel()

		tr := audio.Silence(time.Second, testRate).TruncateTo(3 * time.Second)
		if tr.Duration() != time.Second {
			t.Errorf("Duration() = %v, want 1s", tr.Duration())
		}
	})
}

// ---------------------------------------------------------------------------
// TestResample - Rate conversion preserves wall-clock duration
// ---------------------------------------------------------------------------

func TestResample(t *testing.T) {
	t.Parallel()

	t.Run("downsampling halves the sample count", func(t *testing.T) {
		t.Parallel()

		tr := audio.NewTrack(constSamples(1600, 500), 16000).Resample(8000)
		if tr.NumSamples() != 800 {
			t.Errorf("NumSamples() = %d, want 800", tr.NumSamples())
		}
		if tr.Rate() != 8000 {
			t.Errorf("Rate() = %d, want 8000", tr.Rate())
		}
		if tr.Duration() != 100*time.Millisecond {
			t.Errorf("Duration() = %v, want 100ms", tr.Duration())
		}
	})

	t.Run("upsampling keeps the duration", func(t *testing.T) {
		t.Parallel()

		tr := audio.NewTrack(constSamples(2400, 500), 24000).Resample(16000)
		if tr.Duration() != 100*time.Millisecond {
			t.Errorf("Duration() = %v, want 100ms", tr.Duration())
		}
	})

	t.Run("same rate is a no-op", func(t *testing.T) {
		t.Parallel()

		tr := audio.NewTrack(constSamples(100, 500), testRate).Resample(testRate)
		if tr.NumSamples() != 100 {
			t.Errorf("NumSamples() = %d, want 100", tr.NumSamples())
		}
	})

	t.Run("empty track only changes rate", func(t *testing.T) {
		t.Parallel()

		tr := audio.NewTrack(nil, 24000).Resample(testRate)
		if !tr.Empty() {
			t.Error("resampled empty track is not empty")
		}
		if tr.Rate() != testRate {
			t.Errorf("Rate() = %d, want %d", tr.Rate(), testRate)
		}
	})
}

// ---------------------------------------------------------------------------
// TestSamplesFor - Duration to sample count conversion
// ---------------------------------------------------------------------------

func TestSamplesFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
		rate int
		want int
	}{
		{name: "one second", d: time.Second, rate: 16000, want: 16000},
		{name: "fifty milliseconds", d: 50 * time.Millisecond, rate: 16000, want: 800},
		{name: "zero duration", d: 0, rate: 16000, want: 0},
		{name: "negative duration", d: -time.Second, rate: 16000, want: 0},
		{name: "zero rate", d: time.Second, rate: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := audio.SamplesFor(tt.d, tt.rate); got != tt.want {
				t.Errorf("SamplesFor(%v, %d) = %d, want %d", tt.d, tt.rate, got, tt.want)
			}
		})
	}
}
