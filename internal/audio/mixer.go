package audio

import (
	"fmt"
	"math"
)

// BedGainDB is the attenuation applied to the original track before it is
// laid under the dubbed speech as ambient bed. Quiet enough not to compete
// with the translated voice, loud enough to keep room tone and music.
const BedGainDB = -24.0

// 16-bit PCM clamp bounds for the additive mix.
const (
	sampleMax = 32767
	sampleMin = -32768
)

// MixBed overlays a dubbed voice track on an attenuated copy of the
// original track. The original is length-matched to the voice track first
// (padded with silence or truncated), then attenuated by gainDB and mixed
// sample-wise under the voice. Run exactly once per output, after all
// windows are concatenated; mixing per window would compound attenuation.
func MixBed(voice, original Track, gainDB float64) (Track, error) {
	if voice.Empty() {
		return Track{}, ErrEmptyTrack
	}
	if original.rate != voice.rate {
		return Track{}, fmt.Errorf("%w: voice %d Hz, original %d Hz", ErrRateMismatch, voice.rate, original.rate)
	}

	bed := original.PadTo(voice.Duration()).TruncateTo(voice.Duration())
	gain := math.Pow(10, gainDB/20)

	out := make([]int, len(voice.samples))
	for i, s := range voice.samples {
		mixed := s
		if i < len(bed.samples) {
			mixed += int(float64(bed.samples[i]) * gain)
		}
		if mixed > sampleMax {
			mixed = sampleMax
		} else if mixed < sampleMin {
			mixed = sampleMin
		}
		out[i] = mixed
	}
	return Track{samples: out, rate: voice.rate}, nil
}
