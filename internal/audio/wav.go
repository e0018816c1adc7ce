package audio

import (
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV encoding parameters for pipeline intermediates.
const (
	wavBitDepth    = 16
	wavAudioFormat = 1 // PCM
)

// ReadFile decodes a WAV file into a mono Track at the file's native rate.
// Stereo input is downmixed by averaging channels.
func ReadFile(path string) (Track, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from the pipeline's own work directory
	if err != nil {
		return Track{}, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode decodes WAV data from a seekable reader into a mono Track.
func Decode(r io.ReadSeeker) (Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Track{}, ErrInvalidWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Track{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	return fromBuffer(buf), nil
}

// fromBuffer converts a go-audio PCM buffer to a mono Track.
func fromBuffer(buf *gaudio.IntBuffer) Track {
	rate := buf.Format.SampleRate
	ch := buf.Format.NumChannels
	if ch <= 1 {
		return Track{samples: buf.Data, rate: rate}
	}
	// Downmix interleaved channels by averaging.
	n := len(buf.Data) / ch
	mono := make([]int, n)
	for i := range n {
		sum := 0
		for c := range ch {
			sum += buf.Data[i*ch+c]
		}
		mono[i] = sum / ch
	}
	return Track{samples: mono, rate: rate}
}

// WriteFile encodes a Track as a 16-bit mono PCM WAV file.
func WriteFile(path string, t Track) error {
	if t.rate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrEmptyTrack, t.rate)
	}
	f, err := os.Create(path) // #nosec G304 -- paths come from the pipeline's own work directory
	if err != nil {
		return fmt.Errorf("cannot create wav file: %w", err)
	}

	enc := wav.NewEncoder(f, t.rate, wavBitDepth, 1, wavAudioFormat)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: t.rate},
		Data:           t.samples,
		SourceBitDepth: wavBitDepth,
	}

	writeErr := enc.Write(buf)
	if closeErr := enc.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		// Remove the partial file; the original error takes precedence.
		_ = os.Remove(path)
		return fmt.Errorf("failed to write wav: %w", writeErr)
	}
	return nil
}
