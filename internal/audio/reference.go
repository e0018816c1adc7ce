package audio

import "time"

// Speaker reference window. Voice cloning engines want a clean 4-10s
// sample of the target speaker.
const (
	minReferenceLen = 4 * time.Second
	maxReferenceLen = 10 * time.Second
)

// SpeakerReference extracts a clean representative voice sample from a
// track: the single longest speech interval, cropped symmetrically around
// its center when too long, or expanded symmetrically (clamped to the track
// bounds) when too short.
func SpeakerReference(t Track, sm SilenceMap) (Track, error) {
	iv, ok := sm.Longest()
	if !ok {
		return Track{}, ErrNoSpeech
	}

	start, end := iv.Start, iv.End
	switch d := iv.Duration(); {
	case d > maxReferenceLen:
		center := start + d/2
		start = max(0, center-maxReferenceLen/2)
		end = start + maxReferenceLen
	case d < minReferenceLen:
		deficit := minReferenceLen - d
		left := deficit / 2
		if start < left {
			left = start
		}
		start -= left
		end += deficit - left
	}
	if end > t.Duration() {
		end = t.Duration()
	}

	ref := t.Slice(start, end)
	if ref.Empty() {
		return Track{}, ErrNoSpeech
	}
	return ref, nil
}
