// Package align computes where each translated clip begins on the output
// timeline. Given ordered source utterances and the measured duration of
// each utterance's synthesized clip, the aligner produces a placement plan
// that keeps every onset as close as possible to the source onset without
// ever overlapping speech and without ever truncating a translated clip.
package align

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Utterance is one transcribed, timestamped unit of source speech, in
// source-track time.
type Utterance struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns the source-side length of the utterance.
func (u Utterance) Duration() time.Duration { return u.End - u.Start }

// Valid reports whether the utterance can contribute to a plan: a positive
// time span and non-empty text.
func (u Utterance) Valid() bool {
	return u.End > u.Start && strings.TrimSpace(u.Text) != ""
}

// String returns a human-readable representation for logging.
func (u Utterance) String() string {
	text := strings.TrimSpace(u.Text)
	if len(text) > 40 {
		text = text[:40] + "…"
	}
	return fmt.Sprintf("[%v-%v] %q",
		u.Start.Round(time.Millisecond), u.End.Round(time.Millisecond), text)
}

// Normalize sorts utterances by start time and drops malformed entries:
// non-positive spans, empty text, and entries overlapping their successor.
// Returns the clean list and the number of dropped utterances. Malformed
// input is never fatal; offenders simply contribute nothing.
func Normalize(utts []Utterance) ([]Utterance, int) {
	sorted := make([]Utterance, len(utts))
	copy(sorted, utts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	dropped := 0
	out := sorted[:0]
	for i, u := range sorted {
		if !u.Valid() {
			dropped++
			continue
		}
		// An utterance running into the next one's start is malformed;
		// the earlier entry is the offender.
		if i+1 < len(sorted) && u.End > sorted[i+1].Start && sorted[i+1].Valid() {
			dropped++
			continue
		}
		out = append(out, u)
	}
	return out, dropped
}
