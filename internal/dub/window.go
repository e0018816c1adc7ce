package dub

import (
	"fmt"
	"time"

	"github.com/alnah/go-dubber/internal/align"
	"github.com/alnah/go-dubber/internal/format"
)

// Window banding by total recording length. Longer recordings get larger
// windows (fewer collaborator round-trips) and a higher memory ceiling.
// This is a scheduling heuristic, not a correctness requirement: any
// policy that keeps per-window memory bounded works.
var windowBands = []struct {
	upTo    time.Duration
	size    time.Duration
	limitGB int
}{
	{10 * time.Minute, 30 * time.Second, 6},
	{30 * time.Minute, 45 * time.Second, 8},
	{60 * time.Minute, 60 * time.Second, 10},
}

// Band for everything above the last threshold.
var longestBand = struct {
	size    time.Duration
	limitGB int
}{90 * time.Second, 12}

// Policy is the window size and memory ceiling chosen for a recording.
type Policy struct {
	WindowSize      time.Duration
	MemoryCeilingGB int
}

// PolicyFor selects the window policy for a recording of the given total
// duration.
func PolicyFor(total time.Duration) Policy {
	for _, b := range windowBands {
		if total <= b.upTo {
			return Policy{WindowSize: b.size, MemoryCeilingGB: b.limitGB}
		}
	}
	return Policy{WindowSize: longestBand.size, MemoryCeilingGB: longestBand.limitGB}
}

// Window is one bounded time slice of the source recording, processed
// independently to cap memory. All per-window buffers are released when
// the window's processing completes.
type Window struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Duration returns the window length.
func (w Window) Duration() time.Duration { return w.End - w.Start }

// String returns a human-readable representation for progress output.
func (w Window) String() string {
	return fmt.Sprintf("window %d: %s-%s",
		w.Index, format.Duration(w.Start), format.Duration(w.End))
}

// PlanWindows partitions [0, total) into consecutive windows per the
// policy for that duration. The last window is clipped to the total.
func PlanWindows(total time.Duration) ([]Window, Policy) {
	policy := PolicyFor(total)
	if total <= 0 {
		return nil, policy
	}
	var windows []Window
	for start := time.Duration(0); start < total; start += policy.WindowSize {
		windows = append(windows, Window{
			Index: len(windows),
			Start: start,
			End:   min(start+policy.WindowSize, total),
		})
	}
	return windows, policy
}

// utterancesIn returns the utterances assigned to the window: exactly
// those whose start falls inside it. An utterance spanning a window
// boundary belongs to the window containing its start, so boundary
// spans are neither duplicated nor lost.
func (w Window) utterancesIn(all []align.Utterance) []align.Utterance {
	var out []align.Utterance
	for _, u := range all {
		if u.Start >= w.Start && u.Start < w.End {
			out = append(out, u)
		}
	}
	return out
}
