package format_test

// Notes:
// - Negative values are intentionally not tested: timeline positions are
//   always non-negative.

import (
	"testing"
	"time"

	"github.com/alnah/go-dubber/internal/format"
)

// ---------------------------------------------------------------------------
// TestDuration - Seek-bar style timeline positions
// ---------------------------------------------------------------------------

func TestDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "00:00"},
		{name: "seconds only", d: 12 * time.Second, want: "00:12"},
		{name: "window size", d: 90 * time.Second, want: "01:30"},
		{name: "sub-second truncates", d: 2500 * time.Millisecond, want: "00:02"},
		{name: "minutes", d: 9*time.Minute + 59*time.Second, want: "09:59"},
		{name: "hour rolls to three fields", d: time.Hour, want: "01:00:00"},
		{name: "long video", d: 95 * time.Minute, want: "01:35:00"},
		{name: "multi hour", d: 2*time.Hour + 5*time.Minute + 7*time.Second, want: "02:05:07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := format.Duration(tt.d); got != tt.want {
				t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
