package align_test

import (
	"testing"
	"time"

	"github.com/alnah/go-dubber/internal/align"
)

// utt builds an utterance from second offsets for readable tables.
func utt(start, end float64, text string) align.Utterance {
	return align.Utterance{
		Start: time.Duration(start * float64(time.Second)),
		End:   time.Duration(end * float64(time.Second)),
		Text:  text,
	}
}

// ---------------------------------------------------------------------------
// TestUtteranceValid - Positive span and non-empty text
// ---------------------------------------------------------------------------

func TestUtteranceValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		u    align.Utterance
		want bool
	}{
		{name: "well-formed", u: utt(0, 2, "hello"), want: true},
		{name: "zero span", u: utt(2, 2, "hello"), want: false},
		{name: "inverted span", u: utt(3, 2, "hello"), want: false},
		{name: "empty text", u: utt(0, 2, ""), want: false},
		{name: "whitespace-only text", u: utt(0, 2, "   "), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.u.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNormalize - Sorting and malformed-entry dropping
// ---------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("sorts by start time", func(t *testing.T) {
		t.Parallel()

		got, dropped := align.Normalize([]align.Utterance{
			utt(4, 5, "c"),
			utt(0, 1, "a"),
			utt(2, 3, "b"),
		})
		if dropped != 0 {
			t.Errorf("dropped = %d, want 0", dropped)
		}
		if len(got) != 3 {
			t.Fatalf("got %d utterances, want 3", len(got))
		}
		for i, want := range []string{"a", "b", "c"} {
			if got[i].Text != want {
				t.Errorf("got[%d].Text = %q, want %q", i, got[i].Text, want)
			}
		}
	})

	t.Run("drops malformed entries and counts them", func(t *testing.T) {
		t.Parallel()

		got, dropped := align.Normalize([]align.Utterance{
			utt(0, 1, "keep"),
			utt(2, 2, "zero span"),
			utt(3, 4, "  "),
			utt(5, 6, "keep too"),
		})
		if dropped != 2 {
			t.Errorf("dropped = %d, want 2", dropped)
		}
		if len(got) != 2 {
			t.Fatalf("got %d utterances %v, want 2", len(got), got)
		}
	})

	t.Run("drops the earlier of an overlapping pair", func(t *testing.T) {
		t.Parallel()

		got, dropped := align.Normalize([]align.Utterance{
			utt(0, 2, "overruns"),
			utt(1, 3, "kept"),
		})
		if dropped != 1 {
			t.Errorf("dropped = %d, want 1", dropped)
		}
		if len(got) != 1 || got[0].Text != "kept" {
			t.Fatalf("got %v, want only the later entry", got)
		}
	})

	t.Run("touching boundaries are not overlap", func(t *testing.T) {
		t.Parallel()

		got, dropped := align.Normalize([]align.Utterance{
			utt(0, 2, "a"),
			utt(2, 4, "b"),
		})
		if dropped != 0 || len(got) != 2 {
			t.Errorf("got %d utterances with %d dropped, want 2 and 0", len(got), dropped)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		got, dropped := align.Normalize(nil)
		if len(got) != 0 || dropped != 0 {
			t.Errorf("got %v with %d dropped, want empty and 0", got, dropped)
		}
	})
}
