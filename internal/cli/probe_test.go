package cli_test

// Notes:
// - Probe never touches the network; a faked resolver and media are enough.
//
// Coverage Notes:
// - The exact four-line report for a long video, including the window count.
// - Missing file and unresolvable ffmpeg propagate their sentinels.

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-dubber/internal/cli"
	"github.com/alnah/go-dubber/internal/ffmpeg"
)

// ---------------------------------------------------------------------------
// TestProbe - Windowing dry run
// ---------------------------------------------------------------------------

func TestProbe(t *testing.T) {
	t.Run("reports the windowing plan", func(t *testing.T) {
		h := newHarness(t)
		h.media.probeDur = 95 * time.Minute
		input := writeVideo(t, t.TempDir(), "lecture.mkv")

		cmd := cli.ProbeCmd(h.env)
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{input})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("probe failed: %v", err)
		}

		want := "duration:       01:35:00\n" +
			"window size:    01:30\n" +
			"windows:        64\n" +
			"memory ceiling: 12 GB\n"
		if got := out.String(); got != want {
			t.Errorf("probe output:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("short video gets one window", func(t *testing.T) {
		h := newHarness(t)
		h.media.probeDur = 12 * time.Second
		input := writeVideo(t, t.TempDir(), "clip.mp4")

		cmd := cli.ProbeCmd(h.env)
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{input})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("probe failed: %v", err)
		}

		want := "duration:       00:12\n" +
			"window size:    00:30\n" +
			"windows:        1\n" +
			"memory ceiling: 6 GB\n"
		if got := out.String(); got != want {
			t.Errorf("probe output:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		h := newHarness(t)
		err := execute(cli.ProbeCmd(h.env), filepath.Join(t.TempDir(), "missing.mp4"))
		if !errors.Is(err, cli.ErrFileNotFound) {
			t.Errorf("err = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("unresolvable ffmpeg", func(t *testing.T) {
		h := newHarness(t)
		h.env.FFmpegResolver = fakeResolver{err: ffmpeg.ErrNotFound}
		input := writeVideo(t, t.TempDir(), "talk.mp4")
		err := execute(cli.ProbeCmd(h.env), input)
		if !errors.Is(err, ffmpeg.ErrNotFound) {
			t.Errorf("err = %v, want ffmpeg.ErrNotFound", err)
		}
	})
}
