package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubber/internal/dub"
	"github.com/alnah/go-dubber/internal/format"
)

// ProbeCmd creates the probe command, a dry run of the windowing plan.
// The env parameter provides injectable dependencies for testing.
func ProbeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <video-file>",
		Short: "Show how a video would be split into dubbing windows",
		Long: `Show how a video would be split into dubbing windows.

Probes the file's duration and prints the window size, the window count, and
the memory ceiling a dub run would use, without calling any API.`,
		Example: `  dubber probe talk.mp4`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, env, args[0])
		},
	}
}

// runProbe prints the windowing plan for one file.
func runProbe(cmd *cobra.Command, env *Env, inputPath string) error {
	ctx := cmd.Context()

	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve()
	if err != nil {
		return err
	}
	media := env.MediaFactory.NewMedia(ffmpegPath)

	total, err := media.ProbeDuration(ctx, inputPath)
	if err != nil {
		return err
	}

	windows, policy := dub.PlanWindows(total)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "duration:       %s\n", format.Duration(total))
	fmt.Fprintf(out, "window size:    %s\n", format.Duration(policy.WindowSize))
	fmt.Fprintf(out, "windows:        %d\n", len(windows))
	fmt.Fprintf(out, "memory ceiling: %d GB\n", policy.MemoryCeilingGB)
	return nil
}
