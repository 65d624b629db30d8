package cmd

import (
	"context"
	"fmt"
	"os"

	"mp4-splitter/domain/video"

	"github.com/spf13/cobra"
)

var infoSource string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show duration, resolution and frame rate of a video",
	Long: `Probe a video and print its summary line.

Example:
  mp4-splitter info --source talk.mp4`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&infoSource, "source", "", "Source video file (required)")
	infoCmd.MarkFlagRequired("source")
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	backend, err := newBackend(c, GetLogger())
	if err != nil {
		return err
	}
	return RunInfoWithDependencies(cmd.Context(), backend, resolveSource(c, infoSource), os.Stdout)
}

// RunInfoWithDependencies runs the info command with injected dependencies (for testing)
func RunInfoWithDependencies(ctx context.Context, opener video.Opener, source string, output OutputWriter) error {
	src, err := opener.Open(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	defer src.Close()

	info, err := src.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to read video info: %w", err)
	}

	fmt.Fprintf(output, "%s @ %.2f fps\n", info.String(), info.FPS)
	if !info.HasAudio {
		fmt.Fprintln(output, "  (no audio stream)")
	}
	return nil
}
