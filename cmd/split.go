package cmd

import (
	"context"
	"fmt"
	"os"

	"mp4-splitter/application/session"
	"mp4-splitter/domain/split"
	"mp4-splitter/infrastructure/project"

	"github.com/spf13/cobra"
)

var (
	splitSource  string
	splitOutput  string
	splitAt      []string
	splitTail    bool
	splitSkip    []int
	splitProject string
	splitUpload  bool
	splitNotify  bool
	splitTo      []string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Export segments of a video cut at the given split points",
	Long: `Cut a source video at one or more timestamps and export each segment.

Each --at closes a segment that starts where the previous one ended.
--tail adds a final segment running to the end of the video.
--skip leaves out a segment by its 1-based number.

With --project and no --at, points are read from the project file.
With --project and --at, the points are written to the project file before export.
--upload sends the segments to Google Drive and --notify emails their links.

Example:
  mp4-splitter split --source talk.mp4 --output out --at 00:10:00.000 --at 00:25:30.500 --tail
  mp4-splitter split --source talk.mp4 --output out --at 00:10:00.000 --tail --skip 1
  mp4-splitter split --project talk.yaml --upload --notify`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVar(&splitSource, "source", "", "Source video file")
	splitCmd.Flags().StringVar(&splitOutput, "output", "", "Output directory (defaults to paths.output_directory)")
	splitCmd.Flags().StringArrayVar(&splitAt, "at", nil, "Split point in HH:MM:SS.mmm (repeatable)")
	splitCmd.Flags().BoolVar(&splitTail, "tail", false, "Add a final segment through the end of the video")
	splitCmd.Flags().IntSliceVar(&splitSkip, "skip", nil, "1-based segment number to leave out (repeatable)")
	splitCmd.Flags().StringVar(&splitProject, "project", "", "Project file to read points from or save them to")
	splitCmd.Flags().BoolVar(&splitUpload, "upload", false, "Upload exported segments to Google Drive")
	splitCmd.Flags().BoolVar(&splitNotify, "notify", false, "Email the shareable links after uploading (requires --upload)")
	splitCmd.Flags().StringArrayVar(&splitTo, "to", nil, "Recipient for --notify, overrides notify.recipients (repeatable)")
}

// SplitOptions holds the inputs of a batch export
type SplitOptions struct {
	Source  string
	Output  string
	At      []string
	Tail    bool
	Skip    []int
	Project string
}

func runSplit(cmd *cobra.Command, args []string) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	log := GetLogger()
	ctx := cmd.Context()

	if splitNotify && !splitUpload {
		return fmt.Errorf("--notify requires --upload")
	}

	backend, err := newBackend(c, log)
	if err != nil {
		return err
	}
	if err := verifyFFmpeg(ctx, backend); err != nil {
		return err
	}

	db, err := openHistory(c, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	sess := newSession(backend, log, historyOption(db)...)

	var uploader SegmentUploader
	if splitUpload {
		svc, err := newUploadService(ctx, c, os.Stdout)
		if err != nil {
			return err
		}
		uploader = svc
	}

	var notifier Notifier
	if splitNotify {
		n, err := newNotifier(ctx, c, splitTo, os.Stdout)
		if err != nil {
			return err
		}
		notifier = n
	}

	opts := SplitOptions{
		Source:  resolveSource(c, splitSource),
		Output:  resolveOutput(c, splitOutput),
		At:      splitAt,
		Tail:    splitTail,
		Skip:    splitSkip,
		Project: splitProject,
	}
	return RunSplitWithDependencies(ctx, sess, uploader, notifier, opts, os.Stdout)
}

// RunSplitWithDependencies runs the split command with injected dependencies (for testing).
// uploader and notifier may be nil; notifier is only used after an upload.
func RunSplitWithDependencies(
	ctx context.Context,
	sess *session.Session,
	uploader SegmentUploader,
	notifier Notifier,
	opts SplitOptions,
	output OutputWriter,
) error {
	fromProject := opts.Project != "" && len(opts.At) == 0 && !opts.Tail

	// Step 1: load the video and its split points
	if fromProject {
		fmt.Fprintf(output, "Loading project %s...\n", opts.Project)
		doc, err := project.Load(opts.Project)
		if err != nil {
			return err
		}
		if opts.Source != "" {
			doc.Source = opts.Source
		}
		if err := sess.Restore(ctx, *doc); err != nil {
			return fmt.Errorf("failed to restore project: %w", err)
		}
	} else {
		if opts.Source == "" {
			return fmt.Errorf("--source is required")
		}
		if len(opts.At) == 0 && !opts.Tail {
			return fmt.Errorf("at least one --at or --tail is required")
		}
		if _, err := sess.LoadVideo(ctx, opts.Source); err != nil {
			return fmt.Errorf("failed to load video: %w", err)
		}
		for _, at := range opts.At {
			if _, err := sess.AddPointText(at); err != nil {
				return fmt.Errorf("invalid split point: %w", err)
			}
		}
		if opts.Tail {
			if _, err := sess.AddTail(); err != nil {
				return err
			}
		}
	}

	if opts.Output != "" {
		sess.SetOutputDir(opts.Output)
	}

	for _, n := range opts.Skip {
		if err := sess.ToggleSelected(n-1, false); err != nil {
			return fmt.Errorf("invalid --skip %d: %w", n, err)
		}
	}

	if info := sess.Info(); info != nil {
		fmt.Fprintf(output, "Loaded %s\n", info.String())
	}
	printIntervals(output, sess.Intervals())

	if opts.Project != "" && !fromProject {
		if err := project.Save(sess.Snapshot(), opts.Project); err != nil {
			return err
		}
		fmt.Fprintf(output, "Saved project to %s\n", opts.Project)
	}

	// Step 2: export
	result, err := sess.Export(ctx, newConsoleObserver(output))
	if err != nil {
		return err
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Segments written to %s:\n", result.OutputDir)
	paths := make([]string, len(result.Segments))
	for i, seg := range result.Segments {
		paths[i] = seg.OutputPath
		fmt.Fprintf(output, "  %s  %s - %s\n", seg.OutputName, split.FormatTime(seg.StartMs), split.FormatTime(seg.EndMs))
	}

	// Step 3: upload (optional)
	if uploader == nil {
		return nil
	}
	fmt.Fprintln(output)
	uploaded, err := uploader.UploadSegments(ctx, paths)
	printUploadResults(output, uploaded)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	// Step 4: email the links (optional)
	if notifier != nil {
		return notify(ctx, notifier, result.Source, uploaded, output)
	}

	return nil
}

// printIntervals writes the split point table
func printIntervals(output OutputWriter, intervals []split.Interval) {
	if len(intervals) == 0 {
		fmt.Fprintln(output, "No split points.")
		return
	}
	fmt.Fprintf(output, "%-4s %-14s %-14s %s\n", "#", "START", "END", "EXPORT")
	for i, iv := range intervals {
		mark := "yes"
		if !iv.Selected {
			mark = "no"
		}
		fmt.Fprintf(output, "%-4d %-14s %-14s %s\n", i+1, split.FormatTime(iv.StartMs), split.FormatOptional(iv.EndMs), mark)
	}
}
