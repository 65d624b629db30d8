package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appdist "mp4-splitter/application/distribution"
	appnotify "mp4-splitter/application/notification"
	"mp4-splitter/domain/distribution"
	"mp4-splitter/domain/video"

	"github.com/spf13/cobra"
)

var (
	uploadFiles  []string
	uploadNotify bool
	uploadTo     []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload exported segments to Google Drive with public sharing",
	Long: `Upload one or more segment files to Google Drive and set public sharing.

The files are uploaded to the configured google.folder_id folder, replacing
any file with the same name, and made accessible with "anyone with the link"
permission.

With --notify the shareable links are emailed through Gmail to
notify.recipients, or to the --to addresses when given.

Example:
  mp4-splitter upload --file out/talk_split_1.mp4 --file out/talk_split_2.mp4
  mp4-splitter upload --file out/talk_split_1.mp4 --notify --to "Ann <ann@example.com>"`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringArrayVar(&uploadFiles, "file", nil, "Segment file to upload (repeatable)")
	uploadCmd.Flags().BoolVar(&uploadNotify, "notify", false, "Email the shareable links after uploading")
	uploadCmd.Flags().StringArrayVar(&uploadTo, "to", nil, "Recipient for --notify, overrides notify.recipients (repeatable)")
	uploadCmd.MarkFlagRequired("file")
}

func runUpload(cmd *cobra.Command, args []string) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, err := newUploadService(ctx, c, os.Stdout)
	if err != nil {
		return err
	}

	var notifier Notifier
	if uploadNotify {
		n, err := newNotifier(ctx, c, uploadTo, os.Stdout)
		if err != nil {
			return err
		}
		notifier = n
	}
	return RunUploadWithDependencies(ctx, svc, notifier, uploadFiles, os.Stdout)
}

// SegmentUploader uploads segment files and reports what was shared
type SegmentUploader interface {
	UploadSegments(ctx context.Context, paths []string) ([]distribution.UploadResult, error)
}

// Notifier emails the links of uploaded segments
type Notifier interface {
	NotifyUploads(ctx context.Context, source string, results []distribution.UploadResult) error
}

var (
	_ SegmentUploader = (*appdist.UploadService)(nil)
	_ Notifier        = (*appnotify.Service)(nil)
)

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing).
// notifier may be nil.
func RunUploadWithDependencies(ctx context.Context, uploader SegmentUploader, notifier Notifier, files []string, output OutputWriter) error {
	if len(files) == 0 {
		return fmt.Errorf("at least one --file is required")
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("file not found: %s", f)
		}
	}

	results, err := uploader.UploadSegments(ctx, files)
	printUploadResults(output, results)
	if err != nil {
		return fmt.Errorf("upload failed after %d of %d files: %w", len(results), len(files), err)
	}
	fmt.Fprintf(output, "Upload complete!\n")

	if notifier != nil {
		return notify(ctx, notifier, video.SegmentSourceBase(files[0]), results, output)
	}
	return nil
}

func printUploadResults(output OutputWriter, results []distribution.UploadResult) {
	for _, r := range results {
		fmt.Fprintf(output, "%s\n", r.FileName)
		fmt.Fprintf(output, "  File ID: %s\n", r.FileID)
		fmt.Fprintf(output, "  Size: %.2f MB\n", float64(r.Size)/1024/1024)
		fmt.Fprintf(output, "  Shareable URL: %s\n", r.ShareableURL)
	}
}

// notify emails the upload results; the uploads themselves are kept on failure
func notify(ctx context.Context, notifier Notifier, source string, results []distribution.UploadResult, output OutputWriter) error {
	fmt.Fprintln(output, "Sending notification email...")
	if err := notifier.NotifyUploads(ctx, filepath.Base(source), results); err != nil {
		return fmt.Errorf("segments were uploaded but the email failed: %w", err)
	}
	fmt.Fprintln(output, "Email sent!")
	return nil
}
