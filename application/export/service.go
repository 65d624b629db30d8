package export

import (
	"context"
	"fmt"
	"log/slog"

	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
)

// Result contains the segments produced by a successful export
type Result struct {
	Source    string
	OutputDir string
	Segments  []video.Segment
}

// Driver walks the selected split points and exports one file per point.
// Source and output directory have no default and must be set before use.
type Driver struct {
	opener    video.Opener
	dirs      video.DirCreator
	observer  video.Observer
	logger    *slog.Logger
	source    string
	outputDir string
}

// Option is a functional option for configuring Driver
type Option func(*Driver)

// WithObserver sets the notification sink
func WithObserver(o video.Observer) Option {
	return func(d *Driver) {
		d.observer = o
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// NewDriver creates a new export Driver
func NewDriver(opener video.Opener, dirs video.DirCreator, opts ...Option) *Driver {
	d := &Driver{
		opener:   opener,
		dirs:     dirs,
		observer: video.NopObserver{},
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// SetSourcePath sets the video to export from
func (d *Driver) SetSourcePath(path string) {
	d.source = path
}

// SourcePath returns the configured source video
func (d *Driver) SourcePath() string {
	return d.source
}

// SetOutputDir sets the directory segments are written to
func (d *Driver) SetOutputDir(dir string) {
	d.outputDir = dir
}

// OutputDir returns the configured output directory
func (d *Driver) OutputDir() string {
	return d.outputDir
}

// SetObserver replaces the notification sink
func (d *Driver) SetObserver(o video.Observer) {
	if o == nil {
		o = video.NopObserver{}
	}
	d.observer = o
}

// Info opens the source, reads its properties and releases it again
func (d *Driver) Info(ctx context.Context) (*video.Info, error) {
	if d.source == "" {
		return nil, &split.ConfigurationError{Message: "source not set"}
	}

	src, err := d.opener.Open(ctx, d.source)
	if err != nil {
		return nil, d.fail("error getting video info", err)
	}
	defer d.release(src)

	info, err := src.Info(ctx)
	if err != nil {
		return nil, d.fail("error getting video info", err)
	}
	return &info, nil
}

// Plan validates the selection and names the output of every selected interval.
// An unset end on the last interval is left as -1 for Export to resolve.
func (d *Driver) Plan(selected []split.Interval) ([]video.Segment, error) {
	if d.source == "" || d.outputDir == "" {
		return nil, &split.ConfigurationError{Message: "source or destination not set"}
	}
	if len(selected) == 0 {
		return nil, &split.ConfigurationError{Message: "no segments selected"}
	}

	segments := make([]video.Segment, len(selected))
	for i, iv := range selected {
		endMs := int64(-1)
		if iv.EndMs != nil {
			endMs = *iv.EndMs
		} else if i != len(selected)-1 {
			return nil, &split.ConfigurationError{
				Message: fmt.Sprintf("segment %d has no end; only the last segment may run to the end of the video", i+1),
			}
		}
		if endMs >= 0 && endMs < iv.StartMs {
			return nil, &split.ConfigurationError{
				Message: fmt.Sprintf("segment %d ends before it starts (%s > %s)", i+1, split.FormatTime(iv.StartMs), split.FormatTime(endMs)),
			}
		}
		segments[i] = video.NewSegment(d.source, d.outputDir, i+1, iv.StartMs, endMs)
	}
	return segments, nil
}

// Export encodes every selected interval in order. It stops at the first
// encoder failure and leaves files already written in place.
func (d *Driver) Export(ctx context.Context, selected []split.Interval) (*Result, error) {
	segments, err := d.Plan(selected)
	if err != nil {
		return nil, err
	}

	if err := d.dirs.EnsureDir(d.outputDir); err != nil {
		return nil, d.fail("error creating output directory", err)
	}

	src, err := d.opener.Open(ctx, d.source)
	if err != nil {
		return nil, d.fail("error splitting video", err)
	}
	defer d.release(src)

	last := &segments[len(segments)-1]
	if last.EndMs < 0 {
		info, err := src.Info(ctx)
		if err != nil {
			return nil, d.fail("error splitting video", err)
		}
		if info.DurationMs < last.StartMs {
			return nil, &split.ConfigurationError{
				Message: fmt.Sprintf("segment %d starts after the end of the video", last.Index),
			}
		}
		last.EndMs = info.DurationMs
	}

	total := len(segments)
	for i, seg := range segments {
		d.observer.SegmentStarted(seg.Index, seg.OutputName)
		d.observer.Progress(i, total)

		d.logger.Info("exporting segment",
			"index", seg.Index,
			"total", total,
			"start", split.FormatTime(seg.StartMs),
			"end", split.FormatTime(seg.EndMs),
			"output", seg.OutputPath)

		if err := src.ExportSegment(ctx, seg.StartMs, seg.EndMs, seg.OutputPath); err != nil {
			return nil, d.fail(fmt.Sprintf("error splitting video at segment %d", seg.Index), err)
		}
	}

	d.observer.Progress(total, total)
	d.observer.Completed()

	return &Result{
		Source:    d.source,
		OutputDir: d.outputDir,
		Segments:  segments,
	}, nil
}

// fail emits the Error notification and builds the ExportError returned to the caller
func (d *Driver) fail(message string, cause error) error {
	exportErr := &split.ExportError{Message: message, Err: cause}
	d.logger.Error(message, "source", d.source, "error", cause)
	d.observer.Error(exportErr.Error())
	return exportErr
}

func (d *Driver) release(src video.Source) {
	if err := src.Close(); err != nil {
		d.logger.Warn("failed to release video", "source", d.source, "error", err)
	}
}
