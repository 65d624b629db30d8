package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mp4-splitter/application/export"
	"mp4-splitter/domain/history"
	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
	"mp4-splitter/infrastructure/logging"
	"mp4-splitter/infrastructure/project"
)

// ErrNoVideo is returned by operations that need a loaded video
var ErrNoVideo = &split.ConfigurationError{Message: "no video loaded"}

// State is a point-in-time view of the session for front ends
type State struct {
	Source    string           `json:"source"`
	OutputDir string           `json:"output_directory"`
	Info      *video.Info      `json:"info,omitempty"`
	Intervals []split.Interval `json:"intervals"`
	CanExport bool             `json:"can_export"`
}

// Session holds the loaded video, its split points and the output directory.
// All methods are safe for concurrent use; Export holds the lock until the
// walk finishes.
type Session struct {
	mu      sync.Mutex
	driver  *export.Driver
	seq     *split.Sequence
	info    *video.Info
	history history.Store
	logger  *slog.Logger
	now     func() time.Time
}

// Option is a functional option for configuring Session
type Option func(*Session)

// WithHistory records every export attempt in store
func WithHistory(store history.Store) Option {
	return func(s *Session) {
		s.history = store
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock overrides time.Now (for testing)
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates an empty session around an export driver
func New(driver *export.Driver, opts ...Option) *Session {
	s := &Session{
		driver: driver,
		seq:    split.NewSequence(),
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LoadVideo switches to a new source and discards the split points.
// On failure the previous video stays loaded.
func (s *Session) LoadVideo(ctx context.Context, path string) (*video.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, path)
}

func (s *Session) loadLocked(ctx context.Context, path string) (*video.Info, error) {
	previous := s.driver.SourcePath()
	s.driver.SetSourcePath(path)

	info, err := s.driver.Info(ctx)
	if err != nil {
		s.driver.SetSourcePath(previous)
		return nil, err
	}

	s.info = info
	s.seq.Reset()
	s.logger.Info("video loaded", "source", logging.SanitizePath(path), "duration", split.FormatTime(info.DurationMs))

	out := *info
	return &out, nil
}

// SetOutputDir sets the directory segments are written to
func (s *Session) SetOutputDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driver.SetOutputDir(dir)
}

// AddPoint closes a segment at timestampMs
func (s *Session) AddPoint(timestampMs int64) (split.Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info == nil {
		return split.Interval{}, ErrNoVideo
	}
	if timestampMs < 0 || timestampMs > s.info.DurationMs {
		return split.Interval{}, &split.ParseError{
			Input:  split.FormatTime(max(timestampMs, 0)),
			Reason: "outside the video (0 to " + split.FormatTime(s.info.DurationMs) + ")",
		}
	}
	return s.seq.AddPoint(timestampMs)
}

// AddPointText is AddPoint for HH:MM:SS.mmm input
func (s *Session) AddPointText(text string) (split.Interval, error) {
	ms, err := split.ParseTime(text)
	if err != nil {
		return split.Interval{}, err
	}
	return s.AddPoint(ms)
}

// AddTail appends a segment running to the end of the video
func (s *Session) AddTail() (split.Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info == nil {
		return split.Interval{}, ErrNoVideo
	}
	return s.seq.AddTail()
}

// EditBoundary applies a typed boundary edit
func (s *Session) EditBoundary(index int, which split.Boundary, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.EditBoundary(index, which, text)
}

// ToggleSelected includes or excludes one interval from export
func (s *Session) ToggleSelected(index int, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.ToggleSelected(index, value)
}

// Intervals returns a copy of the split points
func (s *Session) Intervals() []split.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Intervals()
}

// Info returns the loaded video's properties, or nil
func (s *Session) Info() *video.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil
	}
	out := *s.info
	return &out
}

// CanExport reports whether a video and output directory are set and at
// least one split point exists
func (s *Session) CanExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canExportLocked()
}

func (s *Session) canExportLocked() bool {
	return s.info != nil && s.driver.OutputDir() != "" && s.seq.Len() > 0
}

// State returns a snapshot for display
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Source:    s.driver.SourcePath(),
		OutputDir: s.driver.OutputDir(),
		Intervals: s.seq.Intervals(),
		CanExport: s.canExportLocked(),
	}
	if s.info != nil {
		info := *s.info
		st.Info = &info
	}
	return st
}

// Export writes every selected interval, delivering notifications to observer
func (s *Session) Export(ctx context.Context, observer video.Observer) (*export.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if observer == nil {
		observer = video.NopObserver{}
	}
	s.driver.SetObserver(observer)
	defer s.driver.SetObserver(nil)

	started := s.now()
	result, err := s.driver.Export(ctx, s.seq.Selected())
	s.record(ctx, started, result, err)
	return result, err
}

// record stores the outcome of an export that reached the encoder stage.
// Configuration errors never touched the filesystem and are not recorded.
func (s *Session) record(ctx context.Context, started time.Time, result *export.Result, exportErr error) {
	if s.history == nil || split.IsConfigurationError(exportErr) {
		return
	}

	run := history.Run{
		ID:         uuid.NewString(),
		Source:     s.driver.SourcePath(),
		OutputDir:  s.driver.OutputDir(),
		Status:     history.StatusCompleted,
		StartedAt:  started,
		FinishedAt: s.now(),
	}
	if exportErr != nil {
		run.Status = history.StatusFailed
		run.Error = exportErr.Error()
	}
	if result != nil {
		run.Segments = result.Segments
	}

	log := logging.WithRunID(s.logger, run.ID)
	if err := s.history.RecordRun(ctx, run); err != nil {
		log.Warn("failed to record export history", "error", err)
		return
	}
	log.Debug("export recorded", "status", run.Status, "segments", len(run.Segments))
}

// Snapshot returns the session as a project document
func (s *Session) Snapshot() project.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return project.FromIntervals(s.driver.SourcePath(), s.driver.OutputDir(), s.seq.Intervals())
}

// Restore loads the document's video and replaces the split points with its
// points. Nothing changes if the points are invalid or the video cannot be loaded.
func (s *Session) Restore(ctx context.Context, doc project.Document) error {
	intervals, err := doc.Intervals()
	if err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.driver.SourcePath()
	s.driver.SetSourcePath(doc.Source)

	info, err := s.driver.Info(ctx)
	if err != nil {
		s.driver.SetSourcePath(previous)
		return err
	}

	for i, iv := range intervals {
		if iv.StartMs > info.DurationMs || (iv.EndMs != nil && *iv.EndMs > info.DurationMs) {
			s.driver.SetSourcePath(previous)
			return fmt.Errorf("invalid project: point %d lies beyond the end of the video", i+1)
		}
	}

	s.info = info
	if doc.OutputDirectory != "" {
		s.driver.SetOutputDir(doc.OutputDirectory)
	}
	s.seq = split.FromIntervals(intervals)
	return nil
}

// IsNoVideo reports whether err is ErrNoVideo
func IsNoVideo(err error) bool {
	return errors.Is(err, ErrNoVideo)
}
