package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mp4-splitter/application/export"
	"mp4-splitter/domain/history"
	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
	"mp4-splitter/infrastructure/filesystem"
	"mp4-splitter/infrastructure/project"
)

type fakeSource struct {
	info    video.Info
	failAt  int
	exports int
}

func (f *fakeSource) Info(ctx context.Context) (video.Info, error) { return f.info, nil }

func (f *fakeSource) ExportSegment(ctx context.Context, startMs, endMs int64, outputPath string) error {
	f.exports++
	if f.exports == f.failAt {
		return errors.New("encoder crashed")
	}
	return os.WriteFile(outputPath, []byte("x"), 0644)
}

func (f *fakeSource) Close() error { return nil }

// fakeOpener knows a fixed set of videos by path
type fakeOpener struct {
	videos map[string]*fakeSource
}

func (f *fakeOpener) Open(ctx context.Context, path string) (video.Source, error) {
	src, ok := f.videos[path]
	if !ok {
		return nil, errors.New("source video does not exist: " + path)
	}
	return src, nil
}

type memoryHistory struct {
	runs []history.Run
	err  error
}

func (m *memoryHistory) RecordRun(ctx context.Context, run history.Run) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryHistory) ListRuns(ctx context.Context, limit int) ([]history.Run, error) {
	return m.runs, nil
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeOpener) {
	t.Helper()
	opener := &fakeOpener{videos: map[string]*fakeSource{
		"/videos/clip.mp4":  {info: video.Info{DurationMs: 90000, Width: 1920, Height: 1080, Filename: "clip.mp4"}},
		"/videos/short.mp4": {info: video.Info{DurationMs: 10000, Filename: "short.mp4"}},
	}}
	driver := export.NewDriver(opener, filesystem.NewChecker())
	return New(driver, opts...), opener
}

func TestSession_LoadVideoResetsPoints(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if _, err := s.LoadVideo(ctx, "/videos/clip.mp4"); err != nil {
		t.Fatalf("LoadVideo() error = %v", err)
	}
	if _, err := s.AddPoint(30000); err != nil {
		t.Fatalf("AddPoint() error = %v", err)
	}

	info, err := s.LoadVideo(ctx, "/videos/short.mp4")
	if err != nil {
		t.Fatalf("LoadVideo() error = %v", err)
	}
	if info.DurationMs != 10000 {
		t.Errorf("DurationMs = %d", info.DurationMs)
	}
	if len(s.Intervals()) != 0 {
		t.Errorf("loading a new video should discard intervals, have %d", len(s.Intervals()))
	}
}

func TestSession_LoadVideoFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")
	_, _ = s.AddPoint(30000)

	_, err := s.LoadVideo(ctx, "/videos/missing.mp4")
	if !split.IsExportError(err) {
		t.Fatalf("LoadVideo() error = %v, want ExportError", err)
	}

	st := s.State()
	if st.Source != "/videos/clip.mp4" || st.Info == nil || st.Info.Filename != "clip.mp4" {
		t.Errorf("state after failed load = %+v", st)
	}
	if len(st.Intervals) != 1 {
		t.Errorf("intervals = %d, want 1", len(st.Intervals))
	}
}

func TestSession_AddPointValidation(t *testing.T) {
	s, _ := newTestSession(t)

	if _, err := s.AddPoint(1000); !IsNoVideo(err) {
		t.Errorf("AddPoint() without video error = %v, want ErrNoVideo", err)
	}
	if _, err := s.AddTail(); !split.IsConfigurationError(err) {
		t.Errorf("AddTail() without video error = %v, want ConfigurationError", err)
	}

	_, _ = s.LoadVideo(context.Background(), "/videos/clip.mp4")

	if _, err := s.AddPoint(90001); !split.IsParseError(err) {
		t.Errorf("AddPoint() beyond duration error = %v, want ParseError", err)
	}
	if _, err := s.AddPointText("00:01:3"); !split.IsParseError(err) {
		t.Errorf("AddPointText() error = %v, want ParseError", err)
	}

	iv, err := s.AddPointText("00:00:30.000")
	if err != nil {
		t.Fatalf("AddPointText() error = %v", err)
	}
	if iv.StartMs != 0 || *iv.EndMs != 30000 {
		t.Errorf("interval = %+v", iv)
	}
}

func TestSession_OutOfOrderEditsKeepSnapshotLoadable(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")

	if _, err := s.AddPoint(60000); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddPoint(30000); !split.IsParseError(err) {
		t.Errorf("AddPoint() before the previous point error = %v, want ParseError", err)
	}
	if _, err := s.AddPoint(75000); err != nil {
		t.Fatal(err)
	}
	if err := s.EditBoundary(0, split.End, "00:01:20.000"); !split.IsParseError(err) {
		t.Errorf("EditBoundary() past the next end error = %v, want ParseError", err)
	}

	doc := s.Snapshot()
	intervals, err := doc.Intervals()
	if err != nil {
		t.Fatalf("snapshot does not load back: %v", err)
	}
	if len(intervals) != 2 || *intervals[0].EndMs != 60000 || intervals[1].StartMs != 60000 {
		t.Errorf("intervals = %+v", intervals)
	}
}

func TestSession_CanExport(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	if s.CanExport() {
		t.Error("CanExport() = true with nothing loaded")
	}
	_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")
	s.SetOutputDir(t.TempDir())
	if s.CanExport() {
		t.Error("CanExport() = true without split points")
	}
	_, _ = s.AddPoint(30000)
	if !s.CanExport() {
		t.Error("CanExport() = false with video, output and a point")
	}
	if !s.State().CanExport {
		t.Error("State().CanExport = false")
	}
}

func TestSession_ExportRecordsHistory(t *testing.T) {
	ctx := context.Background()
	store := &memoryHistory{}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, _ := newTestSession(t, WithHistory(store), WithClock(func() time.Time { return clock }))

	outDir := filepath.Join(t.TempDir(), "out")
	_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")
	s.SetOutputDir(outDir)
	_, _ = s.AddPoint(30000)
	_, _ = s.AddTail()
	_ = s.ToggleSelected(0, false)

	rec := &video.Recorder{}
	result, err := s.Export(ctx, rec)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	want := []string{
		"SegmentStarted(1,clip_split_1.mp4)",
		"Progress(0,1)",
		"Progress(1,1)",
		"Completed()",
	}
	if strings.Join(rec.Strings(), " ") != strings.Join(want, " ") {
		t.Errorf("events = %v, want %v", rec.Strings(), want)
	}
	if result.Segments[0].StartMs != 30000 || result.Segments[0].EndMs != 90000 {
		t.Errorf("segment = %+v", result.Segments[0])
	}

	if len(store.runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(store.runs))
	}
	run := store.runs[0]
	if run.Status != history.StatusCompleted || run.ID == "" || len(run.Segments) != 1 {
		t.Errorf("run = %+v", run)
	}
	if !run.StartedAt.Equal(clock) {
		t.Errorf("StartedAt = %v", run.StartedAt)
	}
}

func TestSession_ExportFailureRecorded(t *testing.T) {
	ctx := context.Background()
	store := &memoryHistory{}
	s, opener := newTestSession(t, WithHistory(store))
	opener.videos["/videos/clip.mp4"].failAt = 2

	_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")
	s.SetOutputDir(t.TempDir())
	_, _ = s.AddPoint(30000)
	_, _ = s.AddPoint(60000)

	rec := &video.Recorder{}
	if _, err := s.Export(ctx, rec); !split.IsExportError(err) {
		t.Fatalf("Export() error = %v, want ExportError", err)
	}

	events := rec.Strings()
	if last := events[len(events)-1]; !strings.HasPrefix(last, "Error(") {
		t.Errorf("last event = %q, want Error", last)
	}
	if len(store.runs) != 1 || store.runs[0].Status != history.StatusFailed || store.runs[0].Error == "" {
		t.Errorf("runs = %+v", store.runs)
	}
}

func TestSession_ConfigurationErrorNotRecorded(t *testing.T) {
	store := &memoryHistory{}
	s, _ := newTestSession(t, WithHistory(store))
	_, _ = s.LoadVideo(context.Background(), "/videos/clip.mp4")
	_, _ = s.AddPoint(30000)

	rec := &video.Recorder{}
	_, err := s.Export(context.Background(), rec)
	if !split.IsConfigurationError(err) {
		t.Fatalf("Export() error = %v, want ConfigurationError", err)
	}
	if len(rec.Events) != 0 || len(store.runs) != 0 {
		t.Errorf("events = %v, runs = %v; want none", rec.Events, store.runs)
	}
}

func TestSession_HistoryFailureDoesNotFailExport(t *testing.T) {
	s, _ := newTestSession(t, WithHistory(&memoryHistory{err: errors.New("disk full")}))
	_, _ = s.LoadVideo(context.Background(), "/videos/clip.mp4")
	s.SetOutputDir(t.TempDir())
	_, _ = s.AddPoint(30000)

	if _, err := s.Export(context.Background(), nil); err != nil {
		t.Errorf("Export() error = %v", err)
	}
}

func TestSession_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")
	s.SetOutputDir("/out")
	_, _ = s.AddPoint(30000)
	_, _ = s.AddTail()
	_ = s.ToggleSelected(0, false)

	doc := s.Snapshot()
	if doc.Source != "/videos/clip.mp4" || len(doc.Points) != 2 || doc.Points[1].End != "" {
		t.Fatalf("Snapshot() = %+v", doc)
	}

	other, _ := newTestSession(t)
	if err := other.Restore(ctx, doc); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	st := other.State()
	if st.OutputDir != "/out" || len(st.Intervals) != 2 || st.Intervals[0].Selected || st.Intervals[1].HasEnd() {
		t.Errorf("restored state = %+v", st)
	}
}

func TestSession_RestoreRejectsInvalidDocuments(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		doc  project.Document
	}{
		{
			name: "bad time text",
			doc:  project.Document{Source: "/videos/clip.mp4", Points: []project.Point{{Start: "0:0:0", End: "00:00:01.000"}}},
		},
		{
			name: "beyond video",
			doc:  project.Document{Source: "/videos/short.mp4", Points: []project.Point{{Start: "00:00:00.000", End: "00:00:30.000"}}},
		},
		{
			name: "missing video",
			doc:  project.Document{Source: "/videos/missing.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			_, _ = s.LoadVideo(ctx, "/videos/clip.mp4")
			_, _ = s.AddPoint(1000)

			if err := s.Restore(ctx, tt.doc); err == nil {
				t.Fatal("Restore() should fail")
			}

			st := s.State()
			if st.Source != "/videos/clip.mp4" || len(st.Intervals) != 1 {
				t.Errorf("state changed after failed restore: %+v", st)
			}
		})
	}
}
