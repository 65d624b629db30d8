package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mp4-splitter/domain/split"
)

func TestFromIntervals(t *testing.T) {
	intervals := []split.Interval{
		split.Interval{StartMs: 0, Selected: true}.WithEnd(30000),
		{StartMs: 30000, Selected: false},
	}

	doc := FromIntervals("/v/clip.mp4", "/out", intervals)

	want := []Point{
		{Start: "00:00:00.000", End: "00:00:30.000", Selected: true},
		{Start: "00:00:30.000", End: "", Selected: false},
	}
	if len(doc.Points) != len(want) {
		t.Fatalf("points = %d, want %d", len(doc.Points), len(want))
	}
	for i := range want {
		if doc.Points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, doc.Points[i], want[i])
		}
	}
}

func TestDocument_Intervals(t *testing.T) {
	tests := []struct {
		name    string
		points  []Point
		wantLen int
		wantErr string
	}{
		{
			name: "chained with open tail",
			points: []Point{
				{Start: "00:00:00.000", End: "00:00:30.000", Selected: true},
				{Start: "00:00:30.000", Selected: true},
			},
			wantLen: 2,
		},
		{
			name:    "empty",
			points:  nil,
			wantLen: 0,
		},
		{
			name:    "bad start",
			points:  []Point{{Start: "0:00:00", End: "00:00:01.000"}},
			wantErr: "point 1 start",
		},
		{
			name:    "bad end",
			points:  []Point{{Start: "00:00:00.000", End: "00:00:61.000"}},
			wantErr: "point 1 end",
		},
		{
			name:    "end before start",
			points:  []Point{{Start: "00:00:05.000", End: "00:00:01.000"}},
			wantErr: "ends before it starts",
		},
		{
			name: "open interval in the middle",
			points: []Point{
				{Start: "00:00:00.000"},
				{Start: "00:00:30.000", End: "00:01:00.000"},
			},
			wantErr: "only the last point",
		},
		{
			name: "gap",
			points: []Point{
				{Start: "00:00:00.000", End: "00:00:10.000"},
				{Start: "00:00:20.000", End: "00:00:30.000"},
			},
			wantErr: "does not start where point 1 ends",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Document{Source: "a.mp4", Points: tt.points}.Intervals()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Intervals() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Intervals() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects", "clip.yaml")
	doc := Document{
		Source:          "/v/clip.mp4",
		OutputDirectory: "/out",
		Points: []Point{
			{Start: "00:00:00.000", End: "00:00:30.000", Selected: true},
			{Start: "00:00:30.000", Selected: true},
		},
	}

	if err := Save(doc, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Source != doc.Source || loaded.OutputDirectory != doc.OutputDirectory || len(loaded.Points) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Points[1] != doc.Points[1] {
		t.Errorf("tail = %+v, want %+v", loaded.Points[1], doc.Points[1])
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}

	noSource := filepath.Join(dir, "nosource.yaml")
	_ = os.WriteFile(noSource, []byte("points: []\n"), 0644)
	if _, err := Load(noSource); err == nil || !strings.Contains(err.Error(), "no source") {
		t.Errorf("Load() error = %v, want no source", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("source: [\n"), 0644)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Load() error = %v, want parse failure", err)
	}
}
