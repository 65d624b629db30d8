package split

import (
	"errors"
	"testing"
)

func end(iv Interval) int64 {
	if iv.EndMs == nil {
		return -1
	}
	return *iv.EndMs
}

func TestSequence_AddPoint(t *testing.T) {
	s := NewSequence()
	s.AddPoint(30000)
	s.AddPoint(60000)

	got := s.Intervals()
	if len(got) != 2 {
		t.Fatalf("Len() = %d, want 2", len(got))
	}
	if got[0].StartMs != 0 || end(got[0]) != 30000 {
		t.Errorf("interval 0 = {%d,%d}, want {0,30000}", got[0].StartMs, end(got[0]))
	}
	if got[1].StartMs != 30000 || end(got[1]) != 60000 {
		t.Errorf("interval 1 = {%d,%d}, want {30000,60000}", got[1].StartMs, end(got[1]))
	}
	for i, iv := range got {
		if !iv.Selected {
			t.Errorf("interval %d not selected", i)
		}
	}
}

func TestSequence_AddPointKeepsChain(t *testing.T) {
	for k := 1; k <= 12; k++ {
		s := NewSequence()
		for j := 1; j <= k; j++ {
			s.AddPoint(int64(j * 7919))
		}

		got := s.Intervals()
		if len(got) != k {
			t.Fatalf("k=%d: Len() = %d", k, len(got))
		}
		if got[0].StartMs != 0 {
			t.Errorf("k=%d: first start = %d, want 0", k, got[0].StartMs)
		}
		for j := 0; j < k-1; j++ {
			if end(got[j]) != got[j+1].StartMs {
				t.Errorf("k=%d: interval %d end %d != interval %d start %d", k, j, end(got[j]), j+1, got[j+1].StartMs)
			}
		}
	}
}

func TestSequence_AddTail(t *testing.T) {
	s := NewSequence()
	s.AddPoint(30000)

	tail, err := s.AddTail()
	if err != nil {
		t.Fatalf("AddTail() error: %v", err)
	}
	if tail.StartMs != 30000 || tail.HasEnd() {
		t.Errorf("tail = {%d,%d}, want {30000,unset}", tail.StartMs, end(tail))
	}
	if tail.Duration() != 0 {
		t.Errorf("open tail Duration() = %d, want 0", tail.Duration())
	}

	if _, err := s.AddTail(); !errors.Is(err, ErrOpenTail) {
		t.Errorf("second AddTail() error = %v, want ErrOpenTail", err)
	}

	// a new point closes the tail in place
	s.AddPoint(45000)
	got := s.Intervals()
	if len(got) != 2 || got[1].StartMs != 30000 || end(got[1]) != 45000 {
		t.Errorf("after closing tail got %+v", got)
	}
}

func TestSequence_AddTailOnEmpty(t *testing.T) {
	s := NewSequence()
	tail, err := s.AddTail()
	if err != nil {
		t.Fatalf("AddTail() error: %v", err)
	}
	if tail.StartMs != 0 || tail.HasEnd() {
		t.Errorf("tail = %+v, want {0,unset}", tail)
	}
}

func TestSequence_EditBoundary(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		which     Boundary
		text      string
		wantStart []int64
		wantEnd   []int64
	}{
		{
			name:      "end of first propagates to second start",
			index:     0,
			which:     End,
			text:      "00:00:25.000",
			wantStart: []int64{0, 25000, 60000},
			wantEnd:   []int64{25000, 60000, 90000},
		},
		{
			name:      "start of middle propagates to previous end",
			index:     1,
			which:     Start,
			text:      "00:00:35.500",
			wantStart: []int64{0, 35500, 60000},
			wantEnd:   []int64{35500, 60000, 90000},
		},
		{
			name:      "start of first has no neighbour",
			index:     0,
			which:     Start,
			text:      "00:00:01.000",
			wantStart: []int64{1000, 30000, 60000},
			wantEnd:   []int64{30000, 60000, 90000},
		},
		{
			name:      "end of last has no neighbour",
			index:     2,
			which:     End,
			text:      "00:01:40.000",
			wantStart: []int64{0, 30000, 60000},
			wantEnd:   []int64{30000, 60000, 100000},
		},
		{
			name:      "empty end on last clears it",
			index:     2,
			which:     End,
			text:      "",
			wantStart: []int64{0, 30000, 60000},
			wantEnd:   []int64{30000, 60000, -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSequence()
			s.AddPoint(30000)
			s.AddPoint(60000)
			s.AddPoint(90000)

			if err := s.EditBoundary(tt.index, tt.which, tt.text); err != nil {
				t.Fatalf("EditBoundary() error: %v", err)
			}

			for i, iv := range s.Intervals() {
				if iv.StartMs != tt.wantStart[i] {
					t.Errorf("interval %d start = %d, want %d", i, iv.StartMs, tt.wantStart[i])
				}
				if end(iv) != tt.wantEnd[i] {
					t.Errorf("interval %d end = %d, want %d", i, end(iv), tt.wantEnd[i])
				}
			}
		})
	}
}

func TestSequence_EditBoundaryParseErrorLeavesListUnchanged(t *testing.T) {
	s := NewSequence()
	s.AddPoint(30000)
	s.AddPoint(60000)
	before := s.Intervals()

	for _, text := range []string{"abc", "00:00:30", "", "00:61:00.000"} {
		err := s.EditBoundary(0, End, text)
		if !IsParseError(err) {
			t.Errorf("EditBoundary(%q) error = %v, want ParseError", text, err)
		}
	}

	after := s.Intervals()
	for i := range before {
		if before[i].StartMs != after[i].StartMs || end(before[i]) != end(after[i]) {
			t.Errorf("interval %d changed from %+v to %+v", i, before[i], after[i])
		}
	}
}

func TestSequence_IndexOutOfRange(t *testing.T) {
	s := NewSequence()
	s.AddPoint(1000)

	if err := s.EditBoundary(3, Start, "00:00:00.000"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("EditBoundary() error = %v, want ErrIndexOutOfRange", err)
	}
	if err := s.ToggleSelected(-1, false); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("ToggleSelected() error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := s.At(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("At() error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSequence_Selected(t *testing.T) {
	s := NewSequence()
	for _, ms := range []int64{10, 20, 30, 40, 50} {
		s.AddPoint(ms)
	}
	if err := s.ToggleSelected(1, false); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleSelected(3, false); err != nil {
		t.Fatal(err)
	}

	got := s.Selected()
	wantEnds := []int64{10, 30, 50}
	if len(got) != len(wantEnds) {
		t.Fatalf("Selected() len = %d, want %d", len(got), len(wantEnds))
	}
	for i, iv := range got {
		if !iv.Selected {
			t.Errorf("Selected()[%d] not selected", i)
		}
		if end(iv) != wantEnds[i] {
			t.Errorf("Selected()[%d] end = %d, want %d", i, end(iv), wantEnds[i])
		}
	}

	// toggling does not touch neighbours
	all := s.Intervals()
	if all[0].StartMs != 0 || end(all[1]) != 20 || all[2].StartMs != 20 {
		t.Errorf("toggle changed boundaries: %+v", all)
	}
}

func TestSequence_CopiesDoNotAlias(t *testing.T) {
	s := NewSequence()
	s.AddPoint(1000)

	got := s.Intervals()
	*got[0].EndMs = 5

	again, _ := s.At(0)
	if end(again) != 1000 {
		t.Errorf("mutating a returned interval changed the sequence: end = %d", end(again))
	}
}

func TestSequence_Reset(t *testing.T) {
	s := FromIntervals([]Interval{Interval{StartMs: 0, Selected: true}.WithEnd(10)})
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d", s.Len())
	}
}

func TestSequence_AddPointBeforeStartIsRejected(t *testing.T) {
	s := NewSequence()
	if _, err := s.AddPoint(60000); err != nil {
		t.Fatal(err)
	}

	_, err := s.AddPoint(30000)
	if !IsParseError(err) {
		t.Fatalf("AddPoint() error = %v, want ParseError", err)
	}
	got := s.Intervals()
	if len(got) != 1 || got[0].StartMs != 0 || end(got[0]) != 60000 {
		t.Errorf("list changed after rejected point: %+v", got)
	}

	// a point equal to the start makes an empty segment
	if _, err := s.AddPoint(60000); err != nil {
		t.Errorf("AddPoint() at the start error = %v", err)
	}
}

func TestSequence_AddPointBeforeOpenTailStartIsRejected(t *testing.T) {
	s := NewSequence()
	s.AddPoint(30000)
	if _, err := s.AddTail(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddPoint(10000); !IsParseError(err) {
		t.Fatalf("AddPoint() error = %v, want ParseError", err)
	}
	got := s.Intervals()
	if len(got) != 2 || got[1].StartMs != 30000 || got[1].HasEnd() {
		t.Errorf("open tail changed after rejected point: %+v", got)
	}
}

func TestSequence_AddPointKeepsTailSelection(t *testing.T) {
	s := NewSequence()
	s.AddPoint(30000)
	if _, err := s.AddTail(); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleSelected(1, false); err != nil {
		t.Fatal(err)
	}

	iv, err := s.AddPoint(45000)
	if err != nil {
		t.Fatalf("AddPoint() error: %v", err)
	}
	if iv.Selected {
		t.Error("closing a deselected tail selected it")
	}
	if got := s.Selected(); len(got) != 1 || end(got[0]) != 30000 {
		t.Errorf("Selected() = %+v, want only the first segment", got)
	}
}

func TestSequence_SetBoundaryRejectsReversedIntervals(t *testing.T) {
	tests := []struct {
		name  string
		index int
		which Boundary
		ms    int64
	}{
		{"end before own start", 1, End, 20000},
		{"end past next end", 0, End, 90000},
		{"start after own end", 1, Start, 70000},
		{"start before previous start", 2, Start, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSequence()
			s.AddPoint(30000)
			s.AddPoint(60000)
			s.AddPoint(90000)
			before := s.Intervals()

			if err := s.SetBoundary(tt.index, tt.which, tt.ms); !IsParseError(err) {
				t.Fatalf("SetBoundary() error = %v, want ParseError", err)
			}

			after := s.Intervals()
			for i := range before {
				if before[i].StartMs != after[i].StartMs || end(before[i]) != end(after[i]) {
					t.Errorf("interval %d changed from %+v to %+v", i, before[i], after[i])
				}
			}
		})
	}
}

func TestSequence_SetBoundaryAcrossOpenTail(t *testing.T) {
	s := NewSequence()
	s.AddPoint(30000)
	if _, err := s.AddTail(); err != nil {
		t.Fatal(err)
	}

	// the tail has no end to collide with
	if err := s.SetBoundary(0, End, 80000); err != nil {
		t.Fatalf("SetBoundary() error: %v", err)
	}
	for i, iv := range s.Intervals() {
		if iv.HasEnd() && end(iv) < iv.StartMs {
			t.Errorf("interval %d ends before it starts: %+v", i, iv)
		}
	}
}
