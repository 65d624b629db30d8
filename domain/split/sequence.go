package split

import "fmt"

// Sequence holds the ordered, gapless list of split points for one video.
// Consecutive intervals share a boundary whenever both ends are set.
type Sequence struct {
	intervals []Interval
}

// NewSequence creates an empty sequence
func NewSequence() *Sequence {
	return &Sequence{}
}

// FromIntervals builds a sequence from previously saved intervals
func FromIntervals(intervals []Interval) *Sequence {
	s := &Sequence{intervals: make([]Interval, 0, len(intervals))}
	for _, iv := range intervals {
		s.intervals = append(s.intervals, iv.clone())
	}
	return s
}

// Len returns the number of intervals
func (s *Sequence) Len() int {
	return len(s.intervals)
}

// Reset discards every interval
func (s *Sequence) Reset() {
	s.intervals = nil
}

// Intervals returns a copy of all intervals in order
func (s *Sequence) Intervals() []Interval {
	out := make([]Interval, len(s.intervals))
	for i, iv := range s.intervals {
		out[i] = iv.clone()
	}
	return out
}

// At returns a copy of the interval at index
func (s *Sequence) At(index int) (Interval, error) {
	if err := s.checkIndex(index); err != nil {
		return Interval{}, err
	}
	return s.intervals[index].clone(), nil
}

// AddPoint closes a new segment at timestampMs. The first segment starts at 0;
// later ones start where the previous segment ends. A point before that start
// is a ParseError and leaves the list unchanged.
func (s *Sequence) AddPoint(timestampMs int64) (Interval, error) {
	var start int64
	selected := true
	closesTail := false
	if n := len(s.intervals); n > 0 {
		prev := s.intervals[n-1]
		if prev.EndMs != nil {
			start = *prev.EndMs
		} else {
			// an open tail is closed by the new point rather than chained after it
			start = prev.StartMs
			selected = prev.Selected
			closesTail = true
		}
	}
	if timestampMs < start {
		return Interval{}, outOfOrder(timestampMs, "before the segment start "+FormatTime(start))
	}

	if closesTail {
		s.intervals = s.intervals[:len(s.intervals)-1]
	}
	iv := Interval{StartMs: start, Selected: selected}.WithEnd(timestampMs)
	s.intervals = append(s.intervals, iv)
	return iv.clone(), nil
}

// AddTail appends an open-ended interval running to the end of the video
func (s *Sequence) AddTail() (Interval, error) {
	var start int64
	if n := len(s.intervals); n > 0 {
		prev := s.intervals[n-1]
		if prev.EndMs == nil {
			return Interval{}, ErrOpenTail
		}
		start = *prev.EndMs
	}

	iv := Interval{StartMs: start, Selected: true}
	s.intervals = append(s.intervals, iv)
	return iv, nil
}

// EditBoundary parses text and applies it with SetBoundary. An empty text on
// the end of the last interval clears it. On a parse failure nothing changes.
func (s *Sequence) EditBoundary(index int, which Boundary, text string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	if text == "" && which == End && index == len(s.intervals)-1 {
		s.intervals[index].EndMs = nil
		return nil
	}

	ms, err := ParseTime(text)
	if err != nil {
		return err
	}
	return s.SetBoundary(index, which, ms)
}

// SetBoundary sets one boundary and the matching boundary of the neighbour.
// A value that would leave either interval ending before it starts is a
// ParseError and nothing changes.
func (s *Sequence) SetBoundary(index int, which Boundary, ms int64) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if ms < 0 {
		return &ParseError{Input: fmt.Sprint(ms), Reason: "must not be negative"}
	}

	cur := s.intervals[index]
	switch which {
	case Start:
		if cur.EndMs != nil && ms > *cur.EndMs {
			return outOfOrder(ms, "after the segment end "+FormatTime(*cur.EndMs))
		}
		if index > 0 && ms < s.intervals[index-1].StartMs {
			return outOfOrder(ms, "before the previous segment start "+FormatTime(s.intervals[index-1].StartMs))
		}
		s.intervals[index].StartMs = ms
		if index > 0 {
			s.intervals[index-1] = s.intervals[index-1].WithEnd(ms)
		}
	case End:
		if ms < cur.StartMs {
			return outOfOrder(ms, "before the segment start "+FormatTime(cur.StartMs))
		}
		if index < len(s.intervals)-1 {
			if next := s.intervals[index+1]; next.EndMs != nil && ms > *next.EndMs {
				return outOfOrder(ms, "after the next segment end "+FormatTime(*next.EndMs))
			}
		}
		s.intervals[index] = cur.WithEnd(ms)
		if index < len(s.intervals)-1 {
			s.intervals[index+1].StartMs = ms
		}
	}
	return nil
}

// ToggleSelected sets the selected flag on one interval
func (s *Sequence) ToggleSelected(index int, value bool) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.intervals[index].Selected = value
	return nil
}

// Selected returns the selected intervals in their original order
func (s *Sequence) Selected() []Interval {
	var out []Interval
	for _, iv := range s.intervals {
		if iv.Selected {
			out = append(out, iv.clone())
		}
	}
	return out
}

func (s *Sequence) checkIndex(index int) error {
	if index < 0 || index >= len(s.intervals) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.intervals))
	}
	return nil
}

func outOfOrder(ms int64, reason string) *ParseError {
	return &ParseError{Input: FormatTime(ms), Reason: "is " + reason}
}
