package split

// Boundary names one end of an interval
type Boundary int

const (
	Start Boundary = iota
	End
)

func (b Boundary) String() string {
	if b == Start {
		return "start"
	}
	return "end"
}

// ParseBoundary accepts "start" or "end"
func ParseBoundary(s string) (Boundary, bool) {
	switch s {
	case "start":
		return Start, true
	case "end":
		return End, true
	}
	return Start, false
}

// Interval is one split point: the half-open range [StartMs, EndMs).
// A nil EndMs means "through the end of the video".
type Interval struct {
	StartMs  int64
	EndMs    *int64
	Selected bool
}

// HasEnd reports whether the end boundary is set
func (i Interval) HasEnd() bool {
	return i.EndMs != nil
}

// Duration returns EndMs - StartMs, or 0 when the end is unset
func (i Interval) Duration() int64 {
	if i.EndMs == nil {
		return 0
	}
	return *i.EndMs - i.StartMs
}

// WithEnd returns a copy of i with the end boundary set to ms
func (i Interval) WithEnd(ms int64) Interval {
	i.EndMs = &ms
	return i
}

// clone detaches the end pointer so copies handed out cannot alias the sequence
func (i Interval) clone() Interval {
	if i.EndMs != nil {
		end := *i.EndMs
		i.EndMs = &end
	}
	return i
}
