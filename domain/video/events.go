package video

import "fmt"

// EventKind names a notification
type EventKind string

const (
	EventSegmentStarted EventKind = "segment_started"
	EventProgress       EventKind = "progress"
	EventCompleted      EventKind = "completed"
	EventError          EventKind = "error"
)

// Event is one recorded notification
type Event struct {
	Kind     EventKind `json:"kind" yaml:"kind"`
	Index    int       `json:"index,omitempty" yaml:"index,omitempty"`
	Filename string    `json:"filename,omitempty" yaml:"filename,omitempty"`
	Done     int       `json:"done,omitempty" yaml:"done,omitempty"`
	Total    int       `json:"total,omitempty" yaml:"total,omitempty"`
	Message  string    `json:"message,omitempty" yaml:"message,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventSegmentStarted:
		return fmt.Sprintf("SegmentStarted(%d,%s)", e.Index, e.Filename)
	case EventProgress:
		return fmt.Sprintf("Progress(%d,%d)", e.Done, e.Total)
	case EventCompleted:
		return "Completed()"
	case EventError:
		return fmt.Sprintf("Error(%s)", e.Message)
	}
	return string(e.Kind)
}

// Recorder is an Observer that keeps every notification in order
type Recorder struct {
	Events []Event
}

func (r *Recorder) SegmentStarted(index int, filename string) {
	r.Events = append(r.Events, Event{Kind: EventSegmentStarted, Index: index, Filename: filename})
}

func (r *Recorder) Progress(done, total int) {
	r.Events = append(r.Events, Event{Kind: EventProgress, Done: done, Total: total})
}

func (r *Recorder) Completed() {
	r.Events = append(r.Events, Event{Kind: EventCompleted})
}

func (r *Recorder) Error(message string) {
	r.Events = append(r.Events, Event{Kind: EventError, Message: message})
}

// Strings renders the recorded events, e.g. "Progress(0,2)"
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.String()
	}
	return out
}

var _ Observer = (*Recorder)(nil)
