package video

import (
	"fmt"

	"mp4-splitter/domain/split"
)

// Info is a read-only snapshot of a source video's properties
type Info struct {
	DurationMs int64
	Width      int
	Height     int
	FPS        float64
	Filename   string
	HasAudio   bool
}

// Resolution returns WIDTHxHEIGHT
func (i Info) Resolution() string {
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// String renders the summary line shown after a video is loaded
func (i Info) String() string {
	return fmt.Sprintf("%s (%s, %s)", i.Filename, i.Resolution(), split.FormatTime(i.DurationMs))
}
