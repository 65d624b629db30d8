package cmd

import (
	"fmt"

	"mp4-splitter/domain/video"
)

// consoleObserver prints export notifications as step lines.
// The driver announces a segment before reporting progress, so the line is
// written once the total is known.
type consoleObserver struct {
	out     OutputWriter
	pending string
}

func newConsoleObserver(out OutputWriter) *consoleObserver {
	return &consoleObserver{out: out}
}

func (c *consoleObserver) SegmentStarted(index int, filename string) {
	c.pending = filename
}

func (c *consoleObserver) Progress(done, total int) {
	if done >= total || c.pending == "" {
		return
	}
	fmt.Fprintf(c.out, "[%d/%d] Exporting %s...\n", done+1, total, c.pending)
	c.pending = ""
}

func (c *consoleObserver) Completed() {
	fmt.Fprintln(c.out, "Export complete!")
}

func (c *consoleObserver) Error(message string) {
	fmt.Fprintf(c.out, "Export failed: %s\n", message)
}

var _ video.Observer = (*consoleObserver)(nil)
