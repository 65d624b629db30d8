//go:build !opencv

package opencv

import (
	"context"
	"errors"

	"mp4-splitter/domain/video"
)

// Prober is a stub when OpenCV is not available
type Prober struct{}

// NewProber creates a stub prober (requires building with -tags=opencv)
func NewProber() *Prober {
	return &Prober{}
}

// Probe returns an error indicating OpenCV probing is not available
func (p *Prober) Probe(ctx context.Context, path string) (video.Info, error) {
	return video.Info{}, errors.New("opencv probing requires -tags=opencv build and OpenCV installed")
}

// Available reports whether this build includes OpenCV support
func Available() bool {
	return false
}

// Ensure Prober implements video.Prober
var _ video.Prober = (*Prober)(nil)
