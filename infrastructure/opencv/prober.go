//go:build opencv

package opencv

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"gocv.io/x/gocv"

	"mp4-splitter/domain/video"
)

// Prober implements video.Prober by reading container metadata through OpenCV
type Prober struct{}

// NewProber creates an OpenCV-backed prober
func NewProber() *Prober {
	return &Prober{}
}

// Probe implements video.Prober
func (p *Prober) Probe(ctx context.Context, path string) (video.Info, error) {
	if err := ctx.Err(); err != nil {
		return video.Info{}, err
	}

	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return video.Info{}, fmt.Errorf("failed to open video %s: %w", filepath.Base(path), err)
	}
	defer vc.Close()

	frames := vc.Get(gocv.VideoCaptureFrameCount)
	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 || frames <= 0 {
		return video.Info{}, fmt.Errorf("could not determine duration of %s", filepath.Base(path))
	}

	// OpenCV does not expose audio streams; assume one is present and let the
	// encoder fall back to video only when extraction finds none
	return video.Info{
		DurationMs: int64(math.Round(frames / fps * 1000)),
		Width:      int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        fps,
		Filename:   filepath.Base(path),
		HasAudio:   true,
	}, nil
}

// Available reports whether this build includes OpenCV support
func Available() bool {
	return true
}

// Ensure Prober implements video.Prober
var _ video.Prober = (*Prober)(nil)
