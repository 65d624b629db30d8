package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"mp4-splitter/domain/video"
)

// DefaultProbeTimeout bounds a single ffprobe call
const DefaultProbeTimeout = 30 * time.Second

// ProbeFunc runs ffprobe and returns its JSON output
type ProbeFunc func(path string, timeout time.Duration) (string, error)

// FFprobe implements video.Prober with ffprobe
type FFprobe struct {
	timeout time.Duration
	probe   ProbeFunc
}

// FFprobeOption is a functional option for configuring FFprobe
type FFprobeOption func(*FFprobe)

// WithProbeTimeout sets the per-call timeout
func WithProbeTimeout(d time.Duration) FFprobeOption {
	return func(p *FFprobe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeFunc replaces the ffprobe invocation (for testing)
func WithProbeFunc(fn ProbeFunc) FFprobeOption {
	return func(p *FFprobe) {
		p.probe = fn
	}
}

// NewFFprobe creates a new ffprobe-based prober
func NewFFprobe(opts ...FFprobeOption) *FFprobe {
	p := &FFprobe{
		timeout: DefaultProbeTimeout,
		probe: func(path string, timeout time.Duration) (string, error) {
			return ffmpeggo.ProbeWithTimeout(path, timeout, ffmpeggo.KwArgs{})
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe implements video.Prober
func (p *FFprobe) Probe(ctx context.Context, path string) (video.Info, error) {
	if err := ctx.Err(); err != nil {
		return video.Info{}, err
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	out, err := p.probe(path, timeout)
	if err != nil {
		return video.Info{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return ParseProbeOutput([]byte(out), path)
}

// probeOutput is the subset of `ffprobe -show_format -show_streams -of json` we read
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

// ParseProbeOutput converts ffprobe JSON into a video.Info
func ParseProbeOutput(data []byte, path string) (video.Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return video.Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var vs *probeStream
	hasAudio := false
	for i := range out.Streams {
		switch out.Streams[i].CodecType {
		case "video":
			if vs == nil {
				vs = &out.Streams[i]
			}
		case "audio":
			hasAudio = true
		}
	}
	if vs == nil {
		return video.Info{}, fmt.Errorf("no video stream found in %s", filepath.Base(path))
	}

	seconds, ok := parseSeconds(out.Format.Duration)
	if !ok {
		seconds, ok = parseSeconds(vs.Duration)
	}
	if !ok {
		return video.Info{}, fmt.Errorf("could not determine duration of %s", filepath.Base(path))
	}

	fps := parseRate(vs.AvgFrameRate)
	if fps == 0 {
		fps = parseRate(vs.RFrameRate)
	}

	return video.Info{
		DurationMs: int64(math.Round(seconds * 1000)),
		Width:      vs.Width,
		Height:     vs.Height,
		FPS:        fps,
		Filename:   filepath.Base(path),
		HasAudio:   hasAudio,
	}, nil
}

func parseSeconds(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseRate reads ffprobe rationals such as "30000/1001"
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// Ensure FFprobe implements video.Prober
var _ video.Prober = (*FFprobe)(nil)
