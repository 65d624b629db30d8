package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"mp4-splitter/domain/video"
)

// ErrClosed is returned when a Source is used after Close
var ErrClosed = errors.New("video source is closed")

// Backend implements video.Opener using ffprobe for metadata and ffmpeg for encoding
type Backend struct {
	ffmpegPath string
	runner     CommandRunner
	prober     video.Prober
	logger     *slog.Logger
}

// BackendOption is a functional option for configuring Backend
type BackendOption func(*Backend)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) BackendOption {
	return func(b *Backend) {
		if path != "" {
			b.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) BackendOption {
	return func(b *Backend) {
		b.runner = runner
	}
}

// WithProber replaces the metadata prober
func WithProber(p video.Prober) BackendOption {
	return func(b *Backend) {
		b.prober = p
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *slog.Logger) BackendOption {
	return func(b *Backend) {
		b.logger = l
	}
}

// NewBackend creates a new ffmpeg backend
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.prober == nil {
		b.prober = NewFFprobe()
	}

	return b
}

// Open implements video.Opener
func (b *Backend) Open(ctx context.Context, path string) (video.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source video does not exist: %s", path)
	}

	info, err := b.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("opened video", "path", path, "duration_ms", info.DurationMs, "resolution", info.Resolution())
	return &Source{backend: b, path: path, info: info}, nil
}

// VerifyInstalled checks that ffmpeg is available
func (b *Backend) VerifyInstalled(ctx context.Context) error {
	_, err := b.runner.Output(ctx, b.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Source is an opened video backed by ffmpeg
type Source struct {
	backend *Backend
	path    string
	info    video.Info
	closed  bool
}

// Info implements video.Source
func (s *Source) Info(ctx context.Context) (video.Info, error) {
	if s.closed {
		return video.Info{}, ErrClosed
	}
	return s.info, nil
}

// ExportSegment implements video.Source. The interval's audio is first written
// to a temporary file next to the output, then muxed with the re-encoded video.
// The temporary file is removed only when both steps succeed. A source that
// turns out to have no audio stream is encoded video only from then on.
func (s *Source) ExportSegment(ctx context.Context, startMs, endMs int64, outputPath string) error {
	if s.closed {
		return ErrClosed
	}

	b := s.backend
	if !s.info.HasAudio {
		return s.exportVideoOnly(ctx, startMs, endMs, outputPath)
	}

	tempAudio := TempAudioPath(outputPath)
	if err := b.runner.Run(ctx, b.ffmpegPath, AudioArgs(s.path, startMs, endMs, tempAudio)...); err != nil {
		if !isNoStream(err) {
			return fmt.Errorf("ffmpeg audio extraction failed: %w", err)
		}
		b.logger.Info("source has no audio stream, encoding video only", "source", s.path)
		s.info.HasAudio = false
		_ = os.Remove(tempAudio)
		return s.exportVideoOnly(ctx, startMs, endMs, outputPath)
	}

	if err := b.runner.Run(ctx, b.ffmpegPath, EncodeArgs(s.path, tempAudio, startMs, endMs, outputPath)...); err != nil {
		return fmt.Errorf("ffmpeg encode failed: %w", err)
	}

	if err := os.Remove(tempAudio); err != nil && !os.IsNotExist(err) {
		b.logger.Warn("failed to remove temporary audio", "path", tempAudio, "error", err)
	}
	return nil
}

func (s *Source) exportVideoOnly(ctx context.Context, startMs, endMs int64, outputPath string) error {
	b := s.backend
	if err := b.runner.Run(ctx, b.ffmpegPath, VideoOnlyArgs(s.path, startMs, endMs, outputPath)...); err != nil {
		return fmt.Errorf("ffmpeg encode failed: %w", err)
	}
	return nil
}

// isNoStream reports whether ffmpeg refused to write an output because the
// input had no stream to map into it, as with -vn on a silent video.
func isNoStream(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not contain any stream") ||
		strings.Contains(msg, "matches no streams")
}

// Close implements video.Source
func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Seconds converts milliseconds to the seconds notation ffmpeg accepts, e.g. 30.000
func Seconds(ms int64) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

// TempAudioPath returns the transient audio file used while exporting outputPath
func TempAudioPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	stem := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	return filepath.Join(dir, stem+".temp_audio.m4a")
}

func interval(src string, startMs, endMs int64) *ffmpeggo.Stream {
	return ffmpeggo.Input(src, ffmpeggo.KwArgs{
		"ss": Seconds(startMs),
		"to": Seconds(endMs),
	})
}

// AudioArgs builds the ffmpeg arguments extracting [startMs, endMs) audio to out
func AudioArgs(src string, startMs, endMs int64, out string) []string {
	return interval(src, startMs, endMs).
		Output(out, ffmpeggo.KwArgs{
			"vn":  "",
			"c:a": video.AudioCodec,
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// EncodeArgs builds the ffmpeg arguments re-encoding [startMs, endMs) video and
// muxing the previously extracted audio into out
func EncodeArgs(src, audio string, startMs, endMs int64, out string) []string {
	in := interval(src, startMs, endMs)
	aud := ffmpeggo.Input(audio)
	return ffmpeggo.Output([]*ffmpeggo.Stream{in.Video(), aud.Audio()}, out, ffmpeggo.KwArgs{
		"c:v":      video.VideoCodec,
		"c:a":      "copy",
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
	}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// VideoOnlyArgs builds the ffmpeg arguments for a source without audio
func VideoOnlyArgs(src string, startMs, endMs int64, out string) []string {
	return interval(src, startMs, endMs).
		Output(out, ffmpeggo.KwArgs{
			"an":       "",
			"c:v":      video.VideoCodec,
			"pix_fmt":  "yuv420p",
			"movflags": "+faststart",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		OverWriteOutput().
		GetArgs()
}

// Ensure Backend implements video.Opener and Source implements video.Source
var (
	_ video.Opener = (*Backend)(nil)
	_ video.Source = (*Source)(nil)
)
