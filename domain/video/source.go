package video

import "context"

// Codec pair and container used for every exported segment
const (
	VideoCodec      = "libx264"
	AudioCodec      = "aac"
	OutputExtension = "mp4"
)

// Source is an opened video. It is owned by one caller at a time and must be
// closed on every exit path.
type Source interface {
	// Info returns the probed properties of the video
	Info(ctx context.Context) (Info, error)

	// ExportSegment re-encodes [startMs, endMs) into outputPath
	ExportSegment(ctx context.Context, startMs, endMs int64, outputPath string) error

	// Close releases the video
	Close() error
}

// Opener opens source videos
// This is a port that can be implemented by different infrastructure adapters
type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}

// Prober reads video properties without opening a Source
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// DirCreator creates output directories, including parents
type DirCreator interface {
	EnsureDir(path string) error
}
