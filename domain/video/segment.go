package video

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Segment is one selected interval resolved for export
type Segment struct {
	Index      int // 1-based position among the selected intervals
	StartMs    int64
	EndMs      int64
	OutputName string
	OutputPath string
}

// DurationMs returns the length of the segment
func (s Segment) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

// BaseName returns the source filename without directory or extension
func BaseName(sourcePath string) string {
	name := filepath.Base(sourcePath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// SegmentSourceBase recovers <base> from a <base>_split_<index> file name,
// returning the plain base name when path does not follow that pattern
func SegmentSourceBase(path string) string {
	base := BaseName(path)
	i := strings.LastIndex(base, "_split_")
	if i <= 0 {
		return base
	}
	if _, err := strconv.Atoi(base[i+len("_split_"):]); err != nil {
		return base
	}
	return base[:i]
}

// SegmentFilename returns <base>_split_<index>.mp4
func SegmentFilename(base string, index int) string {
	return fmt.Sprintf("%s_split_%d.%s", base, index, OutputExtension)
}

// NewSegment builds the segment for the index-th selected interval
func NewSegment(sourcePath, outputDir string, index int, startMs, endMs int64) Segment {
	name := SegmentFilename(BaseName(sourcePath), index)
	return Segment{
		Index:      index,
		StartMs:    startMs,
		EndMs:      endMs,
		OutputName: name,
		OutputPath: filepath.Join(outputDir, name),
	}
}
