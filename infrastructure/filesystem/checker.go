package filesystem

import (
	"fmt"
	"os"

	"mp4-splitter/domain/video"
)

// Checker implements video.FileChecker and video.DirCreator using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates path and any missing parents
func (c *Checker) EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Ensure Checker implements the video ports
var (
	_ video.FileChecker = (*Checker)(nil)
	_ video.DirCreator  = (*Checker)(nil)
)
