// Package project reads and writes split sessions as YAML documents so marking
// can be resumed or replayed by the batch command.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mp4-splitter/domain/split"
)

// Document is the on-disk form of a session
type Document struct {
	Source          string  `yaml:"source"`
	OutputDirectory string  `yaml:"output_directory,omitempty"`
	Points          []Point `yaml:"points"`
}

// Point is one interval with HH:MM:SS.mmm times. An empty End means
// "through the end of the video" and is only valid on the last point.
type Point struct {
	Start    string `yaml:"start"`
	End      string `yaml:"end,omitempty"`
	Selected bool   `yaml:"selected"`
}

// FromIntervals builds a document from a session's state
func FromIntervals(source, outputDir string, intervals []split.Interval) Document {
	doc := Document{
		Source:          source,
		OutputDirectory: outputDir,
		Points:          make([]Point, len(intervals)),
	}
	for i, iv := range intervals {
		p := Point{Start: split.FormatTime(iv.StartMs), Selected: iv.Selected}
		if iv.EndMs != nil {
			p.End = split.FormatTime(*iv.EndMs)
		}
		doc.Points[i] = p
	}
	return doc
}

// Intervals parses the points back into a gapless interval list
func (d Document) Intervals() ([]split.Interval, error) {
	intervals := make([]split.Interval, len(d.Points))
	for i, p := range d.Points {
		start, err := split.ParseTime(p.Start)
		if err != nil {
			return nil, fmt.Errorf("point %d start: %w", i+1, err)
		}

		iv := split.Interval{StartMs: start, Selected: p.Selected}
		if p.End != "" {
			end, err := split.ParseTime(p.End)
			if err != nil {
				return nil, fmt.Errorf("point %d end: %w", i+1, err)
			}
			if end < start {
				return nil, fmt.Errorf("point %d ends before it starts", i+1)
			}
			iv = iv.WithEnd(end)
		} else if i != len(d.Points)-1 {
			return nil, fmt.Errorf("point %d has no end; only the last point may be open-ended", i+1)
		}

		if i > 0 && intervals[i-1].EndMs != nil && *intervals[i-1].EndMs != start {
			return nil, fmt.Errorf("point %d does not start where point %d ends", i+1, i)
		}
		intervals[i] = iv
	}
	return intervals, nil
}

// Load reads a project document
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	if doc.Source == "" {
		return nil, fmt.Errorf("project file %s has no source", filepath.Base(path))
	}
	return &doc, nil
}

// Save writes a project document, creating parent directories
func Save(doc Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}
