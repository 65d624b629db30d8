package split

import (
	"fmt"
	"regexp"
	"strconv"
)

// UnsetTime is what FormatOptional renders for an unset boundary
const UnsetTime = "--:--:--.---"

// timeRegex matches HH:MM:SS.mmm; hours may be wider than two digits
var timeRegex = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})\.(\d{3})$`)

// FormatTime renders milliseconds as HH:MM:SS.mmm
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes%60, seconds%60, ms%1000)
}

// FormatOptional renders an optional boundary, using UnsetTime when nil
func FormatOptional(ms *int64) string {
	if ms == nil {
		return UnsetTime
	}
	return FormatTime(*ms)
}

// ParseTime parses HH:MM:SS.mmm into milliseconds
func ParseTime(s string) (int64, error) {
	matches := timeRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, &ParseError{Input: s}
	}

	hours, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "hours out of range"}
	}
	minutes, _ := strconv.ParseInt(matches[2], 10, 64)
	seconds, _ := strconv.ParseInt(matches[3], 10, 64)
	millis, _ := strconv.ParseInt(matches[4], 10, 64)

	if minutes > 59 {
		return 0, &ParseError{Input: s, Reason: "minutes must be 0-59"}
	}
	if seconds > 59 {
		return 0, &ParseError{Input: s, Reason: "seconds must be 0-59"}
	}

	const maxHours = (1<<63 - 1) / 3_600_000
	if hours > maxHours {
		return 0, &ParseError{Input: s, Reason: "hours out of range"}
	}

	total := hours*3_600_000 + minutes*60_000 + seconds*1000 + millis
	if total < 0 {
		return 0, &ParseError{Input: s, Reason: "hours out of range"}
	}
	return total, nil
}
