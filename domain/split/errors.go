package split

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when an operation names an interval that does not exist
var ErrIndexOutOfRange = errors.New("split point index out of range")

// ErrOpenTail is returned when a tail is added after an open-ended interval
var ErrOpenTail = errors.New("last split point is already open-ended")

// ParseError reports time text that is not in HH:MM:SS.mmm form
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid time format %q: expected HH:MM:SS.mmm", e.Input)
}

// ConfigurationError reports missing inputs detected before any work starts
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ExportError reports a failure from the decode/encode backend or the filesystem
type ExportError struct {
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExportError) Unwrap() error { return e.Err }

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsExportError reports whether err is or wraps an *ExportError
func IsExportError(err error) bool {
	var e *ExportError
	return errors.As(err, &e)
}
