package notification

import "errors"

var (
	// ErrNoRecipients is returned when no To recipients are provided
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrInvalidRecipient is returned when a recipient has no usable email address
	ErrInvalidRecipient = errors.New("recipient must have an email address")

	// ErrNoSource is returned when the source video name is missing
	ErrNoSource = errors.New("source video name is required")

	// ErrNoSegments is returned when there is nothing to announce
	ErrNoSegments = errors.New("at least one uploaded segment is required")

	// ErrMissingURL is returned when a segment has no shareable URL
	ErrMissingURL = errors.New("segment has no shareable URL")

	// ErrSendFailed is returned when the email fails to send
	ErrSendFailed = errors.New("failed to send email")
)
