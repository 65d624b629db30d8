package notification

import (
	"context"
	"fmt"
	"net/mail"
)

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// String renders the recipient as an RFC 5322 address
func (r Recipient) String() string {
	if r.Name == "" {
		return r.Address
	}
	return fmt.Sprintf("%s <%s>", r.Name, r.Address)
}

// ParseRecipient parses "Name <addr@example.com>" or a bare address
func ParseRecipient(s string) (Recipient, error) {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return Recipient{}, fmt.Errorf("%w: %q", ErrInvalidRecipient, s)
	}
	return Recipient{Name: addr.Name, Address: addr.Address}, nil
}

// ParseRecipients parses every entry of list
func ParseRecipients(list []string) ([]Recipient, error) {
	out := make([]Recipient, 0, len(list))
	for _, s := range list {
		r, err := ParseRecipient(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SharedSegment is an uploaded segment listed in the email
type SharedSegment struct {
	Name string
	URL  string
	Size int64
}

// ShareRequest contains all the data needed to announce uploaded segments
type ShareRequest struct {
	To         []Recipient     // Primary recipients
	CC         []Recipient     // Carbon copy recipients
	Source     string          // File name of the video the segments were cut from
	Segments   []SharedSegment // In export order
	SenderName string          // Name to sign the email with, may be empty
}

// Validate checks that the request has all required fields
func (r *ShareRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	for _, list := range [][]Recipient{r.To, r.CC} {
		for _, rcpt := range list {
			if rcpt.Address == "" {
				return ErrInvalidRecipient
			}
		}
	}
	if r.Source == "" {
		return ErrNoSource
	}
	if len(r.Segments) == 0 {
		return ErrNoSegments
	}
	for _, seg := range r.Segments {
		if seg.URL == "" {
			return fmt.Errorf("%w: %s", ErrMissingURL, seg.Name)
		}
	}
	return nil
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, req *ShareRequest) error
}
