package notification

import (
	"context"
	"path/filepath"

	"mp4-splitter/domain/distribution"
	"mp4-splitter/domain/notification"
)

// Service emails the shareable links of uploaded segments
type Service struct {
	sender     notification.EmailSender
	to         []notification.Recipient
	cc         []notification.Recipient
	senderName string
}

// NewService creates a new notification service sending to fixed recipients
func NewService(sender notification.EmailSender, to, cc []notification.Recipient, senderName string) *Service {
	return &Service{
		sender:     sender,
		to:         to,
		cc:         cc,
		senderName: senderName,
	}
}

// NotifyUploads announces results, in order, as segments cut from source
func (s *Service) NotifyUploads(ctx context.Context, source string, results []distribution.UploadResult) error {
	segments := make([]notification.SharedSegment, len(results))
	for i, r := range results {
		segments[i] = notification.SharedSegment{Name: r.FileName, URL: r.ShareableURL, Size: r.Size}
	}

	return s.sender.Send(ctx, &notification.ShareRequest{
		To:         s.to,
		CC:         s.cc,
		Source:     filepath.Base(source),
		Segments:   segments,
		SenderName: s.senderName,
	})
}
