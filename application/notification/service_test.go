package notification

import (
	"context"
	"errors"
	"testing"

	"mp4-splitter/domain/distribution"
	"mp4-splitter/domain/notification"
)

type recordingSender struct {
	requests []*notification.ShareRequest
	err      error
}

func (r *recordingSender) Send(ctx context.Context, req *notification.ShareRequest) error {
	r.requests = append(r.requests, req)
	return r.err
}

func TestService_NotifyUploads(t *testing.T) {
	sender := &recordingSender{}
	to := []notification.Recipient{{Name: "Ann", Address: "ann@example.com"}}
	cc := []notification.Recipient{{Address: "team@example.com"}}
	svc := NewService(sender, to, cc, "Video Desk")

	results := []distribution.UploadResult{
		{FileID: "1", FileName: "talk_split_1.mp4", ShareableURL: "https://drive.google.com/file/d/1/view", Size: 10},
		{FileID: "2", FileName: "talk_split_2.mp4", ShareableURL: "https://drive.google.com/file/d/2/view", Size: 20},
	}

	if err := svc.NotifyUploads(context.Background(), "/videos/talk.mp4", results); err != nil {
		t.Fatalf("NotifyUploads() error = %v", err)
	}

	if len(sender.requests) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.requests))
	}
	req := sender.requests[0]
	if req.Source != "talk.mp4" {
		t.Errorf("Source = %q, want talk.mp4", req.Source)
	}
	if req.SenderName != "Video Desk" {
		t.Errorf("SenderName = %q", req.SenderName)
	}
	if len(req.To) != 1 || req.To[0].Address != "ann@example.com" || len(req.CC) != 1 {
		t.Errorf("unexpected recipients: to=%v cc=%v", req.To, req.CC)
	}
	if len(req.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(req.Segments))
	}
	want := notification.SharedSegment{Name: "talk_split_2.mp4", URL: "https://drive.google.com/file/d/2/view", Size: 20}
	if req.Segments[1] != want {
		t.Errorf("Segments[1] = %+v, want %+v", req.Segments[1], want)
	}
}

func TestService_NotifyUploads_SendError(t *testing.T) {
	sender := &recordingSender{err: notification.ErrSendFailed}
	svc := NewService(sender, []notification.Recipient{{Address: "ann@example.com"}}, nil, "")

	err := svc.NotifyUploads(context.Background(), "talk.mp4", []distribution.UploadResult{{FileName: "a.mp4", ShareableURL: "u"}})
	if !errors.Is(err, notification.ErrSendFailed) {
		t.Fatalf("NotifyUploads() error = %v, want ErrSendFailed", err)
	}
}
