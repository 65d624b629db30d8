package distribution

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mp4-splitter/domain/distribution"
)

// mockDriveClient is an in-memory Drive folder
type mockDriveClient struct {
	existing   map[string]distribution.FileInfo
	quota      distribution.StorageInfo
	quotaErr   error
	uploadErr  error
	failOnName string
	uploaded   []distribution.UploadRequest
	deleted    []string
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	if f, ok := m.existing[name]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *mockDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if m.uploadErr != nil && (m.failOnName == "" || m.failOnName == req.FileName) {
		return nil, m.uploadErr
	}
	m.uploaded = append(m.uploaded, req)
	return &distribution.UploadResult{
		FileID:       "id-" + req.FileName,
		FileName:     req.FileName,
		ShareableURL: "https://drive.google.com/file/d/id-" + req.FileName + "/view",
	}, nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	m.deleted = append(m.deleted, fileID)
	return nil
}

func (m *mockDriveClient) GetStorageQuota(ctx context.Context) (*distribution.StorageInfo, error) {
	if m.quotaErr != nil {
		return nil, m.quotaErr
	}
	q := m.quota
	return &q, nil
}

func writeSegments(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("0123456789"), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestUploadService_UploadSegments(t *testing.T) {
	paths := writeSegments(t, "clip_split_1.mp4", "clip_split_2.mp4")
	client := &mockDriveClient{
		existing: map[string]distribution.FileInfo{
			"clip_split_2.mp4": {ID: "old-2", Name: "clip_split_2.mp4", Size: 1024},
		},
	}
	var out bytes.Buffer
	svc := NewUploadService(client, "folder", &out)

	results, err := svc.UploadSegments(context.Background(), paths)
	if err != nil {
		t.Fatalf("UploadSegments() error = %v", err)
	}

	if len(results) != 2 || results[1].FileID != "id-clip_split_2.mp4" {
		t.Errorf("results = %+v", results)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "old-2" {
		t.Errorf("deleted = %v, want [old-2]", client.deleted)
	}
	for _, req := range client.uploaded {
		if req.MimeType != distribution.MimeTypeMP4 || req.FolderID != "folder" {
			t.Errorf("request = %+v", req)
		}
	}
	if !strings.Contains(out.String(), "[2/2] Uploading clip_split_2.mp4") || !strings.Contains(out.String(), "Replacing existing") {
		t.Errorf("output = %q", out.String())
	}
}

func TestUploadService_Errors(t *testing.T) {
	ctx := context.Background()
	paths := writeSegments(t, "clip_split_1.mp4", "clip_split_2.mp4")

	tests := []struct {
		name     string
		client   *mockDriveClient
		folder   string
		paths    []string
		wantErr  string
		wantDone int
	}{
		{
			name:    "no folder",
			client:  &mockDriveClient{},
			paths:   paths,
			wantErr: "no Google Drive folder",
		},
		{
			name:    "missing file",
			client:  &mockDriveClient{},
			folder:  "folder",
			paths:   []string{filepath.Join(t.TempDir(), "nope.mp4")},
			wantErr: "file does not exist",
		},
		{
			name:    "quota check fails",
			client:  &mockDriveClient{quotaErr: errors.New("api down")},
			folder:  "folder",
			paths:   paths,
			wantErr: "failed to check storage",
		},
		{
			name:    "not enough space",
			client:  &mockDriveClient{quota: distribution.StorageInfo{TotalBytes: 100, UsedBytes: 95, AvailableBytes: 5}},
			folder:  "folder",
			paths:   paths,
			wantErr: "not enough Drive storage",
		},
		{
			name:     "second upload fails",
			client:   &mockDriveClient{uploadErr: errors.New("503"), failOnName: "clip_split_2.mp4"},
			folder:   "folder",
			paths:    paths,
			wantErr:  "failed to upload and share clip_split_2.mp4",
			wantDone: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUploadService(tt.client, tt.folder, nil)
			results, err := svc.UploadSegments(ctx, tt.paths)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("UploadSegments() error = %v, want %q", err, tt.wantErr)
			}
			if len(results) != tt.wantDone {
				t.Errorf("uploaded %d before failing, want %d", len(results), tt.wantDone)
			}
		})
	}
}
