package distribution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mp4-splitter/domain/distribution"
)

// ErrNoFolder is returned when no Drive folder is configured
var ErrNoFolder = errors.New("no Google Drive folder configured (google.folder_id)")

// UploadService handles file upload operations to Google Drive
type UploadService struct {
	driveClient distribution.DriveClient
	folderID    string
	output      io.Writer
}

// NewUploadService creates a new upload service
func NewUploadService(client distribution.DriveClient, folderID string, output io.Writer) *UploadService {
	if output == nil {
		output = io.Discard
	}
	return &UploadService{
		driveClient: client,
		folderID:    folderID,
		output:      output,
	}
}

// UploadSegments uploads every file in order after checking the quota can hold
// all of them. It stops at the first failure and returns what was uploaded so far.
func (s *UploadService) UploadSegments(ctx context.Context, paths []string) ([]distribution.UploadResult, error) {
	if s.folderID == "" {
		return nil, ErrNoFolder
	}

	var total int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("file does not exist: %s", p)
		}
		total += info.Size()
	}

	storage, err := s.driveClient.GetStorageQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage: %w", err)
	}
	if !storage.HasSpaceFor(total) {
		return nil, fmt.Errorf("not enough Drive storage: need %.1f MB, %.1f MB available",
			float64(total)/1024/1024, float64(storage.AvailableBytes)/1024/1024)
	}

	results := make([]distribution.UploadResult, 0, len(paths))
	for i, p := range paths {
		fmt.Fprintf(s.output, "[%d/%d] Uploading %s...\n", i+1, len(paths), filepath.Base(p))
		result, err := s.UploadSegment(ctx, p)
		if err != nil {
			return results, err
		}
		fmt.Fprintf(s.output, "      %s\n", result.ShareableURL)
		results = append(results, *result)
	}
	return results, nil
}

// UploadSegment uploads one video file, replacing a same-named file in the folder
func (s *UploadService) UploadSegment(ctx context.Context, filePath string) (*distribution.UploadResult, error) {
	if s.folderID == "" {
		return nil, ErrNoFolder
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	fileName := filepath.Base(filePath)

	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		fmt.Fprintf(s.output, "      Replacing existing %s (%.1f MB)\n", existing.Name, float64(existing.Size)/1024/1024)
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	req := distribution.UploadRequest{
		LocalPath: filePath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  distribution.MimeTypeMP4,
	}

	result, err := s.driveClient.UploadAndShare(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}

	return result, nil
}
