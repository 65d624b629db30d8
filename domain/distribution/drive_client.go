package distribution

import "context"

// DriveClient defines the interface for Google Drive operations
// This is a port that can be implemented by different infrastructure adapters
type DriveClient interface {
	// FindFileByName returns the file with the given name in a folder, or nil
	FindFileByName(ctx context.Context, folderID, name string) (*FileInfo, error)

	// UploadAndShare uploads a file and grants "anyone with the link" read access
	UploadAndShare(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// DeletePermanently deletes a file permanently (bypasses trash)
	DeletePermanently(ctx context.Context, fileID string) error

	// GetStorageQuota returns the current storage quota information
	GetStorageQuota(ctx context.Context) (*StorageInfo, error)
}

// FileInfo represents metadata about a file in Google Drive
type FileInfo struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}
