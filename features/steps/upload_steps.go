//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appdist "mp4-splitter/application/distribution"
	appnotify "mp4-splitter/application/notification"
	"mp4-splitter/cmd"
	"mp4-splitter/domain/notification"
	"mp4-splitter/infrastructure/drive"
	"mp4-splitter/infrastructure/gmail"

	googledrive "google.golang.org/api/drive/v3"
	googlegmail "google.golang.org/api/gmail/v1"

	"github.com/cucumber/godog"
)

// uploadMockDriveService is a mock implementation for upload testing
type uploadMockDriveService struct {
	files          []*googledrive.File
	uploadedFiles  []*googledrive.File
	permissions    map[string]*googledrive.Permission
	deletedFileIDs []string
	failUploadOf   string
	storageLimit   int64
	storageUsage   int64
	nextFileID     int
}

func newUploadMockDriveService() *uploadMockDriveService {
	return &uploadMockDriveService{
		permissions: make(map[string]*googledrive.Permission),
		nextFileID:  1,
	}
}

func (m *uploadMockDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*googledrive.File, error) {
	// Filter files by name if query contains "name = " (for FindFileByName support)
	if strings.Contains(query, "name = ") {
		start := strings.Index(query, "name = '") + 8
		end := strings.Index(query[start:], "'") + start
		if start > 8 && end > start {
			targetName := query[start:end]
			var result []*googledrive.File
			for _, f := range m.files {
				if f.Name == targetName {
					result = append(result, f)
				}
			}
			return result, nil
		}
	}
	return m.files, nil
}

func (m *uploadMockDriveService) GetAbout(ctx context.Context, fields string) (*googledrive.About, error) {
	return &googledrive.About{
		StorageQuota: &googledrive.AboutStorageQuota{
			Limit: m.storageLimit,
			Usage: m.storageUsage,
		},
	}, nil
}

func (m *uploadMockDriveService) UploadFile(ctx context.Context, fileName, mimeType, folderID, localPath string) (*googledrive.File, error) {
	if fileName == m.failUploadOf {
		return nil, fmt.Errorf("googleapi: Error 500: backend error")
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}

	fileID := fmt.Sprintf("uploaded-file-%d", m.nextFileID)
	m.nextFileID++

	file := &googledrive.File{
		Id:          fileID,
		Name:        fileName,
		MimeType:    mimeType,
		Size:        info.Size(),
		WebViewLink: fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID),
	}

	m.uploadedFiles = append(m.uploadedFiles, file)
	return file, nil
}

func (m *uploadMockDriveService) CreatePermission(ctx context.Context, fileID string, permission *googledrive.Permission) error {
	m.permissions[fileID] = permission
	return nil
}

func (m *uploadMockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	m.deletedFileIDs = append(m.deletedFileIDs, fileID)
	return nil
}

// mockGmailService records sent messages
type mockGmailService struct {
	sent []string
	fail bool
}

func (m *mockGmailService) SendMessage(ctx context.Context, userID string, message *googlegmail.Message) (*googlegmail.Message, error) {
	if m.fail {
		return nil, fmt.Errorf("googleapi: Error 429: rate limit exceeded")
	}
	raw, err := base64.URLEncoding.DecodeString(message.Raw)
	if err != nil {
		return nil, err
	}
	m.sent = append(m.sent, string(raw))
	return &googlegmail.Message{Id: fmt.Sprintf("msg-%d", len(m.sent))}, nil
}

// uploadContext holds test state for upload scenarios
type uploadContext struct {
	tempDir     string
	folderID    string
	mockService *uploadMockDriveService
	mockGmail   *mockGmailService
	files       []string
	output      *bytes.Buffer
	err         error
}

// SharedUploadContext is reset before each scenario via Before hook
var SharedUploadContext *uploadContext

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "upload-test-*")
		if err != nil {
			return c, err
		}
		SharedUploadContext = &uploadContext{
			tempDir:     tempDir,
			mockService: newUploadMockDriveService(),
			mockGmail:   &mockGmailService{},
			output:      &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedUploadContext != nil {
			os.RemoveAll(SharedUploadContext.tempDir)
		}
		SharedUploadContext = nil
		return c, nil
	})

	ctx.Step(`^the Drive folder ID is "([^"]*)"$`, theDriveFolderIDIs)
	ctx.Step(`^I have a segment file "([^"]*)" of (\d+) bytes$`, iHaveASegmentFile)
	ctx.Step(`^the Drive folder already contains "([^"]*)" with ID "([^"]*)"$`, theDriveFolderAlreadyContains)
	ctx.Step(`^the Drive has (\d+) bytes of storage left$`, theDriveHasBytesOfStorageLeft)
	ctx.Step(`^uploading "([^"]*)" will fail$`, uploadingWillFail)
	ctx.Step(`^I upload the segment files$`, iUploadTheSegmentFiles)
	ctx.Step(`^I upload a segment file that does not exist$`, iUploadASegmentFileThatDoesNotExist)
	ctx.Step(`^the upload should succeed$`, theUploadShouldSucceed)
	ctx.Step(`^the upload should fail with "([^"]*)"$`, theUploadShouldFailWith)
	ctx.Step(`^(\d+) files? should be in the Drive folder$`, filesShouldBeInTheDriveFolder)
	ctx.Step(`^every uploaded file should be shared with anyone as reader$`, everyUploadedFileShouldBeShared)
	ctx.Step(`^the file with ID "([^"]*)" should have been deleted$`, theFileWithIDShouldHaveBeenDeleted)
	ctx.Step(`^the upload output should contain "([^"]*)"$`, theUploadOutputShouldContain)
	ctx.Step(`^I upload the segment files and email the links to "([^"]*)"$`, iUploadAndEmailTheLinksTo)
	ctx.Step(`^sending email will fail$`, sendingEmailWillFail)
	ctx.Step(`^an email should have been sent to "([^"]*)"$`, anEmailShouldHaveBeenSentTo)
	ctx.Step(`^the email should contain "([^"]*)"$`, theEmailShouldContain)
	ctx.Step(`^no email should have been sent$`, noEmailShouldHaveBeenSent)
}

func theDriveFolderIDIs(folderID string) error {
	SharedUploadContext.folderID = folderID
	return nil
}

func iHaveASegmentFile(name string, size int) error {
	s := SharedUploadContext
	path := filepath.Join(s.tempDir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0644); err != nil {
		return err
	}
	s.files = append(s.files, path)
	return nil
}

func theDriveFolderAlreadyContains(name, id string) error {
	s := SharedUploadContext
	s.mockService.files = append(s.mockService.files, &googledrive.File{Id: id, Name: name, Size: 10})
	return nil
}

func theDriveHasBytesOfStorageLeft(n int) error {
	s := SharedUploadContext
	s.mockService.storageLimit = 1000000
	s.mockService.storageUsage = 1000000 - int64(n)
	return nil
}

func uploadingWillFail(name string) error {
	SharedUploadContext.mockService.failUploadOf = name
	return nil
}

func (s *uploadContext) run(files []string, notifier cmd.Notifier) error {
	client, err := drive.NewClient(context.Background(), "", drive.WithDriveService(s.mockService))
	if err != nil {
		return err
	}
	service := appdist.NewUploadService(client, s.folderID, s.output)
	s.err = cmd.RunUploadWithDependencies(context.Background(), service, notifier, files, s.output)
	return nil
}

func iUploadTheSegmentFiles() error {
	s := SharedUploadContext
	return s.run(s.files, nil)
}

func iUploadASegmentFileThatDoesNotExist() error {
	s := SharedUploadContext
	return s.run([]string{filepath.Join(s.tempDir, "missing_split_1.mp4")}, nil)
}

func iUploadAndEmailTheLinksTo(address string) error {
	s := SharedUploadContext
	to, err := notification.ParseRecipients([]string{address})
	if err != nil {
		return err
	}
	from := notification.Recipient{Name: "Video Desk", Address: "desk@example.com"}
	sender := gmail.NewClient(from, gmail.WithGmailService(s.mockGmail))
	return s.run(s.files, appnotify.NewService(sender, to, nil, "Video Desk"))
}

func sendingEmailWillFail() error {
	SharedUploadContext.mockGmail.fail = true
	return nil
}

func anEmailShouldHaveBeenSentTo(address string) error {
	s := SharedUploadContext
	if len(s.mockGmail.sent) != 1 {
		return fmt.Errorf("expected 1 email, got %d", len(s.mockGmail.sent))
	}
	header := "To: " + address + "\r\n"
	if !strings.Contains(s.mockGmail.sent[0], header) {
		return fmt.Errorf("expected header %q in:\n%s", header, s.mockGmail.sent[0])
	}
	return nil
}

func theEmailShouldContain(text string) error {
	s := SharedUploadContext
	if len(s.mockGmail.sent) == 0 {
		return fmt.Errorf("no email was sent")
	}
	if !strings.Contains(s.mockGmail.sent[0], text) {
		return fmt.Errorf("expected email to contain %q, got:\n%s", text, s.mockGmail.sent[0])
	}
	return nil
}

func noEmailShouldHaveBeenSent() error {
	if n := len(SharedUploadContext.mockGmail.sent); n != 0 {
		return fmt.Errorf("expected no email, got %d", n)
	}
	return nil
}

func theUploadShouldSucceed() error {
	s := SharedUploadContext
	if s.err != nil {
		return fmt.Errorf("expected success, got: %v\noutput:\n%s", s.err, s.output.String())
	}
	return nil
}

func theUploadShouldFailWith(message string) error {
	s := SharedUploadContext
	if s.err == nil {
		return fmt.Errorf("expected upload to fail with %q", message)
	}
	if !strings.Contains(s.err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, s.err.Error())
	}
	return nil
}

func filesShouldBeInTheDriveFolder(n int) error {
	s := SharedUploadContext
	if len(s.mockService.uploadedFiles) != n {
		return fmt.Errorf("expected %d uploaded files, got %d", n, len(s.mockService.uploadedFiles))
	}
	return nil
}

func everyUploadedFileShouldBeShared() error {
	s := SharedUploadContext
	for _, f := range s.mockService.uploadedFiles {
		perm, ok := s.mockService.permissions[f.Id]
		if !ok {
			return fmt.Errorf("no permission set on %s", f.Name)
		}
		if perm.Type != "anyone" || perm.Role != "reader" {
			return fmt.Errorf("expected anyone/reader on %s, got %s/%s", f.Name, perm.Type, perm.Role)
		}
	}
	return nil
}

func theFileWithIDShouldHaveBeenDeleted(id string) error {
	s := SharedUploadContext
	for _, d := range s.mockService.deletedFileIDs {
		if d == id {
			return nil
		}
	}
	return fmt.Errorf("file %s was not deleted (deleted: %v)", id, s.mockService.deletedFileIDs)
}

func theUploadOutputShouldContain(text string) error {
	s := SharedUploadContext
	if !strings.Contains(s.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, s.output.String())
	}
	return nil
}
