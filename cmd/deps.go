package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	appdist "mp4-splitter/application/distribution"
	"mp4-splitter/application/export"
	appnotify "mp4-splitter/application/notification"
	"mp4-splitter/application/session"
	"mp4-splitter/domain/notification"
	"mp4-splitter/domain/video"
	"mp4-splitter/infrastructure/config"
	"mp4-splitter/infrastructure/drive"
	"mp4-splitter/infrastructure/ffmpeg"
	"mp4-splitter/infrastructure/filesystem"
	"mp4-splitter/infrastructure/gmail"
	"mp4-splitter/infrastructure/logging"
	"mp4-splitter/infrastructure/opencv"
	"mp4-splitter/infrastructure/sqlite"
)

// newProber picks the metadata prober named in config
func newProber(c *config.Config) (video.Prober, error) {
	switch c.FFmpeg.ProbeBackend {
	case "", config.ProbeFFprobe:
		timeout := time.Duration(c.FFmpeg.ProbeTimeoutSeconds) * time.Second
		return ffmpeg.NewFFprobe(ffmpeg.WithProbeTimeout(timeout)), nil
	case config.ProbeOpenCV:
		if !opencv.Available() {
			return nil, fmt.Errorf("probe backend %q is not available in this build", c.FFmpeg.ProbeBackend)
		}
		return opencv.NewProber(), nil
	default:
		return nil, fmt.Errorf("unknown probe backend %q", c.FFmpeg.ProbeBackend)
	}
}

// newBackend builds the ffmpeg backend from config
func newBackend(c *config.Config, log *slog.Logger) (*ffmpeg.Backend, error) {
	prober, err := newProber(c)
	if err != nil {
		return nil, err
	}
	return ffmpeg.NewBackend(
		ffmpeg.WithFFmpegPath(c.FFmpeg.Path),
		ffmpeg.WithProber(prober),
		ffmpeg.WithLogger(logging.WithComponent(log, "ffmpeg")),
	), nil
}

// verifyFFmpeg checks that the encoder can be executed before any work starts
func verifyFFmpeg(ctx context.Context, backend *ffmpeg.Backend) error {
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return backend.VerifyInstalled(verifyCtx)
}

// newSession wires a session around an export driver
func newSession(opener video.Opener, log *slog.Logger, opts ...session.Option) *session.Session {
	driver := export.NewDriver(
		opener,
		filesystem.NewChecker(),
		export.WithLogger(logging.WithComponent(log, "export")),
	)
	opts = append([]session.Option{session.WithLogger(logging.WithComponent(log, "session"))}, opts...)
	return session.New(driver, opts...)
}

// openHistory opens the history database, or returns nil when history is disabled
func openHistory(c *config.Config, log *slog.Logger) (*sqlite.DB, error) {
	if !c.History.Enabled || c.History.Database == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.History.Database), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sqlite.New(c.History.Database, logging.WithComponent(log, "history"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// historyOption returns the session option recording into db, if any
func historyOption(db *sqlite.DB) []session.Option {
	if db == nil {
		return nil
	}
	return []session.Option{session.WithHistory(db)}
}

// newUploadService creates a Drive upload service authenticated with OAuth user credentials
func newUploadService(ctx context.Context, c *config.Config, out OutputWriter) (*appdist.UploadService, error) {
	client, err := drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
		CredentialsFile: c.Google.CredentialsFile,
		TokenFile:       c.Google.TokenFile,
		Prompt:          out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
	}
	return appdist.NewUploadService(client, c.Google.FolderID, out), nil
}

// newNotifier creates a Gmail notifier for the configured sender.
// to overrides notify.recipients when not empty.
func newNotifier(ctx context.Context, c *config.Config, to []string, out OutputWriter) (*appnotify.Service, error) {
	recipients, cc, err := notifyRecipients(c, to)
	if err != nil {
		return nil, err
	}
	if c.Notify.FromAddress == "" {
		return nil, fmt.Errorf("notify.from_address is not set; run 'mp4-splitter config set notify.from_address ADDRESS'")
	}

	from := notification.Recipient{Name: c.Notify.FromName, Address: c.Notify.FromAddress}
	client, err := gmail.NewClientWithOAuth(ctx, drive.OAuthConfig{
		CredentialsFile: c.Google.CredentialsFile,
		TokenFile:       c.Notify.TokenFile,
		Prompt:          out,
	}, from)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}
	return appnotify.NewService(client, recipients, cc, c.Notify.FromName), nil
}

// notifyRecipients parses the To and CC lists for a notification
func notifyRecipients(c *config.Config, to []string) ([]notification.Recipient, []notification.Recipient, error) {
	if len(to) == 0 {
		to = c.Notify.Recipients
	}
	if len(to) == 0 {
		return nil, nil, fmt.Errorf("no recipients: set notify.recipients or pass --to")
	}
	recipients, err := notification.ParseRecipients(to)
	if err != nil {
		return nil, nil, err
	}
	cc, err := notification.ParseRecipients(c.Notify.CC)
	if err != nil {
		return nil, nil, err
	}
	return recipients, cc, nil
}

// resolveSource looks a relative source path up in the configured source directory
// when it does not exist relative to the working directory
func resolveSource(c *config.Config, path string) string {
	if path == "" || filepath.IsAbs(path) || c == nil || c.Paths.SourceDirectory == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(c.Paths.SourceDirectory, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// resolveOutput falls back to the configured output directory
func resolveOutput(c *config.Config, dir string) string {
	if dir != "" || c == nil {
		return dir
	}
	return c.Paths.OutputDirectory
}
