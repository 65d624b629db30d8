package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mp4-splitter/infrastructure/api"
	"mp4-splitter/infrastructure/logging"

	"github.com/spf13/cobra"
)

// Version is reported by the health endpoint
var Version = "dev"

var (
	serveSource string
	serveOutput string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API for a splitting session",
	Long: `Serve a single splitting session over HTTP on server.host:server.port.

Endpoints:
  GET   /health
  GET   /history
  GET   /session
  POST  /session/video
  POST  /session/output
  POST  /session/points
  POST  /session/tail
  PATCH /session/points/{index}
  PUT   /session/points/{index}/selected
  POST  /session/export
  GET   /session/preview

Example:
  mp4-splitter serve --source talk.mp4 --output out`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveSource, "source", "", "Video to load at startup")
	serveCmd.Flags().StringVar(&serveOutput, "output", "", "Output directory (defaults to paths.output_directory)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	log := GetLogger()

	backend, err := newBackend(c, log)
	if err != nil {
		return err
	}
	if err := verifyFFmpeg(cmd.Context(), backend); err != nil {
		return err
	}

	db, err := openHistory(c, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	sess := newSession(backend, log, historyOption(db)...)
	if out := resolveOutput(c, serveOutput); out != "" {
		sess.SetOutputDir(out)
	}
	if serveSource != "" {
		if _, err := sess.LoadVideo(cmd.Context(), resolveSource(c, serveSource)); err != nil {
			return fmt.Errorf("failed to load video: %w", err)
		}
	}

	srvCfg := api.ServerConfig{
		Addr:      c.Server.Addr(),
		Session:   sess,
		Logger:    logging.WithComponent(log, "api"),
		StartTime: time.Now(),
		Version:   Version,
	}
	if db != nil {
		srvCfg.History = db
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Fprintf(os.Stdout, "Listening on http://%s\n", srvCfg.Addr)
	return RunServeWithDependencies(cmd.Context(), api.NewServer(srvCfg), sigCh, log)
}

// Server is the part of the HTTP API server the serve command drives
type Server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// RunServeWithDependencies runs the server until it fails, ctx ends, or a signal arrives
func RunServeWithDependencies(ctx context.Context, server Server, sigCh <-chan os.Signal, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
	}

	log.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	<-errCh
	log.Info("shutdown complete")
	return nil
}
