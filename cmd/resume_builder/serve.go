package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/session"
)

// janitorInterval is how often idle sessions are pruned
const janitorInterval = 10 * time.Minute

var (
	servePort    int
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for intake, generation, editing, rendering and PDF export.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Serve fallback content instead of calling Gemini")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := cfg.Port
	if servePort != 0 {
		port = servePort
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg, serveOffline, logger)
	if err != nil {
		return err
	}
	defer closeGenerator()

	sessions, closeSessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	photoStore, err := openPhotos(ctx, cfg)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Sessions:  sessions,
		Generator: generator,
		Templates: registry,
		Photos:    photoStore,
		Logger:    logger,
	}
	authorizer, err := newAuthorizer(cfg)
	if err != nil {
		return err
	}
	if authorizer != nil {
		deps.Authorizer = authorizer
		deps.Exporter = newExporter(cfg, logger)
	} else {
		logger.Warn("EXPORT_JWT_SECRET not set; PDF export is disabled")
	}

	srv, err := server.New(server.Config{Port: port}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	var janitor *session.Janitor
	if ttl := time.Duration(cfg.SessionTTL); ttl > 0 {
		janitor = session.NewJanitor(sessions, janitorInterval, ttl, logger)
		janitor.Start(ctx)
		logger.Info("Session janitor started", zap.Duration("ttl", ttl))
	}

	err = srv.Start(ctx)
	stop()
	if janitor != nil {
		janitor.Wait()
	}
	return err
}

