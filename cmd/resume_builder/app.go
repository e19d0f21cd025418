package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/generation"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/photos"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/templates"
	"github.com/jonathan/resume-builder/internal/types"
)

// loadConfig layers the defaults, the optional config file and the environment
func loadConfig(path string, getenv func(string) string) (config.Config, error) {
	result := config.Default()
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		result = fileCfg.MergeWithDefaults(result)
	}
	if err := result.ApplyEnv(getenv); err != nil {
		return config.Config{}, err
	}
	if err := result.Validate(); err != nil {
		return config.Config{}, err
	}
	return result, nil
}

// loadRegistry builds the template registry from the configured catalog,
// or the embedded one
func loadRegistry(c config.Config) (*templates.Registry, error) {
	var catalog *templates.Catalog
	if c.TemplateCatalog != "" {
		loaded, err := templates.LoadCatalog(c.TemplateCatalog)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	return templates.NewRegistry(catalog)
}

// offlineBackend returns an empty response, so every generation uses the
// deterministic fallback document
var offlineBackend = llm.CompleterFunc(func(context.Context, string) (string, error) {
	return "", nil
})

// newGenerator connects the Gemini backend. With offline set no backend is
// contacted. The returned cleanup must be called when done.
func newGenerator(ctx context.Context, c config.Config, offline bool, log *zap.Logger) (*generation.Generator, func(), error) {
	if offline {
		log.Info("Generating offline; content comes from the fallback document")
		return generation.New(offlineBackend, generation.WithLogger(log)), func() {}, nil
	}
	if c.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required (or use --offline)")
	}

	llmConfig := llm.DefaultConfig()
	if c.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, c.Model)
	}
	client, err := llm.NewClient(ctx, llmConfig, c.APIKey)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("Failed to close LLM client", zap.Error(err))
		}
	}
	return generation.New(client, generation.WithLogger(log)), cleanup, nil
}

// openSessions returns a PostgreSQL store when a database is configured,
// otherwise an in-memory one
func openSessions(ctx context.Context, c config.Config, log *zap.Logger) (session.Store, func(), error) {
	if c.DatabaseURL == "" {
		log.Info("No DATABASE_URL set; sessions are kept in memory")
		return session.NewMemoryStore(), func() {}, nil
	}

	database, err := db.Connect(ctx, c.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	return session.NewPostgresStore(database), database.Close, nil
}

// openPhotos returns the S3 store when a bucket is configured, otherwise a
// local directory store
func openPhotos(ctx context.Context, c config.Config) (photos.Store, error) {
	if c.PhotoS3Bucket != "" {
		return photos.NewS3Store(ctx, c.AWSRegion, c.PhotoS3Bucket, c.PhotoS3Prefix)
	}
	if c.PhotoDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(c.PhotoDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return photos.NewLocalStore(c.PhotoDir), nil
}

// newAuthorizer returns nil when no export secret is configured, which
// leaves the export route disabled
func newAuthorizer(c config.Config) (*server.JWTAuthorizer, error) {
	if c.ExportJWTSecret == "" {
		return nil, nil
	}
	jwtConfig, err := config.NewJWTConfig(c.ExportJWTSecret, c.ExportTokenHours)
	if err != nil {
		return nil, err
	}
	return server.NewJWTAuthorizer(jwtConfig), nil
}

// newExporter builds the headless Chrome PDF exporter
func newExporter(c config.Config, log *zap.Logger) *export.ChromeExporter {
	opts := []export.Option{export.WithLogger(log)}
	if c.ChromePath != "" {
		opts = append(opts, export.WithExecPath(c.ChromePath))
	}
	return export.NewChromeExporter(opts...)
}

// readJSONFile decodes the JSON file at path into v
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// readResumeFile loads a GeneratedResume file and runs its content through
// the same shape gate as backend output
func readResumeFile(path string) (*types.GeneratedResume, error) {
	var raw struct {
		Content    json.RawMessage `json:"content"`
		TemplateID string          `json:"template_id"`
	}
	if err := readJSONFile(path, &raw); err != nil {
		return nil, err
	}
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return nil, fmt.Errorf("invalid resume %s: missing content", path)
	}
	if err := schemas.ValidateDocument(raw.Content); err != nil {
		return nil, fmt.Errorf("invalid resume %s: %w", path, err)
	}

	resume := &types.GeneratedResume{TemplateID: raw.TemplateID}
	if err := json.Unmarshal(raw.Content, &resume.Content); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := resume.Content.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resume %s: %w", path, err)
	}
	return resume, nil
}

// writeJSONFile writes v as indented JSON, creating parent directories
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
