package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"database_url": "postgres://localhost/resumes",
		"model": "gemini-1.5-pro",
		"photo_s3_bucket": "resume-photos",
		"aws_region": "eu-central-1",
		"session_ttl": "90m",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/resumes", cfg.DatabaseURL)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	assert.Equal(t, "resume-photos", cfg.PhotoS3Bucket)
	assert.Equal(t, Duration(90*time.Minute), cfg.SessionTTL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_SessionTTLSeconds(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"session_ttl": 3600}`), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, Duration(time.Hour), cfg.SessionTTL)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"session_ttl": "soon"}`), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":              "3000",
		"GEMINI_API_KEY":    "key-123",
		"PHOTO_DIR":         "/var/photos",
		"EXPORT_JWT_SECRET": "a-very-long-export-secret",
		"SESSION_TTL":       "2h",
	}
	cfg := Config{Port: 8080, Model: "gemini-1.5-flash"}

	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, "/var/photos", cfg.PhotoDir)
	assert.Equal(t, "a-very-long-export-secret", cfg.ExportJWTSecret)
	assert.Equal(t, Duration(2*time.Hour), cfg.SessionTTL)
	// Unset variables keep the current value
	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port", env: map[string]string{"PORT": "http"}},
		{name: "ttl", env: map[string]string{"SESSION_TTL": "a day"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, cfg.ApplyEnv(func(k string) string { return tt.env[k] }))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Default()},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "negative token hours", cfg: Config{ExportTokenHours: -1}, wantErr: "export_token_hours"},
		{name: "negative ttl", cfg: Config{SessionTTL: Duration(-time.Minute)}, wantErr: "session_ttl"},
		{name: "bucket without region", cfg: Config{PhotoS3Bucket: "photos"}, wantErr: "aws_region"},
		{name: "missing catalog", cfg: Config{TemplateCatalog: "/nonexistent/catalog.yaml"}, wantErr: "template catalog not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Port:   9000,
		APIKey: "custom-key",
	}

	merged := partial.MergeWithDefaults(Default())

	// Custom values should be preserved
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "custom-key", merged.APIKey)

	// Default values should fill in empty fields
	assert.Equal(t, DefaultModel, merged.Model)
	assert.Equal(t, DefaultPhotoDir, merged.PhotoDir)
	assert.Equal(t, DefaultExportTokenHours, merged.ExportTokenHours)
	assert.Equal(t, Duration(DefaultSessionTTL), merged.SessionTTL)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		Port:   8081,
		APIKey: "test",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 8081, merged.Port)
	assert.Equal(t, "test", merged.APIKey)
	assert.Empty(t, merged.PhotoDir)
}
