// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults used when neither the config file, the environment nor a flag
// sets a value
const (
	DefaultPort             = 8080
	DefaultModel            = "gemini-2.0-flash"
	DefaultPhotoDir         = "data/photos"
	DefaultSessionTTL       = 24 * time.Hour
	DefaultExportTokenHours = 24
)

// Duration is a time.Duration that reads "90m" style strings from JSON
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty keeps sessions in memory

	// Generation
	APIKey string `json:"api_key,omitempty"` // Gemini API key
	Model  string `json:"model,omitempty"`   // Gemini model name

	// Templates
	TemplateCatalog string `json:"template_catalog,omitempty"` // Path to a catalog YAML; empty uses the embedded one

	// Photos
	PhotoDir      string `json:"photo_dir,omitempty"`       // Local photo directory
	PhotoS3Bucket string `json:"photo_s3_bucket,omitempty"` // S3 bucket; takes precedence over PhotoDir
	PhotoS3Prefix string `json:"photo_s3_prefix,omitempty"`
	AWSRegion     string `json:"aws_region,omitempty"`

	// Export
	ExportJWTSecret  string `json:"export_jwt_secret,omitempty"`  // Enables the export route when set
	ExportTokenHours int    `json:"export_token_hours,omitempty"` // Lifetime of issued export tokens
	ChromePath       string `json:"chrome_path,omitempty"`        // Chrome binary; empty lets chromedp find one

	// Behavior
	SessionTTL Duration `json:"session_ttl,omitempty"` // Idle sessions older than this are pruned
	Verbose    bool     `json:"verbose,omitempty"`     // Print detailed debug information
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:             DefaultPort,
		Model:            DefaultModel,
		PhotoDir:         DefaultPhotoDir,
		ExportTokenHours: DefaultExportTokenHours,
		SessionTTL:       Duration(DefaultSessionTTL),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave
// the field alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: PORT must be a number: %w", err)
		}
		c.Port = port
	}
	if v := getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config error: SESSION_TTL: %w", err)
		}
		c.SessionTTL = Duration(ttl)
	}

	overrides := []struct {
		env   string
		field *string
	}{
		{"DATABASE_URL", &c.DatabaseURL},
		{"GEMINI_API_KEY", &c.APIKey},
		{"GEMINI_MODEL", &c.Model},
		{"TEMPLATE_CATALOG", &c.TemplateCatalog},
		{"PHOTO_DIR", &c.PhotoDir},
		{"PHOTO_S3_BUCKET", &c.PhotoS3Bucket},
		{"PHOTO_S3_PREFIX", &c.PhotoS3Prefix},
		{"AWS_REGION", &c.AWSRegion},
		{"EXPORT_JWT_SECRET", &c.ExportJWTSecret},
		{"CHROME_PATH", &c.ChromePath},
	}
	for _, s := range overrides {
		if v := getenv(s.env); v != "" {
			*s.field = v
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.ExportTokenHours < 0 {
		return fmt.Errorf("config error: 'export_token_hours' must be non-negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config error: 'session_ttl' must be non-negative")
	}
	if c.PhotoS3Bucket != "" && c.AWSRegion == "" {
		return fmt.Errorf("config error: 'aws_region' is required with 'photo_s3_bucket'")
	}

	// Validate file paths exist (if specified)
	if c.TemplateCatalog != "" {
		if _, err := os.Stat(c.TemplateCatalog); os.IsNotExist(err) {
			return fmt.Errorf("config error: template catalog not found: %s", c.TemplateCatalog)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct{ dst, src *string }{
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.APIKey, &defaults.APIKey},
		{&result.Model, &defaults.Model},
		{&result.TemplateCatalog, &defaults.TemplateCatalog},
		{&result.PhotoDir, &defaults.PhotoDir},
		{&result.PhotoS3Bucket, &defaults.PhotoS3Bucket},
		{&result.PhotoS3Prefix, &defaults.PhotoS3Prefix},
		{&result.AWSRegion, &defaults.AWSRegion},
		{&result.ExportJWTSecret, &defaults.ExportJWTSecret},
		{&result.ChromePath, &defaults.ChromePath},
	} {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ExportTokenHours == 0 {
		result.ExportTokenHours = defaults.ExportTokenHours
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
