package config

import (
	"fmt"
)

// defaultExportTokenHours is the lifetime of issued export tokens
const defaultExportTokenHours = 24

// JWTConfig holds configuration for export token signing and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig validates the export token settings. A zero expiration uses
// the default of 24 hours.
func NewJWTConfig(secret string, expirationHours int) (*JWTConfig, error) {
	if expirationHours == 0 {
		expirationHours = defaultExportTokenHours
	}
	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("EXPORT_JWT_SECRET cannot be empty")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("EXPORT_JWT_SECRET must be at least 16 bytes, got: %d", len(c.Secret))
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("export token expiration must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
