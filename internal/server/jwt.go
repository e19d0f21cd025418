package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// ExportClaims are the claims of an export token. Export is the payment
// entitlement; the server never decides it, it only reads it.
type ExportClaims struct {
	Export bool `json:"export"`
	jwt.RegisteredClaims
}

// Identity returns the token subject.
// This implements the middleware.Principal interface.
func (c *ExportClaims) Identity() string {
	return c.Subject
}

// CanExport reports the export entitlement.
func (c *ExportClaims) CanExport() bool {
	return c.Export
}

// JWTAuthorizer issues and verifies HS256 export tokens.
type JWTAuthorizer struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTAuthorizer creates an authorizer with the given configuration.
func NewJWTAuthorizer(cfg *config.JWTConfig) *JWTAuthorizer {
	return &JWTAuthorizer{config: cfg, now: time.Now}
}

// IssueToken signs a token for subject. It is used by the CLI and by tests;
// production tokens come from the payment collaborator sharing the secret.
func (a *JWTAuthorizer) IssueToken(subject string, export bool) (string, error) {
	now := a.now()
	claims := &ExportClaims{
		Export: export,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(a.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims.
func (a *JWTAuthorizer) ParseToken(tokenString string) (*ExportClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &ExportClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.Secret), nil
	}, jwt.WithTimeFunc(a.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// ValidateToken implements middleware.TokenValidator.
func (a *JWTAuthorizer) ValidateToken(tokenString string) (middleware.Principal, error) {
	claims, err := a.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var _ middleware.TokenValidator = (*JWTAuthorizer)(nil)
