// Package session holds per-user working documents. A session owns the
// intake input, the current GeneratedResume and the selected template, and
// is replaced wholesale on every edit.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// ErrNotFound is returned when a session id is unknown
var ErrNotFound = errors.New("session not found")

// Session is one working document and its inputs
type Session struct {
	ID    uuid.UUID      `json:"id"`
	Input types.UserData `json:"input"`
	// Resume is nil until content has been generated
	Resume     *types.GeneratedResume `json:"resume,omitempty"`
	TemplateID string                 `json:"template_id"`
	PhotoKey   string                 `json:"photo_key,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Clone returns a deep copy of s
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Input = s.Input.Clone()
	out.Resume = s.Resume.Clone()
	return &out
}

// Store persists sessions. Update runs fn with exclusive access to the
// session, so writers of one session never interleave.
type Store interface {
	Create(ctx context.Context, input types.UserData, templateID string) (*Session, error)
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Prune removes sessions not updated since cutoff and reports how many
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
