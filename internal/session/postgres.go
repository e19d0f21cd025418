package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
)

// PostgresStore keeps sessions in the resume_sessions table
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore wraps a connected database
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

// Create stores a new session for input
func (p *PostgresStore) Create(ctx context.Context, input types.UserData, templateID string) (*Session, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session input: %w", err)
	}

	rec, err := p.db.CreateSession(ctx, &db.SessionRecord{
		ID:         uuid.New(),
		Input:      raw,
		TemplateID: strings.ToLower(strings.TrimSpace(templateID)),
		PhotoKey:   input.PhotoKey,
	})
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Get loads a session
func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	rec, err := p.db.GetSession(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return fromRecord(rec)
}

// Update locks the session row for the duration of fn
func (p *PostgresStore) Update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	rec, err := p.db.UpdateSession(ctx, id, func(rec *db.SessionRecord) error {
		s, err := fromRecord(rec)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		return toRecord(s, rec)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return fromRecord(rec)
}

// Delete removes a session
func (p *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(p.db.DeleteSession(ctx, id))
}

// Prune removes sessions not updated since cutoff
func (p *PostgresStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := p.db.DeleteSessionsBefore(ctx, cutoff)
	return int(n), err
}

func mapNotFound(err error) error {
	if errors.Is(err, db.ErrSessionNotFound) {
		return ErrNotFound
	}
	return err
}

func fromRecord(rec *db.SessionRecord) (*Session, error) {
	s := &Session{
		ID:         rec.ID,
		TemplateID: rec.TemplateID,
		PhotoKey:   rec.PhotoKey,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if err := json.Unmarshal(rec.Input, &s.Input); err != nil {
		return nil, fmt.Errorf("failed to decode session input: %w", err)
	}
	if len(rec.Resume) > 0 {
		var resume types.GeneratedResume
		if err := json.Unmarshal(rec.Resume, &resume); err != nil {
			return nil, fmt.Errorf("failed to decode session resume: %w", err)
		}
		s.Resume = &resume
	}
	return s, nil
}

func toRecord(s *Session, rec *db.SessionRecord) error {
	input, err := json.Marshal(s.Input)
	if err != nil {
		return fmt.Errorf("failed to encode session input: %w", err)
	}
	rec.Input = input
	rec.Resume = nil
	if s.Resume != nil {
		resume, err := json.Marshal(s.Resume)
		if err != nil {
			return fmt.Errorf("failed to encode session resume: %w", err)
		}
		rec.Resume = resume
	}
	rec.TemplateID = s.TemplateID
	rec.PhotoKey = s.PhotoKey
	return nil
}
