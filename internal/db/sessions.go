package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrSessionNotFound is returned when no session row matches
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is one row of resume_sessions. Input and Resume hold JSON;
// Resume is nil until content has been generated.
type SessionRecord struct {
	ID         uuid.UUID       `json:"id"`
	Input      json.RawMessage `json:"input"`
	Resume     json.RawMessage `json:"resume,omitempty"`
	TemplateID string          `json:"template_id"`
	PhotoKey   string          `json:"photo_key"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

const sessionColumns = `id, input, resume, template_id, photo_key, created_at, updated_at`

func scanSession(row pgx.Row) (*SessionRecord, error) {
	var rec SessionRecord
	var input, resume []byte
	if err := row.Scan(&rec.ID, &input, &resume, &rec.TemplateID, &rec.PhotoKey, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Input = input
	if resume != nil {
		rec.Resume = resume
	}
	return &rec, nil
}

// CreateSession inserts a new session row
func (db *DB) CreateSession(ctx context.Context, rec *SessionRecord) (*SessionRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO resume_sessions (id, input, resume, template_id, photo_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+sessionColumns,
		rec.ID, []byte(rec.Input), nullableJSON(rec.Resume), rec.TemplateID, rec.PhotoKey,
	)
	out, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return out, nil
}

// GetSession loads a session by id
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM resume_sessions WHERE id = $1`, id)
	rec, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return rec, nil
}

// UpdateSession locks the row, applies fn and writes the result back in one
// transaction, so concurrent updates to a session are serialized.
func (db *DB) UpdateSession(ctx context.Context, id uuid.UUID, fn func(*SessionRecord) error) (*SessionRecord, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec, err := scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM resume_sessions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}

	updated, err := scanSession(tx.QueryRow(ctx,
		`UPDATE resume_sessions
		 SET input = $2, resume = $3, template_id = $4, photo_key = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		id, []byte(rec.Input), nullableJSON(rec.Resume), rec.TemplateID, rec.PhotoKey,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session update: %w", err)
	}
	return updated, nil
}

// DeleteSession removes a session row
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resume_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSessionsBefore removes sessions not updated since cutoff
func (db *DB) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resume_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// nullableJSON maps an empty document to SQL NULL
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
