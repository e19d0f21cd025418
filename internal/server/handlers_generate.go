package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/session"
)

// GenerateRequest optionally overrides the session template
type GenerateRequest struct {
	TemplateID string `json:"template_id,omitempty"`
}

// generate runs the generator for a session and stores the result.
// Concurrent calls for one session share a single backend call and its
// result; the call is detached from the first caller's cancellation.
func (s *Server) generate(ctx context.Context, id uuid.UUID, templateID string) (*session.Session, error) {
	v, err, shared := s.generating.Do(id.String(), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()

		sess, err := s.sessions.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if templateID == "" {
			templateID = sess.TemplateID
		}

		resume, err := s.generator.Generate(ctx, sess.Input, templateID)
		if err != nil {
			return nil, err
		}

		return s.sessions.Update(ctx, id, func(cur *session.Session) error {
			cur.Resume = resume
			cur.TemplateID = resume.TemplateID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Generate request collapsed", zap.String("session_id", id.String()))
	}
	return v.(*session.Session), nil
}

// handleGenerate generates content and returns the GeneratedResume
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req GenerateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.generate(r.Context(), id, req.TemplateID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Resume)
}

// handleGenerateStream is handleGenerate over SSE: a generating event,
// then complete or error
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req GenerateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := sse.WriteEvent(EventGenerating, map[string]string{"session_id": id.String()}); err != nil {
		s.logger.Warn("SSE client gone", zap.Error(err))
		return
	}

	sess, err := s.generate(r.Context(), id, req.TemplateID)
	if err != nil {
		sse.WriteError(err)
		return
	}
	sse.WriteComplete(id.String(), sess.Resume)
}
