package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/intake"
	"github.com/jonathan/resume-builder/internal/photos"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/types"
)

// CreateSessionRequest is the intake form output plus an optional template
type CreateSessionRequest struct {
	types.UserData
	TemplateID string `json:"template_id,omitempty"`
}

// PhotoResponse describes a stored photo
type PhotoResponse struct {
	PhotoKey    string `json:"photo_key"`
	ContentType string `json:"content_type"`
}

// handleCreateSession validates intake data and opens a session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	if err := intake.Validate(req.UserData); err != nil {
		s.writeError(w, err)
		return
	}

	templateID := strings.TrimSpace(req.TemplateID)
	if templateID == "" {
		templateID = s.templates.DefaultID()
	}
	// Photos are attached through the upload route only
	req.PhotoKey = ""

	sess, err := s.sessions.Create(r.Context(), req.UserData, templateID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("Session created", zap.String("session_id", sess.ID.String()), zap.String("template_id", sess.TemplateID))
	s.jsonResponse(w, http.StatusCreated, sess)
}

// handleGetSession returns a session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

// handleDeleteSession removes a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadPhoto stores the multipart "photo" file and attaches it
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		s.writeError(w, &ErrUnavailable{Feature: "photo storage"})
		return
	}
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photos.MaxPhotoBytes+(1<<20))
	file, _, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, photos.ErrTooLarge)
			return
		}
		s.writeError(w, &ErrValidation{Field: "photo", Message: "multipart file is required"})
		return
	}
	defer file.Close()

	key, mimeType, err := s.photos.Save(r.Context(), id.String(), file)
	if err != nil {
		s.writeError(w, err)
		return
	}

	_, err = s.sessions.Update(r.Context(), id, func(cur *session.Session) error {
		cur.PhotoKey = key
		cur.Input.PhotoKey = key
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, PhotoResponse{PhotoKey: key, ContentType: mimeType})
}

// handleGetPhoto streams the session photo
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		s.writeError(w, &ErrUnavailable{Feature: "photo storage"})
		return
	}
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess.PhotoKey == "" {
		s.jsonResponse(w, http.StatusNotFound, errorBody{Error: "session has no photo"})
		return
	}

	rc, err := s.photos.Open(r.Context(), sess.PhotoKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", photos.ContentType(sess.PhotoKey))
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("Photo stream interrupted", zap.Error(err))
	}
}

// photoRef returns an inline data URI for the session photo, or "" when
// there is none or it cannot be read
func (s *Server) photoRef(r *http.Request, sess *session.Session) string {
	if s.photos == nil || sess.PhotoKey == "" {
		return ""
	}
	uri, err := photos.DataURI(r.Context(), s.photos, sess.PhotoKey)
	if err != nil {
		s.logger.Warn("Rendering without photo", zap.String("session_id", sess.ID.String()), zap.Error(err))
		return ""
	}
	return uri
}
