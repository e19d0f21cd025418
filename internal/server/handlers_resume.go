package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/templates"
	"github.com/jonathan/resume-builder/internal/types"
)

// PatchResumeRequest edits one leaf of the working document. Value is set
// as-is; Text is raw editor input converted by the field's kind (array
// fields split on commas).
type PatchResumeRequest struct {
	Path  docpath.Path `json:"path" validate:"required,min=1"`
	Value any          `json:"value,omitempty"`
	Text  *string      `json:"text,omitempty"`
}

// SetTemplateRequest switches the session template
type SetTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// TemplateResponse reports the stored id and the template it renders with
type TemplateResponse struct {
	TemplateID string         `json:"template_id"`
	Resolved   types.Template `json:"resolved"`
}

// FieldsResponse lists the editable leaves of the current document
type FieldsResponse struct {
	TemplateID string            `json:"template_id"`
	Fields     []templates.Field `json:"fields"`
}

// loadResume fetches a session that already has generated content
func (s *Server) loadResume(r *http.Request) (*session.Session, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if sess.Resume == nil {
		return nil, ErrNoResume
	}
	return sess, nil
}

// handleGetResume returns the GeneratedResume
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResume(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Resume)
}

// handlePatchResume applies one path edit under the session lock
func (s *Server) handlePatchResume(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req PatchResumeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validateRequest(req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Value == nil && req.Text == nil {
		s.writeError(w, &ErrValidation{Field: "value", Message: "value or text is required"})
		return
	}

	updated, err := s.sessions.Update(r.Context(), id, func(cur *session.Session) error {
		if cur.Resume == nil {
			return ErrNoResume
		}
		doc, err := s.applyEdit(cur, req)
		if err != nil {
			return err
		}
		cur.Resume.Content = doc
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated.Resume)
}

// applyEdit returns the session document with req applied
func (s *Server) applyEdit(cur *session.Session, req PatchResumeRequest) (types.ContentDocument, error) {
	doc := cur.Resume.Content
	if req.Text == nil {
		return docpath.Set(doc, req.Path, req.Value)
	}
	binding := s.templates.Resolve(cur.TemplateID)
	return templates.EditText(binding.Renderer, doc, req.Path, *req.Text)
}

// handleSetTemplate switches the template. Unknown ids are stored and
// render with the default template.
func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req SetTemplateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	templateID := strings.ToLower(strings.TrimSpace(req.TemplateID))
	if err := validateRequest(SetTemplateRequest{TemplateID: templateID}); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.sessions.Update(r.Context(), id, func(cur *session.Session) error {
		cur.TemplateID = templateID
		if cur.Resume != nil {
			cur.Resume.TemplateID = templateID
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TemplateResponse{
		TemplateID: updated.TemplateID,
		Resolved:   s.templates.Resolve(updated.TemplateID).Template,
	})
}

// handleFields lists the editable fields of the selected renderer
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResume(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	binding := s.templates.Resolve(sess.TemplateID)
	s.jsonResponse(w, http.StatusOK, FieldsResponse{
		TemplateID: binding.Template.ID,
		Fields:     binding.Renderer.Fields(sess.Resume.Content),
	})
}

// renderHTML draws the session document with its template
func (s *Server) renderHTML(r *http.Request, sess *session.Session) ([]byte, error) {
	var buf bytes.Buffer
	binding := s.templates.Resolve(sess.TemplateID)
	if err := binding.Render(&buf, sess.Resume.Content, s.photoRef(r, sess)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleRender returns the rendered HTML page
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResume(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	page, err := s.renderHTML(r, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page) //nolint:errcheck
}

// handleExport prints the rendered page to PDF. The route is wrapped in
// middleware.RequireExport.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, &ErrUnavailable{Feature: "export"})
		return
	}
	sess, err := s.loadResume(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	page, err := s.renderHTML(r, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}

	pdf, err := s.exporter.Export(r.Context(), string(page))
	if err != nil {
		s.writeError(w, err)
		return
	}

	identity := ""
	if principal, err := middleware.GetPrincipal(r); err == nil {
		identity = principal.Identity()
	}
	s.logger.Info("Resume exported",
		zap.String("session_id", sess.ID.String()),
		zap.String("subject", identity),
		zap.Int("bytes", len(pdf)),
	)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf) //nolint:errcheck
}
