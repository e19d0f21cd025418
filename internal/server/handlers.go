package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/intake"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// sessionID parses the {id} path value
func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid session id"}
	}
	return id, nil
}

// decodeJSON reads a JSON body into v. With optional set, an empty body
// leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// validateRequest runs the struct tags of a request body through the shared
// validator and reports the first failure
func validateRequest(v any) error {
	err := intake.ValidateStruct(v)
	var validationErr *intake.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Errors) > 0 {
		first := validationErr.Errors[0]
		return &ErrValidation{Field: first.Field, Message: "failed " + first.Rule}
	}
	return err
}

// TemplatesResponse lists the template catalog
type TemplatesResponse struct {
	Default   string           `json:"default"`
	Templates []types.Template `json:"templates"`
}

// handleListTemplates returns the registered templates
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, TemplatesResponse{
		Default:   s.templates.DefaultID(),
		Templates: s.templates.Templates(),
	})
}
