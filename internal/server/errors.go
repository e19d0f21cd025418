package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/generation"
	"github.com/jonathan/resume-builder/internal/intake"
	"github.com/jonathan/resume-builder/internal/photos"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/templates"
)

// ErrNoResume is returned for operations that need generated content
var ErrNoResume = errors.New("resume has not been generated")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates an optional collaborator is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		generationErr *generation.GenerationFailedError
		pathErr       *docpath.InvalidPathError
		intakeErr     *intake.ValidationError
		validationErr *ErrValidation
		unavailable   *ErrUnavailable
		exportErr     *export.ExportError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &generationErr), errors.As(err, &exportErr):
		return http.StatusBadGateway
	case errors.As(err, &pathErr), errors.As(err, &intakeErr), errors.As(err, &validationErr),
		errors.Is(err, photos.ErrInvalidKey), errors.Is(err, templates.ErrNotEditable):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoResume):
		return http.StatusConflict
	case errors.Is(err, photos.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, photos.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope
type errorBody struct {
	Error  string              `json:"error"`
	Fields []intake.FieldError `json:"fields,omitempty"`
}

func newErrorBody(err error, status int) errorBody {
	if status == http.StatusInternalServerError {
		return errorBody{Error: "internal server error"}
	}
	body := errorBody{Error: err.Error()}
	var intakeErr *intake.ValidationError
	if errors.As(err, &intakeErr) {
		body.Fields = intakeErr.Errors
	}
	return body
}
