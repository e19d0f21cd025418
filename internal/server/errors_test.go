package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/generation"
	"github.com/jonathan/resume-builder/internal/intake"
	"github.com/jonathan/resume-builder/internal/photos"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/templates"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "id", Message: "invalid UUID"}
	assert.Equal(t, "validation error: id - invalid UUID", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "backend unavailable", err: &generation.GenerationFailedError{Message: "down"}, expected: http.StatusBadGateway},
		{name: "wrapped backend unavailable", err: fmt.Errorf("generate: %w", &generation.GenerationFailedError{Message: "down"}), expected: http.StatusBadGateway},
		{name: "export failure", err: &export.ExportError{Message: "chrome"}, expected: http.StatusBadGateway},
		{name: "invalid path", err: &docpath.InvalidPathError{Path: docpath.Path{"nope"}, Reason: "unknown field"}, expected: http.StatusBadRequest},
		{name: "intake validation", err: &intake.ValidationError{Errors: []intake.FieldError{{Field: "email", Rule: "resume_email"}}}, expected: http.StatusBadRequest},
		{name: "request validation", err: &ErrValidation{Field: "path", Message: "required"}, expected: http.StatusBadRequest},
		{name: "bad photo key", err: photos.ErrInvalidKey, expected: http.StatusBadRequest},
		{name: "not editable", err: fmt.Errorf("%w: [\"skills\"]", templates.ErrNotEditable), expected: http.StatusBadRequest},
		{name: "session not found", err: session.ErrNotFound, expected: http.StatusNotFound},
		{name: "no resume", err: ErrNoResume, expected: http.StatusConflict},
		{name: "photo too large", err: fmt.Errorf("write photo: %w", photos.ErrTooLarge), expected: http.StatusRequestEntityTooLarge},
		{name: "photo type", err: photos.ErrUnsupportedType, expected: http.StatusUnsupportedMediaType},
		{name: "unavailable", err: &ErrUnavailable{Feature: "export"}, expected: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	body := newErrorBody(errors.New("secret detail"), http.StatusInternalServerError)
	assert.Equal(t, "internal server error", body.Error)

	intakeErr := &intake.ValidationError{Errors: []intake.FieldError{{Field: "phone", Rule: "resume_phone"}}}
	body = newErrorBody(intakeErr, http.StatusBadRequest)
	assert.Equal(t, intakeErr.Errors, body.Fields)
	assert.Contains(t, body.Error, "phone")
}
