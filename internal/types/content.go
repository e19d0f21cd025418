// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// ContentDocument is the canonical resume content tree. Every leaf is a string
// or a string slice; the only nested records are Header, Contact, Experience
// and Project.
type ContentDocument struct {
	Header     Header       `json:"header"`
	Summary    string       `json:"summary"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
}

// Header holds the identity block of a resume
type Header struct {
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Contact Contact `json:"contact"`
}

// Contact holds contact details; GitHub and LinkedIn are optional
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Experience is one role in the experience section
type Experience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Achievements []string `json:"achievements"`
}

// Project is one entry in the projects section
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
	GitHub       string   `json:"github,omitempty"`
}

// GeneratedResume is the unit handed to rendering
type GeneratedResume struct {
	Content    ContentDocument `json:"content"`
	TemplateID string          `json:"template_id"`
}

// DocumentError reports a ContentDocument invariant violation
type DocumentError struct {
	Field   string
	Message string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("invalid document at %s: %s", e.Field, e.Message)
}

// Validate checks the in-memory invariants: every string slice is non-nil.
// JSON-level presence of fields is enforced separately by the schema gate.
func (d *ContentDocument) Validate() error {
	if d.Skills == nil {
		return &DocumentError{Field: "skills", Message: "must not be null"}
	}
	if d.Experience == nil {
		return &DocumentError{Field: "experience", Message: "must not be null"}
	}
	if d.Projects == nil {
		return &DocumentError{Field: "projects", Message: "must not be null"}
	}
	for i, exp := range d.Experience {
		if exp.Achievements == nil {
			return &DocumentError{Field: fmt.Sprintf("experience[%d].achievements", i), Message: "must not be null"}
		}
	}
	for i, p := range d.Projects {
		if p.Technologies == nil {
			return &DocumentError{Field: fmt.Sprintf("projects[%d].technologies", i), Message: "must not be null"}
		}
	}
	return nil
}

// Normalized returns a copy of d with nil slices replaced by empty ones.
// It is meant for documents assembled in Go code, never for repairing
// backend output.
func (d ContentDocument) Normalized() ContentDocument {
	out := d
	out.Skills = nonNil(d.Skills)

	out.Experience = make([]Experience, len(d.Experience))
	for i, exp := range d.Experience {
		exp.Achievements = nonNil(exp.Achievements)
		out.Experience[i] = exp
	}

	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Technologies = nonNil(p.Technologies)
		out.Projects[i] = p
	}
	return out
}

// Clone returns a deep copy of d. Nil slices stay nil.
func (d ContentDocument) Clone() ContentDocument {
	out := d
	out.Skills = cloneStrings(d.Skills)
	if d.Experience != nil {
		out.Experience = make([]Experience, len(d.Experience))
		for i, exp := range d.Experience {
			exp.Achievements = cloneStrings(exp.Achievements)
			out.Experience[i] = exp
		}
	}
	if d.Projects != nil {
		out.Projects = make([]Project, len(d.Projects))
		for i, p := range d.Projects {
			p.Technologies = cloneStrings(p.Technologies)
			out.Projects[i] = p
		}
	}
	return out
}

// Clone returns a deep copy of r
func (r *GeneratedResume) Clone() *GeneratedResume {
	if r == nil {
		return nil
	}
	return &GeneratedResume{Content: r.Content.Clone(), TemplateID: r.TemplateID}
}

// NewGeneratedResume pairs content with a lower-cased template id
func NewGeneratedResume(content ContentDocument, templateID string) *GeneratedResume {
	return &GeneratedResume{
		Content:    content,
		TemplateID: strings.ToLower(strings.TrimSpace(templateID)),
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
