package templates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/types"
)

// FieldKind is the editor used for a leaf
type FieldKind string

const (
	// KindText is a single-line string
	KindText FieldKind = "text"
	// KindTextarea is a multi-line string
	KindTextarea FieldKind = "textarea"
	// KindArray is a string list edited as comma-separated text
	KindArray FieldKind = "array"
)

// EditMode controls how list leaves are exposed for editing
type EditMode int

const (
	// EditWholeArray exposes each string list as one array field
	EditWholeArray EditMode = iota
	// EditPerItem exposes each list element as its own text field
	EditPerItem
)

// EditFunc receives one normalized edit. Callers typically apply it with
// docpath.Set against their working document.
type EditFunc func(path docpath.Path, value any) error

// Field describes one editable leaf of a rendered document
type Field struct {
	Path  docpath.Path `json:"path"`
	Kind  FieldKind    `json:"kind"`
	Label string       `json:"label"`
	Value any          `json:"value"`
}

// Edit converts a raw editor value into exactly one onEdit call. Array
// fields are split on commas with items trimmed and empties dropped; text
// fields pass through unchanged.
func (f Field) Edit(raw string, onEdit EditFunc) error {
	if onEdit == nil {
		return fmt.Errorf("no edit handler for %s", f.Path)
	}
	var value any = raw
	if f.Kind == KindArray {
		value = SplitList(raw)
	}
	return onEdit(f.Path, value)
}

// SplitList splits comma-separated editor input into a non-nil list
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FindField returns the field at path, if the renderer exposes one
func FindField(fields []Field, path docpath.Path) (Field, bool) {
	want := path.String()
	for _, f := range fields {
		if f.Path.String() == want {
			return f, true
		}
	}
	return Field{}, false
}

// ErrNotEditable is returned when a renderer exposes no field at a path
var ErrNotEditable = errors.New("path is not editable")

// EditText applies raw editor input to the field renderer exposes at path
// and returns the updated document. doc itself is not modified.
func EditText(renderer Renderer, doc types.ContentDocument, path docpath.Path, raw string) (types.ContentDocument, error) {
	field, ok := FindField(renderer.Fields(doc), path)
	if !ok {
		return doc, fmt.Errorf("%w: %s", ErrNotEditable, path)
	}
	out := doc
	err := field.Edit(raw, func(p docpath.Path, value any) error {
		next, err := docpath.Set(out, p, value)
		if err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return doc, err
	}
	return out, nil
}

// documentFields lists the editable leaves of doc in render order
func documentFields(doc types.ContentDocument, mode EditMode) []Field {
	var fields []Field
	add := func(kind FieldKind, label string, value any, path ...any) {
		fields = append(fields, Field{Path: docpath.Path(path), Kind: kind, Label: label, Value: value})
	}
	list := func(label, itemLabel string, items []string, path ...any) {
		if mode == EditWholeArray {
			add(KindArray, label, append([]string{}, items...), path...)
			return
		}
		for i, item := range items {
			add(KindText, fmt.Sprintf("%s %d", itemLabel, i+1), item, append(append([]any{}, path...), i)...)
		}
	}

	h := doc.Header
	add(KindText, "Name", h.Name, "header", "name")
	add(KindText, "Title", h.Title, "header", "title")
	add(KindText, "Email", h.Contact.Email, "header", "contact", "email")
	add(KindText, "Phone", h.Contact.Phone, "header", "contact", "phone")
	add(KindText, "Location", h.Contact.Location, "header", "contact", "location")
	if h.Contact.GitHub != "" {
		add(KindText, "GitHub", h.Contact.GitHub, "header", "contact", "github")
	}
	if h.Contact.LinkedIn != "" {
		add(KindText, "LinkedIn", h.Contact.LinkedIn, "header", "contact", "linkedin")
	}

	add(KindTextarea, "Summary", doc.Summary, "summary")
	list("Skills", "Skill", doc.Skills, "skills")

	for i, exp := range doc.Experience {
		prefix := fmt.Sprintf("Experience %d", i+1)
		add(KindText, prefix+" title", exp.Title, "experience", i, "title")
		add(KindText, prefix+" company", exp.Company, "experience", i, "company")
		add(KindText, prefix+" duration", exp.Duration, "experience", i, "duration")
		list(prefix+" achievements", prefix+" achievement", exp.Achievements, "experience", i, "achievements")
	}

	for i, p := range doc.Projects {
		prefix := fmt.Sprintf("Project %d", i+1)
		add(KindText, prefix+" name", p.Name, "projects", i, "name")
		add(KindTextarea, prefix+" description", p.Description, "projects", i, "description")
		list(prefix+" technologies", prefix+" technology", p.Technologies, "projects", i, "technologies")
	}
	return fields
}
