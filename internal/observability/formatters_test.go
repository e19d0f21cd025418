package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/templates"
	"github.com/jonathan/resume-builder/internal/types"
)

func TestPrintUserData(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintUserData(&types.UserData{
		Name:   "Jane Doe",
		Title:  "Engineer",
		Email:  "jane@example.com",
		Phone:  "5551234567",
		Skills: []string{"Go", "SQL", "Docker", "Kubernetes", "Terraform", "Rust", "Python"},
	})
	output := buf.String()

	assert.Contains(t, output, "INTAKE INPUT")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "(+2 more)")
	assert.NotContains(t, output, "Location")
}

func TestPrintUserData_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintUserData(nil)
	assert.Empty(t, buf.String())
}

func TestPrintResume(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	resume := &types.GeneratedResume{
		TemplateID: "tech",
		Content: types.ContentDocument{
			Header:  types.Header{Name: "Jane Doe", Title: "Engineer"},
			Summary: "Builds reliable systems.",
			Skills:  []string{"Go"},
			Experience: []types.Experience{
				{Title: "Backend Engineer", Company: "Acme", Duration: "2020-2024"},
			},
			Projects: []types.Project{{Name: "Tracer"}, {Name: "Ledger"}, {Name: "Relay"}, {Name: "Atlas"}},
		},
	}

	p.PrintResume(resume)
	output := buf.String()

	assert.Contains(t, output, "GENERATED RESUME")
	assert.Contains(t, output, "Template: tech")
	assert.Contains(t, output, "Backend Engineer, Acme (2020-2024)")
	assert.Contains(t, output, "Tracer")
	assert.NotContains(t, output, "Atlas")
	assert.Contains(t, output, "... and 1 more")
}

func TestPrintResume_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResume(nil)
	assert.Empty(t, buf.String())
}

func TestPrintTemplates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTemplates([]types.Template{
		{ID: "modern", DisplayName: "Modern", AccentColor: "#2563eb"},
		{ID: "tech", DisplayName: "Tech", AccentColor: "#10b981", Description: "Monospace headings"},
	}, "modern")
	output := buf.String()

	assert.Contains(t, output, "* modern")
	assert.Contains(t, output, "  tech")
	assert.Contains(t, output, "Monospace headings")
}

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFields("modern", []templates.Field{
		{Path: docpath.Path{"summary"}, Kind: templates.KindTextarea},
		{Path: docpath.Path{"skills"}, Kind: templates.KindArray},
	})
	output := buf.String()

	assert.Contains(t, output, "Template modern exposes 2 fields")
	assert.Contains(t, output, `["skills"]`)
	assert.Contains(t, output, "array")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}
