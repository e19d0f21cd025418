// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/templates"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// joinLimited joins at most limit items and notes how many were left out
func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:limit], ", "), len(items)-limit)
}

// PrintUserData outputs the intake input a generation run starts from.
func (p *Printer) PrintUserData(data *types.UserData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", data.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", data.Title))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", data.Email))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", data.Phone))
	if data.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", data.Location))
	}
	if len(data.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", joinLimited(data.Skills, maxItemsToShow)))
	}

	p.printBox("INTAKE INPUT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResume outputs a summary of a generated resume.
func (p *Printer) PrintResume(resume *types.GeneratedResume) {
	if resume == nil {
		return
	}
	doc := resume.Content

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template: %s\n", resume.TemplateID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", doc.Header.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", doc.Header.Title))
	sb.WriteString("\n")

	if doc.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n\n", doc.Summary))
	}
	if len(doc.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %s\n\n", joinLimited(doc.Skills, maxItemsToShow)))
	}

	if len(doc.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(doc.Experience)))
		count := min(len(doc.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := doc.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s (%s)\n", exp.Title, exp.Company, exp.Duration))
		}
		if len(doc.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Experience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(doc.Projects) > 0 {
		sb.WriteString(fmt.Sprintf("Projects (%d):\n", len(doc.Projects)))
		count := min(len(doc.Projects), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", doc.Projects[i].Name))
		}
		if len(doc.Projects) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Projects)-3))
		}
	}

	p.printBox("GENERATED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplates outputs the template catalog, marking the default.
func (p *Printer) PrintTemplates(list []types.Template, defaultID string) {
	if len(list) == 0 {
		return
	}

	var sb strings.Builder
	for i, t := range list {
		marker := " "
		if t.ID == defaultID {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %-14s %s %s\n", marker, t.ID, t.AccentColor, t.DisplayName))
		if t.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", t.Description))
		}
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TEMPLATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFields outputs the editable fields a template exposes.
func (p *Printer) PrintFields(templateID string, fields []templates.Field) {
	if len(fields) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template %s exposes %d fields:\n\n", templateID, len(fields)))
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("%-8s %s\n", f.Kind, f.Path))
	}

	p.printBox("EDITABLE FIELDS", strings.TrimSuffix(sb.String(), "\n"))
}
