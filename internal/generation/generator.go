// Package generation turns intake data into a ContentDocument using a
// text-generation backend, with a deterministic fallback for any response
// that does not have the expected shape.
package generation

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// Outcome labels written to logs
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

// Generator drafts resume content. It is safe for concurrent use as long as
// the backend is.
type Generator struct {
	backend llm.Completer
	logger  *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger used to record generation outcomes
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Generator backed by the given completer
func New(backend llm.Completer, opts ...Option) *Generator {
	g := &Generator{
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a GeneratedResume for input. The only error is a
// *GenerationFailedError when the backend call itself fails. A response that
// is empty, not JSON, or missing required structure is replaced as a whole by
// the fallback document. The header of every result carries the input's
// name, title and contact verbatim.
func (g *Generator) Generate(ctx context.Context, input types.UserData, templateID string) (*types.GeneratedResume, error) {
	prompt, err := BuildPrompt(input)
	if err != nil {
		return nil, &GenerationFailedError{Message: "failed to build prompt", Cause: err}
	}

	text, err := g.backend.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("Text generation backend unavailable", zap.Error(err))
		return nil, &GenerationFailedError{Message: "text generation backend unavailable", Cause: err}
	}

	doc, err := ParseCandidate(text)
	if err != nil {
		g.logger.Info("Using fallback resume content",
			zap.String("outcome", OutcomeFallback),
			zap.String("reason", err.Error()),
			zap.Int("response_bytes", len(text)))
		fallback := Fallback(input)
		return types.NewGeneratedResume(fallback, templateID), nil
	}

	doc.Header = input.Header()
	g.logger.Info("Generated resume content",
		zap.String("outcome", OutcomeGenerated),
		zap.Int("experience", len(doc.Experience)),
		zap.Int("projects", len(doc.Projects)))

	return types.NewGeneratedResume(*doc, templateID), nil
}

// BuildPrompt renders the generation prompt for input. Header values appear
// both as plain text and JSON-quoted inside the response skeleton.
func BuildPrompt(input types.UserData) (string, error) {
	data := map[string]string{
		"Name":        input.Name,
		"Title":       input.Title,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"Location":    input.Location,
		"Description": input.Description,
		"Skills":      strings.Join(input.Skills, ", "),
		"GitHub":      orNotProvided(input.GitHub),
		"LinkedIn":    orNotProvided(input.LinkedIn),
	}

	quoted := map[string]string{
		"NameJSON":     input.Name,
		"TitleJSON":    input.Title,
		"EmailJSON":    input.Email,
		"PhoneJSON":    input.Phone,
		"LocationJSON": input.Location,
		"GitHubJSON":   input.GitHub,
		"LinkedInJSON": input.LinkedIn,
	}
	for key, value := range quoted {
		b, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		data[key] = string(b)
	}

	return prompts.Render("generation.json", "generate-resume", data)
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}
