package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// ParseCandidate turns raw backend text into a ContentDocument. The
// candidate is accepted only if every check passes; the returned error is a
// *ParseError or *ValidationError describing the first failure.
func ParseCandidate(text string) (*types.ContentDocument, error) {
	cleaned := llm.CleanJSONBlock(text)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response"}
	}
	raw := []byte(cleaned)

	if err := checkSingleObject(raw); err != nil {
		return nil, err
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	if err := checkHeader(probe); err != nil {
		return nil, err
	}

	if err := schemas.ValidateDocument(raw); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) && len(schemaErr.Errors) > 0 {
			first := schemaErr.Errors[0]
			return nil, &ValidationError{Field: first.Field, Message: first.Message, Cause: err}
		}
		return nil, &ValidationError{Message: "document does not match schema", Cause: err}
	}

	var doc types.ContentDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Message: "failed to decode content document", Cause: err}
	}
	if err := doc.Validate(); err != nil {
		return nil, &ValidationError{Message: "content document invariants violated", Cause: err}
	}
	return &doc, nil
}

// checkSingleObject requires exactly one JSON object with no duplicate keys
// and nothing after it
func checkSingleObject(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &ParseError{Message: "response is not a JSON object"}
	}
	if err := walkObject(dec, ""); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return &ParseError{Message: "unexpected content after JSON object"}
	}
	return nil
}

// walkObject consumes an object whose opening brace has been read
func walkObject(dec *json.Decoder, at string) error {
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return &ParseError{Message: "failed to parse JSON response", Cause: err}
		}
		key, ok := tok.(string)
		if !ok {
			return &ParseError{Message: "object key is not a string"}
		}
		field := key
		if at != "" {
			field = at + "." + key
		}
		if _, dup := seen[key]; dup {
			return &ParseError{Message: fmt.Sprintf("duplicate key %q", field)}
		}
		seen[key] = struct{}{}
		if err := walkValue(dec, field); err != nil {
			return err
		}
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	return nil
}

func walkValue(dec *json.Decoder, at string) error {
	tok, err := dec.Token()
	if err != nil {
		return &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		return walkObject(dec, at)
	case '[':
		for i := 0; dec.More(); i++ {
			if err := walkValue(dec, fmt.Sprintf("%s[%d]", at, i)); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return &ParseError{Message: "failed to parse JSON response", Cause: err}
		}
	}
	return nil
}

// checkHeader is the minimal structural gate: a header with a contact block
// and non-empty name and title
func checkHeader(doc map[string]any) error {
	header, ok := doc["header"].(map[string]any)
	if !ok {
		return &ValidationError{Field: "header", Message: "header is required"}
	}
	if _, ok := header["contact"].(map[string]any); !ok {
		return &ValidationError{Field: "header.contact", Message: "contact is required"}
	}
	for _, key := range []string{"name", "title"} {
		value, _ := header[key].(string)
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: "header." + key, Message: key + " is required"}
		}
	}
	return nil
}
