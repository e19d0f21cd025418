// Package docpath reads and writes leaves of nested documents addressed by a
// Path of field names and slice indices. Writes are copy-on-write: every
// ancestor of the target leaf is a fresh value and the input is never mutated.
package docpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Path is an ordered walk from a document root to a leaf. Elements are
// string keys (JSON field names or map keys) or int indices. Numeric strings
// are accepted as indices when the current node is a slice.
type Path []any

// String renders the path as a JSON array, e.g. ["experience",0,"title"]
func (p Path) String() string {
	b, err := json.Marshal([]any(p))
	if err != nil {
		return fmt.Sprintf("%v", []any(p))
	}
	return string(b)
}

// Append returns a new path with elems added; p is not modified
func (p Path) Append(elems ...any) Path {
	out := make(Path, 0, len(p)+len(elems))
	out = append(out, p...)
	return append(out, elems...)
}

// UnmarshalJSON decodes a JSON array of strings and integral numbers
func (p *Path) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("path must be a JSON array: %w", err)
	}

	out := make(Path, 0, len(raw))
	for i, elem := range raw {
		switch v := elem.(type) {
		case string:
			out = append(out, v)
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return fmt.Errorf("path element %d: %q is not an integer index", i, v.String())
			}
			out = append(out, int(n))
		default:
			return fmt.Errorf("path element %d: unsupported type %T", i, elem)
		}
	}
	*p = out
	return nil
}

// ParsePath parses either a JSON array (`["skills",0]`) or a dotted form
// (`experience.0.title`). Dotted segments made only of digits become indices.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("path is empty")
	}

	if strings.HasPrefix(s, "[") {
		var p Path
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, err
		}
		return p, nil
	}

	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("path %q has an empty segment", s)
		}
		if n, err := strconv.Atoi(part); err == nil {
			p = append(p, n)
			continue
		}
		p = append(p, part)
	}
	return p, nil
}

// indexOf interprets a path element as a non-negative slice index that fits
// in an int
func indexOf(elem any) (int, bool) {
	switch v := elem.(type) {
	case int:
		return v, v >= 0
	case int32:
		return int(v), v >= 0
	case int64:
		if v < 0 || uint64(v) > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint32:
		if uint64(v) > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float64:
		// float64(math.MaxInt) rounds up, so the bound must be exclusive
		if v != math.Trunc(v) || v < 0 || v >= float64(math.MaxInt) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return indexOf(n)
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil && n >= 0
	default:
		return 0, false
	}
}

// keyOf interprets a path element as a field or map key
func keyOf(elem any) (string, bool) {
	s, ok := elem.(string)
	return s, ok
}
