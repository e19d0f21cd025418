package docpath

import (
	"errors"
	"fmt"
)

// ErrInvalidPath matches every *InvalidPathError via errors.Is
var ErrInvalidPath = errors.New("invalid path")

// InvalidPathError reports a path that does not resolve through a document,
// or a leaf value that cannot be stored at the addressed position.
type InvalidPathError struct {
	Path   Path
	Index  int // element of Path that failed; -1 when the path as a whole is rejected
	Reason string
}

func (e *InvalidPathError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid path %s at element %d: %s", e.Path, e.Index, e.Reason)
}

// Is reports whether target is ErrInvalidPath
func (e *InvalidPathError) Is(target error) bool {
	return target == ErrInvalidPath
}

func invalid(path Path, index int, format string, args ...any) *InvalidPathError {
	return &InvalidPathError{Path: path, Index: index, Reason: fmt.Sprintf(format, args...)}
}
