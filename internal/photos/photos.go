// Package photos stores the optional profile photo uploaded during intake.
// The session keeps only the returned key; the bytes live in a Store.
package photos

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxPhotoBytes caps an uploaded photo
const MaxPhotoBytes = 5 << 20

// ErrUnsupportedType is returned for uploads that are not PNG, JPEG, GIF or WebP
var ErrUnsupportedType = errors.New("unsupported photo type")

// ErrTooLarge is returned for uploads over MaxPhotoBytes
var ErrTooLarge = errors.New("photo too large")

// ErrInvalidKey is returned for keys that escape the store namespace
var ErrInvalidKey = errors.New("invalid photo key")

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store saves and opens photos by key
type Store interface {
	Save(ctx context.Context, sessionID string, r io.Reader) (key string, mimeType string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// upload is a sniffed and size-checked photo ready to be written
type upload struct {
	key      string
	mimeType string
	body     io.Reader
}

// prepare sniffs the content type of r and derives the storage key.
// The returned body re-reads the sniffed bytes and fails once more than
// MaxPhotoBytes have been read.
func prepare(sessionID string, r io.Reader) (*upload, error) {
	var sniff [512]byte
	n, err := io.ReadFull(r, sniff[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read sniff: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUnsupportedType)
	}

	mimeType := http.DetectContentType(sniff[:n])
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	owner := sanitizeSegment(sessionID)
	if owner == "" {
		owner = "anonymous"
	}

	return &upload{
		key:      path.Join(owner, uuid.NewString()+ext),
		mimeType: mimeType,
		body:     &limitedReader{r: io.MultiReader(bytes.NewReader(sniff[:n]), r), remaining: MaxPhotoBytes},
	}, nil
}

// CleanKey rejects keys that are absolute or climb out of the store
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.TrimSpace(key))
	if clean == "." || clean == "" || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// ContentType returns the mime type implied by a key's extension
func ContentType(key string) string {
	ext := path.Ext(key)
	for mimeType, e := range allowedTypes {
		if e == ext {
			return mimeType
		}
	}
	return "application/octet-stream"
}

// DataURI reads the photo at key and encodes it for inline embedding, so
// rendered HTML stays self-contained for PDF export
func DataURI(ctx context.Context, store Store, key string) (string, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return "", ErrTooLarge
	}
	return "data:" + ContentType(key) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
