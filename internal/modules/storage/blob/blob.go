// Package blob is content storage for uploaded recipe images. Filenames are
// generated, never caller-chosen, so a stored blob is never overwritten.
// Blobs are never deleted: a recipe or identity removal leaves its images
// behind (orphan-retention policy).
package blob

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Blob is stored image metadata addressed by generated filename.
type Blob struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store is the blob storage surface. Implementations: GridFS (default) and
// S3. The store is constructed during startup and injected into handlers.
type Store interface {
	// Store writes content under a fresh random filename that preserves the
	// original extension.
	Store(ctx context.Context, content io.Reader, originalFilename, contentType string) (Blob, error)

	// Open returns a stream of the blob bytes plus its metadata.
	// Returns models.ErrBlobNotFound for an unknown filename.
	Open(ctx context.Context, filename string) (io.ReadCloser, Blob, error)

	// ListAll returns metadata for every stored blob.
	ListAll(ctx context.Context) ([]Blob, error)
}

// NewFilename generates a collision-resistant filename that preserves the
// original extension.
func NewFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// DetectContentType sniffs the MIME type from the fallback header, extension,
// or raw payload bytes, in that priority order.
func DetectContentType(filename string, payload []byte, fallback string) string {
	contentType := strings.TrimSpace(fallback)
	if contentType != "" {
		return contentType
	}
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(payload) > 0 {
		return http.DetectContentType(payload)
	}
	return "application/octet-stream"
}
