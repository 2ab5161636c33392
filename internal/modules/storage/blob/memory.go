package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/perfectdish/core/internal/models"
)

// MemoryStore is an in-process Store used by tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	meta    Blob
	content []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string]memoryBlob{}}
}

func (s *MemoryStore) Store(ctx context.Context, content io.Reader, originalFilename, contentType string) (Blob, error) {
	payload, err := io.ReadAll(content)
	if err != nil {
		return Blob{}, err
	}
	meta := Blob{
		Filename:    NewFilename(originalFilename),
		ContentType: contentType,
		Size:        int64(len(payload)),
		UploadedAt:  time.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[meta.Filename] = memoryBlob{meta: meta, content: payload}
	return meta, nil
}

func (s *MemoryStore) Open(ctx context.Context, filename string) (io.ReadCloser, Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[filename]
	if !ok {
		return nil, Blob{}, models.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(b.content)), b.meta, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Blob, 0, len(s.blobs))
	for _, b := range s.blobs {
		out = append(out, b.meta)
	}
	return out, nil
}
