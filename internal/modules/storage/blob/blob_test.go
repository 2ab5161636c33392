package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfectdish/core/internal/models"
)

func TestNewFilename(t *testing.T) {
	name := NewFilename("My Dish.JPG")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.Len(t, name, 32+len(".jpg"))

	assert.True(t, strings.HasSuffix(NewFilename("noext"), ".dat"))
	assert.True(t, strings.HasSuffix(NewFilename(""), ".dat"))
	assert.True(t, strings.HasSuffix(NewFilename("x.averylongextension"), ".dat"))

	assert.NotEqual(t, NewFilename("a.png"), NewFilename("a.png"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/webp", DetectContentType("x.png", nil, "image/webp"))
	assert.Equal(t, "image/png", DetectContentType("shot.PNG", nil, ""))
	assert.Equal(t, "application/octet-stream", DetectContentType("", nil, ""))

	gif := []byte("GIF89a\x01\x00\x01\x00")
	assert.Equal(t, "image/gif", DetectContentType("", gif, ""))
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stored, err := s.Store(ctx, strings.NewReader("payload"), "photo.jpeg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Filename, ".jpeg"))
	assert.Equal(t, int64(7), stored.Size)

	rc, meta, err := s.Open(ctx, stored.Filename)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "image/jpeg", meta.ContentType)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStoreOpenUnknown(t *testing.T) {
	s := NewMemoryStore()

	_, _, err := s.Open(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, models.ErrBlobNotFound)
}

func TestMemoryStoreNamesDoNotCollide(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.Store(ctx, strings.NewReader("one"), "same.png", "image/png")
	require.NoError(t, err)
	b, err := s.Store(ctx, strings.NewReader("two"), "same.png", "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, a.Filename, b.Filename)

	rc, _, err := s.Open(ctx, a.Filename)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "one", string(data))
}
