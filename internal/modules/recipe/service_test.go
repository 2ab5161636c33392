package recipe

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perfectdish/core/internal/models"
	"github.com/perfectdish/core/internal/modules/storage/blob"
	"github.com/perfectdish/core/internal/repository"
)

func newTestService(t *testing.T) (*Service, *repository.MemoryStore, *blob.MemoryStore, primitive.ObjectID) {
	t.Helper()
	store := repository.NewMemoryStore()
	blobs := blob.NewMemoryStore()
	owner, err := store.CreateLocal(context.Background(), "alice", "hash")
	require.NoError(t, err)
	return NewService(store, blobs), store, blobs, owner.ID
}

func TestComposeWithoutImage(t *testing.T) {
	svc, store, _, ownerID := newTestService(t)
	ctx := context.Background()

	r, err := svc.Compose(ctx, ownerID, Draft{Title: "Pancakes", Serving: 2}, nil)
	require.NoError(t, err)
	assert.False(t, r.ID.IsZero())
	assert.Nil(t, r.Image)

	u, err := store.FindByID(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, u.Recipes, 1)
	assert.Equal(t, "Pancakes", u.Recipes[0].Title)
}

func TestComposeWithImage(t *testing.T) {
	svc, _, blobs, ownerID := newTestService(t)
	ctx := context.Background()

	upload := &Upload{
		Content:     strings.NewReader("fake image bytes"),
		Filename:    "dish.jpg",
		ContentType: "image/jpeg",
	}
	r, err := svc.Compose(ctx, ownerID, Draft{Title: "Omelette"}, upload)
	require.NoError(t, err)
	require.NotNil(t, r.Image)
	assert.Equal(t, "image/jpeg", r.Image.ContentType)
	assert.True(t, strings.HasSuffix(r.Image.Filename, ".jpg"))
	assert.NotEqual(t, "dish.jpg", r.Image.Filename, "stored name must be generated, not caller-controlled")

	rc, meta, err := blobs.Open(ctx, r.Image.Filename)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(len("fake image bytes")), meta.Size)
}

func TestComposeRequiresTitle(t *testing.T) {
	svc, _, _, ownerID := newTestService(t)

	_, err := svc.Compose(context.Background(), ownerID, Draft{}, nil)
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestComposeUnknownOwner(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Compose(context.Background(), primitive.NewObjectID(), Draft{Title: "Soup"}, nil)
	assert.ErrorIs(t, err, models.ErrOwnerNotFound)
}

func TestDetailAndOrder(t *testing.T) {
	svc, _, _, ownerID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Compose(ctx, ownerID, Draft{Title: "First"}, nil)
	require.NoError(t, err)
	second, err := svc.Compose(ctx, ownerID, Draft{Title: "Second"}, nil)
	require.NoError(t, err)

	owner, got, err := svc.Detail(ctx, ownerID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner.Username)
	assert.Equal(t, "Second", got.Title)

	// Positions follow insertion order.
	byIndex, err := svc.DetailByIndex(ctx, ownerID, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, byIndex.ID)

	_, err = svc.DetailByIndex(ctx, ownerID, 5)
	assert.ErrorIs(t, err, models.ErrRecipeNotFound)
}

func TestRemove(t *testing.T) {
	svc, store, _, ownerID := newTestService(t)
	ctx := context.Background()

	a, err := svc.Compose(ctx, ownerID, Draft{Title: "A"}, nil)
	require.NoError(t, err)
	b, err := svc.Compose(ctx, ownerID, Draft{Title: "B"}, nil)
	require.NoError(t, err)
	c, err := svc.Compose(ctx, ownerID, Draft{Title: "C"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, ownerID, ownerID, b.ID))

	u, err := store.FindByID(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, u.Recipes, 2)
	assert.Equal(t, a.ID, u.Recipes[0].ID)
	assert.Equal(t, c.ID, u.Recipes[1].ID)

	err = svc.Remove(ctx, ownerID, ownerID, b.ID)
	assert.ErrorIs(t, err, models.ErrRecipeNotFound)
}

func TestRemoveRejectsNonOwner(t *testing.T) {
	svc, store, _, ownerID := newTestService(t)
	ctx := context.Background()

	r, err := svc.Compose(ctx, ownerID, Draft{Title: "Mine"}, nil)
	require.NoError(t, err)

	stranger, err := store.CreateLocal(ctx, "mallory", "hash")
	require.NoError(t, err)

	err = svc.Remove(ctx, stranger.ID, ownerID, r.ID)
	assert.ErrorIs(t, err, models.ErrNotOwner)

	// The recipe survives the rejected attempt.
	_, got, err := svc.Detail(ctx, ownerID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestSearch(t *testing.T) {
	svc, store, _, ownerID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Compose(ctx, ownerID, Draft{Title: "Chocolate Cake"}, nil)
	require.NoError(t, err)
	_, err = svc.Compose(ctx, ownerID, Draft{Title: "Carrot Soup"}, nil)
	require.NoError(t, err)

	bob, err := store.CreateLocal(ctx, "bob", "hash")
	require.NoError(t, err)
	_, err = svc.Compose(ctx, bob.ID, Draft{Title: "chocolate chip cookies"}, nil)
	require.NoError(t, err)

	hits, err := svc.Search(ctx, "CHOCO")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	titles := []string{hits[0].Recipe.Title, hits[1].Recipe.Title}
	assert.Contains(t, titles, "Chocolate Cake")
	assert.Contains(t, titles, "chocolate chip cookies")

	none, err := svc.Search(ctx, "sushi")
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHomeNewestOwnerFirst(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	bob, err := store.CreateLocal(ctx, "bob", "hash")
	require.NoError(t, err)

	users, err := svc.Home(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, bob.ID, users[0].ID)
	assert.Equal(t, "alice", users[1].Username)
}

func TestProfileUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Profile(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrOwnerNotFound)
}
