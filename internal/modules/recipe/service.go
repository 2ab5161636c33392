package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perfectdish/core/internal/models"
	"github.com/perfectdish/core/internal/modules/storage/blob"
	"github.com/perfectdish/core/internal/repository"
)

// Upload carries an image from the multipart form into the blob store.
type Upload struct {
	Content     io.Reader
	Filename    string
	ContentType string
}

// ErrMissingTitle rejects a draft without the one required field.
var ErrMissingTitle = errors.New("recipe title is required")

// Service owns recipe composition, lookup, search, and removal.
type Service struct {
	store repository.Store
	blobs blob.Store
}

func NewService(store repository.Store, blobs blob.Store) *Service {
	return &Service{store: store, blobs: blobs}
}

// Compose stores the optional image first, then appends the recipe to its
// owner. A failure between the two leaves an orphaned blob behind; orphans
// are retained, never reclaimed.
func (s *Service) Compose(ctx context.Context, ownerID primitive.ObjectID, draft Draft, upload *Upload) (*models.RecipeModel, error) {
	if draft.Title == "" {
		return nil, ErrMissingTitle
	}

	r := models.RecipeModel{
		ID:              primitive.NewObjectID(),
		CreatedAt:       time.Now(),
		Title:           draft.Title,
		Serving:         draft.Serving,
		PrepareTimeHour: draft.PrepareTimeHour,
		PrepareTimeMin:  draft.PrepareTimeMin,
		CookTimeHour:    draft.CookTimeHour,
		CookTimeMin:     draft.CookTimeMin,
		TotalTimeHour:   draft.TotalTimeHour,
		TotalTimeMin:    draft.TotalTimeMin,
		Introduction:    draft.Introduction,
		Ingredients:     draft.Ingredients,
		Instructions:    draft.Instructions,
	}

	if upload != nil {
		stored, err := s.blobs.Store(ctx, upload.Content, upload.Filename, upload.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		r.Image = &models.ImageRef{
			Filename:    stored.Filename,
			ContentType: stored.ContentType,
			Size:        stored.Size,
		}
	}

	if err := s.store.Append(ctx, ownerID, r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Home lists every identity with its recipes, newest identity first.
func (s *Service) Home(ctx context.Context) ([]models.UserModel, error) {
	return s.store.ListAll(ctx)
}

// Search matches recipe titles case-insensitively on a substring.
func (s *Service) Search(ctx context.Context, query string) ([]repository.RecipeHit, error) {
	return s.store.SearchByTitle(ctx, query)
}

// Detail returns a recipe and its owner, addressed by stable recipe id.
func (s *Service) Detail(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*models.UserModel, *models.RecipeModel, error) {
	return s.store.GetByID(ctx, ownerID, recipeID)
}

// DetailByIndex resolves a recipe by its zero-based position in the owner's
// collection. Only the legacy link format still addresses recipes this way.
func (s *Service) DetailByIndex(ctx context.Context, ownerID primitive.ObjectID, index int) (*models.RecipeModel, error) {
	return s.store.GetByIndex(ctx, ownerID, index)
}

// Remove deletes a recipe after checking the caller owns it. The image blob,
// if any, stays in the store.
func (s *Service) Remove(ctx context.Context, callerID, ownerID, recipeID primitive.ObjectID) error {
	if callerID != ownerID {
		return models.ErrNotOwner
	}
	return s.store.RemoveByID(ctx, ownerID, recipeID)
}

// Profile returns an identity with its recipe collection.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserModel, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.ErrOwnerNotFound
	}
	return u, nil
}
