package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perfectdish/core/internal/models"
)

// IdentityStore persists user identities across the three credential origins
// (local password, Google, Facebook).
type IdentityStore interface {
	// CreateLocal inserts a password-backed identity. The password must
	// already be hashed. Returns models.ErrDuplicateUsername on conflict.
	CreateLocal(ctx context.Context, username, passwordHash string) (*models.UserModel, error)

	// FindOrCreateByExternalID resolves an OAuth profile to an identity,
	// creating it on first sight. Idempotent: the same (provider, externalID)
	// always resolves to the same identity.
	FindOrCreateByExternalID(ctx context.Context, provider, externalID, displayName string) (*models.UserModel, error)

	// FindByID returns (nil, nil) when no identity exists.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserModel, error)

	// FindByUsername returns (nil, nil) when no identity exists.
	FindByUsername(ctx context.Context, username string) (*models.UserModel, error)
}

// RecipeHit pairs a recipe with its owning identity in listing and search
// results.
type RecipeHit struct {
	Owner  models.UserModel
	Recipe models.RecipeModel
}

// RecipeStore manages the recipe sequence embedded in each identity document.
type RecipeStore interface {
	// Append pushes a recipe onto the owner's sequence, preserving insertion
	// order. Returns models.ErrOwnerNotFound for an unknown owner.
	Append(ctx context.Context, ownerID primitive.ObjectID, recipe models.RecipeModel) error

	// GetByID returns the owner and the addressed recipe.
	GetByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*models.UserModel, *models.RecipeModel, error)

	// GetByIndex addresses a recipe by its zero-based position at read time.
	// Positions shift when an earlier recipe is removed; callers that need a
	// stable address must use GetByID.
	GetByIndex(ctx context.Context, ownerID primitive.ObjectID, index int) (*models.RecipeModel, error)

	// RemoveByID pulls exactly one recipe out of the owner's sequence,
	// leaving the relative order of the rest intact.
	RemoveByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) error

	// ListAll returns every identity with its recipes, newest identity first.
	ListAll(ctx context.Context) ([]models.UserModel, error)

	// SearchByTitle performs a case-insensitive substring match against
	// recipe titles.
	SearchByTitle(ctx context.Context, query string) ([]RecipeHit, error)
}

// Store is the full persistence surface backed by the users collection.
type Store interface {
	IdentityStore
	RecipeStore
}
