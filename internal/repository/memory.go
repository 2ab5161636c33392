package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perfectdish/core/internal/models"
)

// MemoryStore is an in-process Store used by unit and handler tests. It
// mirrors the MongoStore semantics, including the uniqueness invariants.
type MemoryStore struct {
	mu    sync.Mutex
	users []*models.UserModel
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) CreateLocal(ctx context.Context, username, passwordHash string) (*models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return nil, models.ErrDuplicateUsername
		}
	}
	now := time.Now()
	u := &models.UserModel{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Password:  passwordHash,
		Recipes:   []models.RecipeModel{},
	}
	s.users = append(s.users, u)
	return copyUser(u), nil
}

func (s *MemoryStore) FindOrCreateByExternalID(ctx context.Context, provider, externalID, displayName string) (*models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if externalIDOf(u, provider) == externalID {
			return copyUser(u), nil
		}
	}

	username := strings.TrimSpace(displayName)
	if username == "" {
		username = provider + "-user"
	}
	for _, u := range s.users {
		if u.Username == username {
			username = fmt.Sprintf("%s-%s", username, primitive.NewObjectID().Hex()[18:])
			break
		}
	}

	now := time.Now()
	u := &models.UserModel{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Recipes:   []models.RecipeModel{},
	}
	switch provider {
	case models.ProviderGoogle:
		u.GoogleID = externalID
	case models.ProviderFacebook:
		u.FacebookID = externalID
	default:
		return nil, fmt.Errorf("unknown oauth provider %q", provider)
	}
	s.users = append(s.users, u)
	return copyUser(u), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.locate(id)), nil
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Append(ctx context.Context, ownerID primitive.ObjectID, recipe models.RecipeModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.locate(ownerID)
	if u == nil {
		return models.ErrOwnerNotFound
	}
	u.Recipes = append(u.Recipes, recipe)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*models.UserModel, *models.RecipeModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.locate(ownerID)
	if u == nil {
		return nil, nil, models.ErrOwnerNotFound
	}
	r := u.RecipeByID(recipeID)
	if r == nil {
		return nil, nil, models.ErrRecipeNotFound
	}
	cu := copyUser(u)
	cr := *r
	return cu, &cr, nil
}

func (s *MemoryStore) GetByIndex(ctx context.Context, ownerID primitive.ObjectID, index int) (*models.RecipeModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.locate(ownerID)
	if u == nil {
		return nil, models.ErrOwnerNotFound
	}
	if index < 0 || index >= len(u.Recipes) {
		return nil, models.ErrRecipeNotFound
	}
	r := u.Recipes[index]
	return &r, nil
}

func (s *MemoryStore) RemoveByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.locate(ownerID)
	if u == nil {
		return models.ErrOwnerNotFound
	}
	for i := range u.Recipes {
		if u.Recipes[i].ID == recipeID {
			u.Recipes = append(u.Recipes[:i], u.Recipes[i+1:]...)
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrRecipeNotFound
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.UserModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest identity first, matching MongoStore's _id sort.
	out := make([]models.UserModel, 0, len(s.users))
	for i := len(s.users) - 1; i >= 0; i-- {
		out = append(out, *copyUser(s.users[i]))
	}
	return out, nil
}

func (s *MemoryStore) SearchByTitle(ctx context.Context, query string) ([]RecipeHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []RecipeHit{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := []RecipeHit{}
	for _, u := range s.users {
		for _, r := range u.Recipes {
			if TitleMatches(r.Title, query) {
				hits = append(hits, RecipeHit{Owner: *copyUser(u), Recipe: r})
			}
		}
	}
	return hits, nil
}

func (s *MemoryStore) locate(id primitive.ObjectID) *models.UserModel {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func externalIDOf(u *models.UserModel, provider string) string {
	switch provider {
	case models.ProviderGoogle:
		return u.GoogleID
	case models.ProviderFacebook:
		return u.FacebookID
	}
	return ""
}

func copyUser(u *models.UserModel) *models.UserModel {
	if u == nil {
		return nil
	}
	cu := *u
	cu.Recipes = append([]models.RecipeModel(nil), u.Recipes...)
	return &cu
}
