package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/perfectdish/core/internal/models"
)

const usersCollection = "users"

// MongoStore implements Store on a single users collection. Every mutation is
// a single document update, so document-level atomicity is all the isolation
// this store provides.
type MongoStore struct {
	users *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{users: db.Collection(usersCollection)}
}

// EnsureIndexes creates the uniqueness indexes the identity invariants rely
// on. Called once during startup, before the server accepts requests.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	sparse := options.Index().SetUnique(true).SetSparse(true)
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: sparse},
		{Keys: bson.D{{Key: "facebook_id", Value: 1}}, Options: sparse},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateLocal(ctx context.Context, username, passwordHash string) (*models.UserModel, error) {
	now := time.Now()
	u := models.UserModel{
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Password:  passwordHash,
		Recipes:   []models.RecipeModel{},
	}
	res, err := s.users.InsertOne(ctx, &u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return &u, nil
}

func (s *MongoStore) FindOrCreateByExternalID(ctx context.Context, provider, externalID, displayName string) (*models.UserModel, error) {
	field, err := providerField(provider)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(displayName)
	if username == "" {
		username = provider + "-user"
	}

	now := time.Now()
	filter := bson.M{field: externalID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	// The chosen username may already belong to someone else; retry with a
	// random suffix until the unique index accepts it.
	for attempt := 0; attempt < 3; attempt++ {
		candidate := username
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%s", username, primitive.NewObjectID().Hex()[18:])
		}
		update := bson.M{
			"$setOnInsert": bson.M{
				"username":   candidate,
				"created_at": now,
				"updated_at": now,
				"recipes":    []models.RecipeModel{},
			},
		}
		var u models.UserModel
		err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
		if err == nil {
			return &u, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		return nil, fmt.Errorf("find or create %s identity: %w", provider, err)
	}
	return nil, fmt.Errorf("find or create %s identity: could not pick a unique username for %q", provider, username)
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserModel, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) Append(ctx context.Context, ownerID primitive.ObjectID, recipe models.RecipeModel) error {
	res, err := s.users.UpdateByID(ctx, ownerID, bson.M{
		"$push": bson.M{"recipes": recipe},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("append recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrOwnerNotFound
	}
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*models.UserModel, *models.RecipeModel, error) {
	owner, err := s.FindByID(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if owner == nil {
		return nil, nil, models.ErrOwnerNotFound
	}
	recipe := owner.RecipeByID(recipeID)
	if recipe == nil {
		return nil, nil, models.ErrRecipeNotFound
	}
	return owner, recipe, nil
}

func (s *MongoStore) GetByIndex(ctx context.Context, ownerID primitive.ObjectID, index int) (*models.RecipeModel, error) {
	owner, err := s.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, models.ErrOwnerNotFound
	}
	if index < 0 || index >= len(owner.Recipes) {
		return nil, models.ErrRecipeNotFound
	}
	return &owner.Recipes[index], nil
}

func (s *MongoStore) RemoveByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) error {
	// The filter requires the recipe to be present, so a match means the pull
	// removed it. ModifiedCount cannot carry that signal here: the updated_at
	// write alone would count as a modification.
	filter := bson.M{"_id": ownerID, "recipes.id": recipeID}
	res, err := s.users.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"recipes": bson.M{"id": recipeID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("remove recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		owner, err := s.FindByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return models.ErrOwnerNotFound
		}
		return models.ErrRecipeNotFound
	}
	return nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]models.UserModel, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.UserModel
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) SearchByTitle(ctx context.Context, query string) ([]RecipeHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []RecipeHit{}, nil
	}

	filter := bson.M{"recipes": bson.M{"$elemMatch": bson.M{
		"title": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"},
	}}}
	cur, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.UserModel
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	hits := []RecipeHit{}
	for _, u := range users {
		for _, r := range u.Recipes {
			if TitleMatches(r.Title, query) {
				hits = append(hits, RecipeHit{Owner: u, Recipe: r})
			}
		}
	}
	return hits, nil
}

// TitleMatches is the single search normalization policy: case-insensitive
// substring match.
func TitleMatches(title, query string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(query))
}

func providerField(provider string) (string, error) {
	switch provider {
	case models.ProviderGoogle:
		return "google_id", nil
	case models.ProviderFacebook:
		return "facebook_id", nil
	default:
		return "", fmt.Errorf("unknown oauth provider %q", provider)
	}
}
