package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserModel is a registered identity. Local credentials and OAuth links may
// coexist on the same document; recipes are embedded in display order.
type UserModel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at"    json:"created"`
	UpdatedAt time.Time          `bson:"updated_at"    json:"modified"`

	Username   string `bson:"username"              json:"username"`
	Password   string `bson:"password,omitempty"    json:"-"` // bcrypt hash, local accounts only
	GoogleID   string `bson:"google_id,omitempty"   json:"-"`
	FacebookID string `bson:"facebook_id,omitempty" json:"-"`

	Recipes []RecipeModel `bson:"recipes" json:"recipes"`
}

// HasLocalCredential reports whether the account can log in with a password.
func (u *UserModel) HasLocalCredential() bool { return u.Password != "" }

// RecipeByID returns the embedded recipe with the given id, or nil.
func (u *UserModel) RecipeByID(id primitive.ObjectID) *RecipeModel {
	for i := range u.Recipes {
		if u.Recipes[i].ID == id {
			return &u.Recipes[i]
		}
	}
	return nil
}

// OAuth provider identifiers persisted on UserModel.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)
