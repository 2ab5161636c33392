package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeModel is a recipe embedded within exactly one UserModel document.
// It has no standalone collection; the id is generated at append time and is
// the only stable address for detail and delete routes.
type RecipeModel struct {
	ID        primitive.ObjectID `bson:"id"         json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created"`

	Title           string `bson:"title"             json:"title"`
	Serving         int    `bson:"serving"           json:"serving"`
	PrepareTimeHour int    `bson:"prepare_time_hour" json:"prepare_time_hour"`
	PrepareTimeMin  int    `bson:"prepare_time_min"  json:"prepare_time_min"`
	CookTimeHour    int    `bson:"cook_time_hour"    json:"cook_time_hour"`
	CookTimeMin     int    `bson:"cook_time_min"     json:"cook_time_min"`
	TotalTimeHour   int    `bson:"total_time_hour"   json:"total_time_hour"`
	TotalTimeMin    int    `bson:"total_time_min"    json:"total_time_min"`

	Introduction string   `bson:"introduction" json:"introduction"`
	Ingredients  []string `bson:"ingredients"  json:"ingredients"`
	Instructions []string `bson:"instructions" json:"instructions"`

	Image *ImageRef `bson:"image,omitempty" json:"image,omitempty"`
}

// ImageRef points into the blob store. The blob outlives the recipe; nothing
// here cascades deletion.
type ImageRef struct {
	Filename    string `bson:"filename"     json:"filename"`
	ContentType string `bson:"content_type" json:"content_type"`
	Size        int64  `bson:"size"         json:"size"`
}

// HasImage reports whether the recipe references an uploaded image.
func (r *RecipeModel) HasImage() bool { return r.Image != nil && r.Image.Filename != "" }
