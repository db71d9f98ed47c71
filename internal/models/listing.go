package models

import "time"

// Listing is the slice of a marketplace listing the moderation engine needs:
// ownership (to resolve the reported user) and image URLs (to clean up
// storage on takedown). Listing CRUD itself lives elsewhere.
type Listing struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Title      string    `json:"title" bson:"title"`
	CoverPhoto string    `json:"cover_photo,omitempty" bson:"cover_photo,omitempty"`
	ImageURLs  []string  `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
