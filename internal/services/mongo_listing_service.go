package services

import (
	"context"
	"crypto/tls"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trove/backend/internal/models"
)

// MongoListingService is the engine's narrow view of marketplace listings:
// resolving the owner of a reported listing, and taking a listing down as the
// content half of enforcement.
type MongoListingService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoListingService(ctx context.Context, mongoURI, dbName string) (*MongoListingService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(dbName)
	col := db.Collection("listings")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})

	return &MongoListingService{client: client, db: db, col: col}, nil
}

func (s *MongoListingService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoListingService) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err == mongo.ErrNoDocuments {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, persistErr("listings: get", err)
	}
	return &listing, nil
}

// TakeDown deletes the listing and returns its image URLs for storage
// cleanup. Idempotent: an already-removed listing returns no URLs and no
// error, so enforcement repairs can re-run safely.
func (s *MongoListingService) TakeDown(ctx context.Context, id string) ([]string, error) {
	var listing models.Listing
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&listing)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("listings: take down", err)
	}

	urls := make([]string, 0, len(listing.ImageURLs)+1)
	if listing.CoverPhoto != "" {
		urls = append(urls, listing.CoverPhoto)
	}
	for _, u := range listing.ImageURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
