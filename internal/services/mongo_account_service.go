package services

import (
	"context"
	"crypto/tls"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trove/backend/internal/models"
)

// MongoAccountService stores per-user account restriction state. The
// enforcement executor is its only writer; everything else only reads.
type MongoAccountService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoAccountService(ctx context.Context, mongoURI, dbName string) (*MongoAccountService, error) {
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
	col := db.Collection("accounts")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoAccountService{client: client, db: db, col: col}, nil
}

func (s *MongoAccountService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetRestriction returns the restriction state for a user. Users with no
// document yet read as unrestricted.
func (s *MongoAccountService) GetRestriction(ctx context.Context, userID string) (*models.AccountRestriction, error) {
	var state models.AccountRestriction
	err := s.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&state)
	if err == mongo.ErrNoDocuments {
		return &models.AccountRestriction{UserID: userID}, nil
	}
	if err != nil {
		return nil, persistErr("accounts: get restriction", err)
	}
	return &state, nil
}

// SetRestriction writes the full restriction state for a user. A ban clears
// the suspension fields; callers pass the complete desired state so a
// re-applied write (repair) converges to the same document.
func (s *MongoAccountService) SetRestriction(ctx context.Context, state *models.AccountRestriction) error {
	now := time.Now().UTC()
	set := bson.M{
		"banned":     state.Banned,
		"suspended":  state.Suspended,
		"updated_at": now,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"user_id": state.UserID},
	}
	if state.SuspensionExpiry != nil {
		set["suspension_expiry"] = state.SuspensionExpiry.UTC()
	} else {
		update["$unset"] = bson.M{"suspension_expiry": ""}
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"user_id": state.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return persistErr("accounts: set restriction", err)
	}
	return nil
}
