package services

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trove/backend/internal/models"
)

type MongoNotificationService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoNotificationService(ctx context.Context, mongoURI, dbName string) (*MongoNotificationService, error) {
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
	col := db.Collection("notifications")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})

	return &MongoNotificationService{client: client, db: db, col: col}, nil
}

func (s *MongoNotificationService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Send stores one in-app notification for the user.
func (s *MongoNotificationService) Send(ctx context.Context, userID, typ, title, body string) error {
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.col.InsertOne(ctx, n); err != nil {
		return persistErr("notifications: send", err)
	}
	return nil
}

// ListForUser returns a user's notifications, newest first.
func (s *MongoNotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, persistErr("notifications: list", err)
	}
	defer cur.Close(ctx)

	notifications := make([]models.Notification, 0)
	for cur.Next(ctx) {
		var n models.Notification
		if err := cur.Decode(&n); err != nil {
			return nil, persistErr("notifications: list decode", err)
		}
		notifications = append(notifications, n)
	}
	if err := cur.Err(); err != nil {
		return nil, persistErr("notifications: list cursor", err)
	}
	return notifications, nil
}

// MarkRead flips the read flag. Scoped to the owning user so recipients can
// only touch their own notifications.
func (s *MongoNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": notificationID, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return persistErr("notifications: mark read", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
