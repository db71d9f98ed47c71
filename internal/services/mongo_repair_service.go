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

type MongoRepairService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoRepairService(ctx context.Context, mongoURI, dbName string) (*MongoRepairService, error) {
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
	col := db.Collection("moderation_repairs")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "repaired", Value: 1}, {Key: "created_at", Value: 1}},
	})

	return &MongoRepairService{client: client, db: db, col: col}, nil
}

func (s *MongoRepairService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoRepairService) Queue(ctx context.Context, repair *models.Repair) error {
	if _, err := s.col.InsertOne(ctx, repair); err != nil {
		return persistErr("repairs: queue", err)
	}
	return nil
}

// ListOutstanding returns unrepaired divergences, oldest first.
func (s *MongoRepairService) ListOutstanding(ctx context.Context, limit int) ([]models.Repair, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.col.Find(ctx, bson.M{"repaired": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, persistErr("repairs: list", err)
	}
	defer cur.Close(ctx)

	repairs := make([]models.Repair, 0)
	for cur.Next(ctx) {
		var r models.Repair
		if err := cur.Decode(&r); err != nil {
			return nil, persistErr("repairs: list decode", err)
		}
		repairs = append(repairs, r)
	}
	if err := cur.Err(); err != nil {
		return nil, persistErr("repairs: list cursor", err)
	}
	return repairs, nil
}

func (s *MongoRepairService) MarkRepaired(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"repaired": true, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return persistErr("repairs: mark repaired", err)
	}
	return nil
}

func (s *MongoRepairService) RecordAttempt(ctx context.Context, id, lastError string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_error": lastError, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return persistErr("repairs: record attempt", err)
	}
	return nil
}
