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

// MongoStrikeService is the append-only strike ledger. Entries are only ever
// inserted; totals are derived by summing weights at read time so they can
// never drift from the entries.
type MongoStrikeService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoStrikeService(ctx context.Context, mongoURI, dbName string) (*MongoStrikeService, error) {
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
	col := db.Collection("strikes")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "report_id", Value: 1}},
		Options: options.Index().SetSparse(true),
	})

	return &MongoStrikeService{client: client, db: db, col: col}, nil
}

func (s *MongoStrikeService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Append inserts one immutable ledger entry. There is no update path.
func (s *MongoStrikeService) Append(ctx context.Context, strike *models.Strike) error {
	if strike.CreatedAt.IsZero() {
		strike.CreatedAt = time.Now().UTC()
	}
	if _, err := s.col.InsertOne(ctx, strike); err != nil {
		return persistErr("strikes: append", err)
	}
	return nil
}

// TotalForUser sums strike weights for one user. Zero for users with no
// history.
func (s *MongoStrikeService) TotalForUser(ctx context.Context, userID string) (int, error) {
	totals, err := s.TotalsForUsers(ctx, []string{userID})
	if err != nil {
		return 0, err
	}
	return totals[userID], nil
}

// TotalsForUsers sums strike weights per user in one aggregation. Users with
// no strikes come back as zero. Batch size is bounded by the caller.
func (s *MongoStrikeService) TotalsForUsers(ctx context.Context, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	for _, id := range userIDs {
		out[id] = 0
	}
	if len(userIDs) == 0 {
		return out, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": bson.M{"$in": userIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$user_id",
			"total": bson.M{"$sum": "$weight"},
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, persistErr("strikes: totals", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			UserID string `bson:"_id"`
			Total  int    `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, persistErr("strikes: totals decode", err)
		}
		out[row.UserID] = row.Total
	}
	if err := cur.Err(); err != nil {
		return nil, persistErr("strikes: totals cursor", err)
	}
	return out, nil
}

// ListForUser returns a user's ledger entries, newest first. Used by the
// moderation console to show violation history.
func (s *MongoStrikeService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Strike, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, persistErr("strikes: list", err)
	}
	defer cur.Close(ctx)

	strikes := make([]models.Strike, 0)
	for cur.Next(ctx) {
		var st models.Strike
		if err := cur.Decode(&st); err != nil {
			return nil, persistErr("strikes: list decode", err)
		}
		strikes = append(strikes, st)
	}
	if err := cur.Err(); err != nil {
		return nil, persistErr("strikes: list cursor", err)
	}
	return strikes, nil
}
