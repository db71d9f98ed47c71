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

type MongoReportService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoReportService(ctx context.Context, mongoURI, dbName string) (*MongoReportService, error) {
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
	col := db.Collection("reports")

	// Best-effort indexes: the queue view and the per-user lookup.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reported_user_id", Value: 1}, {Key: "status", Value: 1}},
	})

	return &MongoReportService{client: client, db: db, col: col}, nil
}

func (s *MongoReportService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoReportService) Create(ctx context.Context, report *models.Report) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if _, err := s.col.InsertOne(ctx, report); err != nil {
		return persistErr("reports: create", err)
	}
	return nil
}

func (s *MongoReportService) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, persistErr("reports: get", err)
	}
	return &report, nil
}

func (s *MongoReportService) ListPending(ctx context.Context, limit int) ([]models.Report, error) {
	return s.list(ctx, bson.M{"status": models.ReportPending}, limit)
}

func (s *MongoReportService) ListPendingForUser(ctx context.Context, userID string) ([]models.Report, error) {
	return s.list(ctx, bson.M{"status": models.ReportPending, "reported_user_id": userID}, maxPendingReports)
}

// SetStatusIfPending is the only status mutation path. The conditional filter
// makes the pending → terminal transition race-safe: a report that already
// left pending reports ErrAlreadyProcessed instead of being re-applied.
func (s *MongoReportService) SetStatusIfPending(ctx context.Context, id, status string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ReportPending},
		bson.M{"$set": bson.M{"status": status, "processed_at": time.Now().UTC()}},
	)
	if err != nil {
		return persistErr("reports: set status", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// PurgeProcessedBefore deletes resolved and dismissed reports older than the
// cutoff. Pending reports are never deleted.
func (s *MongoReportService) PurgeProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"status":     bson.M{"$in": []string{models.ReportResolved, models.ReportDismissed}},
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, persistErr("reports: purge", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoReportService) list(ctx context.Context, filter bson.M, limit int) ([]models.Report, error) {
	cur, err := s.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, persistErr("reports: list", err)
	}
	defer cur.Close(ctx)

	reports := make([]models.Report, 0)
	for cur.Next(ctx) {
		var r models.Report
		if err := cur.Decode(&r); err != nil {
			return nil, persistErr("reports: list decode", err)
		}
		reports = append(reports, r)
	}
	if err := cur.Err(); err != nil {
		return nil, persistErr("reports: list cursor", err)
	}
	return reports, nil
}
