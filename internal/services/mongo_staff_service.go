package services

import (
	"context"
	"crypto/tls"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/trove/backend/internal/models"
)

// MongoStaffService holds moderation console accounts and answers the admin
// capability check. Keeping the check behind AuthorizationChecker lets a
// role-based policy replace the boolean flag later without touching the
// engine.
type MongoStaffService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoStaffService(ctx context.Context, mongoURI, dbName string) (*MongoStaffService, error) {
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
	col := db.Collection("staff")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoStaffService{client: client, db: db, col: col}, nil
}

func (s *MongoStaffService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Login verifies staff credentials and returns the account.
func (s *MongoStaffService) Login(ctx context.Context, req *models.StaffLoginRequest) (*models.StaffUser, error) {
	var user models.StaffUser
	err := s.col.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, persistErr("staff: login lookup", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return &user, nil
}

// IsAdmin reports whether the user holds the admin capability. Unknown ids
// are simply not admins.
func (s *MongoStaffService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var user struct {
		Admin bool `bson:"admin"`
	}
	err := s.col.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"admin": 1})).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, persistErr("staff: admin lookup", err)
	}
	return user.Admin, nil
}
