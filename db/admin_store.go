package db

import (
	"context"
	"errors"
	"fmt"

	"spectrumhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAdminExists is returned when creating an admin whose email is taken.
var ErrAdminExists = errors.New("admin already exists")

var (
	adminEmailIndex        = bson.D{{Key: "email", Value: 1}}
	moderationLogTimeIndex = bson.D{{Key: "timestamp", Value: -1}}
)

// AdminStore persists moderation accounts.
type AdminStore struct {
	collection *mongo.Collection
}

func NewAdminStore(database *mongo.Database) *AdminStore {
	return &AdminStore{collection: database.Collection(AdminsCollection)}
}

// FindByEmail looks up an admin or moderator.
func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}
	return &admin, nil
}

// Insert creates an admin, rejecting duplicate emails.
func (s *AdminStore) Insert(ctx context.Context, admin *models.Admin) error {
	_, err := s.FindByEmail(ctx, admin.Email)
	if err == nil {
		return ErrAdminExists
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	result, err := s.collection.InsertOne(ctx, admin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAdminExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		admin.ID = id
	}
	return nil
}

// ModerationLogStore is the append-only moderation audit trail.
type ModerationLogStore struct {
	collection *mongo.Collection
}

func NewModerationLogStore(database *mongo.Database) *ModerationLogStore {
	return &ModerationLogStore{collection: database.Collection(ModerationLogsCollection)}
}

// Insert appends an entry.
func (s *ModerationLogStore) Insert(ctx context.Context, entry *models.ModerationLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to write moderation log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *ModerationLogStore) List(ctx context.Context, skip, limit int64) ([]models.ModerationLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation logs: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.ModerationLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode moderation logs: %w", err)
	}
	return entries, nil
}
