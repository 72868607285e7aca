package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	StoriesCollection        = "stories"
	AdminsCollection         = "admins"
	ModerationLogsCollection = "moderation_logs"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database

// extractDBName parses the database name from the URI, defaulting to "spectrumhub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "spectrumhub"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "spectrumhub"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	MongoDatabase = client.Database(extractDBName(uri))
	return nil
}

// DatabaseName reports the database selected by the URI.
func DatabaseName(uri string) string {
	return extractDBName(uri)
}

// Disconnect closes the client opened by ConnectMongoDB.
func Disconnect(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the story board queries rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(StoriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: storyListingIndex},
		{Keys: storyTitleIndex},
	})
	if err != nil {
		return fmt.Errorf("failed to create story indexes: %w", err)
	}

	_, err = database.Collection(AdminsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    adminEmailIndex,
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin indexes: %w", err)
	}

	_, err = database.Collection(ModerationLogsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: moderationLogTimeIndex,
	})
	if err != nil {
		return fmt.Errorf("failed to create moderation log indexes: %w", err)
	}
	return nil
}
