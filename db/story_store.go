package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spectrumhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	storyListingIndex = bson.D{{Key: "approved", Value: 1}, {Key: "created_at", Value: -1}}
	storyTitleIndex   = bson.D{{Key: "title", Value: 1}}
)

// StoryStore persists stories in the "stories" collection.
type StoryStore struct {
	collection *mongo.Collection
}

// NewStoryStore binds the store to a database.
func NewStoryStore(database *mongo.Database) *StoryStore {
	return &StoryStore{collection: database.Collection(StoriesCollection)}
}

// Insert stores a story and fills in its generated ID.
func (s *StoryStore) Insert(ctx context.Context, story *models.Story) error {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, story); err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// FindByApproval lists stories with the given approval flag, sorted by created_at.
func (s *StoryStore) FindByApproval(ctx context.Context, approved bool, skip, limit int64, newestFirst bool) ([]models.Story, error) {
	order := 1
	if newestFirst {
		order = -1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: order}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, bson.M{"approved": approved}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("failed to decode stories: %w", err)
	}
	return stories, nil
}

// CountByApproval counts stories with the given approval flag.
func (s *StoryStore) CountByApproval(ctx context.Context, approved bool) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"approved": approved})
	if err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return n, nil
}

// FindByID returns a story regardless of approval.
func (s *StoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindApprovedByID returns a story only if it is approved.
func (s *StoryStore) FindApprovedByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	return s.findOne(ctx, bson.M{"_id": id, "approved": true})
}

func (s *StoryStore) findOne(ctx context.Context, filter bson.M) (*models.Story, error) {
	var story models.Story
	err := s.collection.FindOne(ctx, filter).Decode(&story)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch story: %w", err)
	}
	return &story, nil
}

// SetApproval moves a story into the given approval state and stamps who
// moderated it. changed is false when the story was already in that state;
// the stored story is then returned untouched.
func (s *StoryStore) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool, moderator string, at time.Time) (*models.Story, bool, error) {
	filter := bson.M{"_id": id, "approved": bson.M{"$ne": approved}}
	update := bson.M{"$set": bson.M{
		"approved":     approved,
		"moderated_at": at,
		"moderated_by": moderator,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var story models.Story
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&story)
	if err == nil {
		return &story, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to update story: %w", err)
	}

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

// ExistingTitles returns which of the given titles are already stored.
func (s *StoryStore) ExistingTitles(ctx context.Context, titles []string) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "title", bson.M{"title": bson.M{"$in": titles}})
	if err != nil {
		return nil, fmt.Errorf("failed to look up titles: %w", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if title, ok := v.(string); ok {
			out = append(out, title)
		}
	}
	return out, nil
}
