package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func storyDoc(id primitive.ObjectID, title string, approved bool, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "approved", Value: approved},
		{Key: "created_at", Value: created},
	}
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestFindByApprovalQuery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		approved    bool
		newestFirst bool
		order       int64
	}{
		{"board newest first", true, true, -1},
		{"queue oldest first", false, false, 1},
	}
	for _, tt := range tests {
		mt.Run(tt.name, func(mt *mtest.T) {
			store := &StoryStore{collection: mt.Coll}
			id := primitive.NewObjectID()
			mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
				storyDoc(id, "Finding My Tribe at 40", tt.approved, created)))

			stories, err := store.FindByApproval(context.Background(), tt.approved, 40, 20, tt.newestFirst)
			require.NoError(mt, err)
			require.Len(mt, stories, 1)
			assert.Equal(mt, id, stories[0].ID)
			assert.True(mt, created.Equal(stories[0].CreatedAt))

			started := mt.GetStartedEvent()
			require.NotNil(mt, started)
			assert.Equal(mt, "find", started.CommandName)
			cmd := started.Command
			assert.Equal(mt, tt.approved, cmd.Lookup("filter", "approved").Boolean())
			assert.Equal(mt, tt.order, cmd.Lookup("sort", "created_at").AsInt64())
			assert.Equal(mt, int64(40), cmd.Lookup("skip").AsInt64())
			assert.Equal(mt, int64(20), cmd.Lookup("limit").AsInt64())
		})
	}
}

func TestSetApproval(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	at := created.Add(time.Hour)

	mt.Run("pending story is approved", func(mt *mtest.T) {
		store := &StoryStore{collection: mt.Coll}
		id := primitive.NewObjectID()
		doc := append(storyDoc(id, "My Brother, My Hero", true, created),
			bson.E{Key: "moderated_by", Value: "mod@example.com"},
			bson.E{Key: "moderated_at", Value: at})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		story, changed, err := store.SetApproval(context.Background(), id, true, "mod@example.com", at)
		require.NoError(mt, err)
		assert.True(mt, changed)
		assert.True(mt, story.Approved)
		assert.Equal(mt, "mod@example.com", story.ModeratedBy)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, id, cmd.Lookup("query", "_id").ObjectID())
		assert.True(mt, cmd.Lookup("query", "approved", "$ne").Boolean())
		assert.True(mt, cmd.Lookup("update", "$set", "approved").Boolean())
		assert.Equal(mt, "mod@example.com", cmd.Lookup("update", "$set", "moderated_by").StringValue())
	})

	mt.Run("already approved story is unchanged", func(mt *mtest.T) {
		store := &StoryStore{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
				append(storyDoc(id, "My Brother, My Hero", true, created),
					bson.E{Key: "moderated_by", Value: "first@example.com"})),
		)

		story, changed, err := store.SetApproval(context.Background(), id, true, "second@example.com", at)
		require.NoError(mt, err)
		assert.False(mt, changed)
		assert.Equal(mt, "first@example.com", story.ModeratedBy)

		assert.Equal(mt, "findAndModify", mt.GetStartedEvent().CommandName)
		lookup := mt.GetStartedEvent()
		assert.Equal(mt, "find", lookup.CommandName)
		assert.Equal(mt, id, lookup.Command.Lookup("filter", "_id").ObjectID())
	})

	mt.Run("missing story", func(mt *mtest.T) {
		store := &StoryStore{collection: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch),
		)

		_, changed, err := store.SetApproval(context.Background(), primitive.NewObjectID(), false, "mod@example.com", at)
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.False(mt, changed)
	})
}
