package services

import (
	"context"
	"errors"
	"testing"

	"spectrumhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCleanModelOutput(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanModelOutput("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanModelOutput("  {\"a\":1}  "))
}

func TestGeminiReviewerParsesResponse(t *testing.T) {
	var prompt string
	r := &GeminiReviewer{generate: func(_ context.Context, p string) (string, error) {
		prompt = p
		return "```json\n{\"recommendation\":\"Needs_Edit\",\"reasons\":[\"names a teacher\"],\"summary\":\"A school story.\"}\n```", nil
	}}

	story := &models.Story{ID: primitive.NewObjectID(), Title: "School days", Content: "..."}
	review, err := r.Review(context.Background(), story)
	require.NoError(t, err)

	assert.Equal(t, RecommendNeedsEdit, review.Recommendation)
	assert.Equal(t, []string{"names a teacher"}, review.Reasons)
	assert.Equal(t, story.ID.Hex(), review.StoryID)
	assert.Contains(t, prompt, "Title: School days")
}

func TestGeminiReviewerRejectsBadOutput(t *testing.T) {
	for name, out := range map[string]string{
		"not json":        "I think it is fine",
		"unknown verdict": `{"recommendation":"maybe"}`,
	} {
		t.Run(name, func(t *testing.T) {
			r := &GeminiReviewer{generate: func(context.Context, string) (string, error) { return out, nil }}
			_, err := r.Review(context.Background(), &models.Story{})
			assert.Error(t, err)
		})
	}
}

func TestGeminiReviewerErrors(t *testing.T) {
	var nilReviewer *GeminiReviewer
	_, err := nilReviewer.Review(context.Background(), &models.Story{})
	assert.ErrorIs(t, err, ErrReviewerUnavailable)

	boom := errors.New("quota")
	r := &GeminiReviewer{generate: func(context.Context, string) (string, error) { return "", boom }}
	_, err = r.Review(context.Background(), &models.Story{})
	assert.ErrorIs(t, err, boom)
}
