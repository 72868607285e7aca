package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spectrumhub/models"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// ErrReviewerUnavailable is returned when no language model is configured.
var ErrReviewerUnavailable = errors.New("story reviewer not configured")

// Review recommendations.
const (
	RecommendApprove   = "approve"
	RecommendReject    = "reject"
	RecommendNeedsEdit = "needs_edit"
)

// StoryReviewer suggests a moderation decision for a pending story.
type StoryReviewer interface {
	Review(ctx context.Context, story *models.Story) (*models.StoryReview, error)
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiReviewer asks Gemini to pre-screen submissions for moderators.
type GeminiReviewer struct {
	generate generateFunc
}

func initGemini(ctx context.Context, apiKey string) (*genai.Client, error) {
	config := &genai.ClientConfig{}
	if apiKey != "" {
		config.APIKey = apiKey
	}
	return genai.NewClient(ctx, config)
}

// NewGeminiReviewer creates the client once. An empty model name uses the default.
func NewGeminiReviewer(ctx context.Context, apiKey, modelName string) (*GeminiReviewer, error) {
	client, err := initGemini(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	// Safety filters are off so every submission gets a verdict.
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	return &GeminiReviewer{
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), genConfig)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

func (r *GeminiReviewer) Review(ctx context.Context, story *models.Story) (*models.StoryReview, error) {
	if r == nil || r.generate == nil {
		return nil, ErrReviewerUnavailable
	}

	raw, err := r.generate(ctx, reviewPrompt(story))
	if err != nil {
		return nil, fmt.Errorf("failed to generate review: %w", err)
	}

	review, err := parseReview(raw)
	if err != nil {
		return nil, err
	}
	review.StoryID = story.ID.Hex()
	return review, nil
}

func reviewPrompt(story *models.Story) string {
	return fmt.Sprintf(`You are helping moderators of a community website where autistic people, their families and professionals share personal stories.

Review the submission below and decide whether it should be published.
Reject spam, advertising, hateful or demeaning language about autistic people, promotion of harmful "cures", and content that exposes private details of identifiable third parties.
Suggest "needs_edit" for otherwise suitable stories with fixable problems.

Respond with JSON only:
{"recommendation": "approve" | "reject" | "needs_edit", "reasons": ["..."], "summary": "one sentence summary of the story"}

Title: %s
Author: %s
Relationship: %s
Story:
%s`, story.Title, story.AuthorName, story.Relationship, story.Content)
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func parseReview(raw string) (*models.StoryReview, error) {
	var review models.StoryReview
	if err := json.Unmarshal([]byte(cleanModelOutput(raw)), &review); err != nil {
		return nil, fmt.Errorf("failed to parse review: %w", err)
	}

	review.Recommendation = strings.ToLower(strings.TrimSpace(review.Recommendation))
	switch review.Recommendation {
	case RecommendApprove, RecommendReject, RecommendNeedsEdit:
	default:
		return nil, fmt.Errorf("unexpected recommendation %q", review.Recommendation)
	}
	if review.Reasons == nil {
		review.Reasons = []string{}
	}
	return &review, nil
}
