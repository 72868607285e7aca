package controllers

import (
	"context"
	"net/http"
	"time"

	"spectrumhub/middlewares"
	"spectrumhub/models"
	"spectrumhub/structs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dbTimeout = 10 * time.Second

// StoryBoard is the public side of the story service.
type StoryBoard interface {
	ListApproved(ctx context.Context, page, limit int) (*models.StoryPage, error)
	GetApproved(ctx context.Context, id string) (*models.StoryDetail, error)
	Submit(ctx context.Context, sub models.StorySubmission, submitter string) (*models.Story, error)
}

type StoryController struct {
	stories StoryBoard
	log     *zap.Logger
}

func NewStoryController(stories StoryBoard, log *zap.Logger) *StoryController {
	return &StoryController{stories: stories, log: log}
}

// ListStories returns published stories, newest first.
func (s *StoryController) ListStories(c *gin.Context) {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	result, err := s.stories.ListApproved(ctx, page, limit)
	if err != nil {
		respondServiceError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *StoryController) GetStory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	story, err := s.stories.GetApproved(ctx, c.Param("id"))
	if err != nil {
		respondServiceError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// Relationships lists the options offered by the submission form.
func (s *StoryController) Relationships(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"relationships": models.RelationshipOptions})
}

// SubmitStory queues a story for moderation.
func (s *StoryController) SubmitStory(c *gin.Context) {
	var request structs.SubmitStoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	story, err := s.stories.Submit(ctx, request.ToSubmission(), c.GetString(middlewares.ContextUserEmail))
	if err != nil {
		respondServiceError(c, s.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you for sharing your story! It will be reviewed before being published.",
		"id":      story.ID.Hex(),
	})
}
