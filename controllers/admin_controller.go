package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"spectrumhub/db"
	"spectrumhub/logger"
	"spectrumhub/middlewares"
	"spectrumhub/models"
	"spectrumhub/services"
	"spectrumhub/structs"
	"spectrumhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminTimeout = 5 * time.Second

// Moderation is the moderator side of the story service.
type Moderation interface {
	ListPending(ctx context.Context, page, limit int) (*models.ModerationPage, error)
	ListPublished(ctx context.Context, page, limit int) (*models.ModerationPage, error)
	Approve(ctx context.Context, id string, actor services.Actor) (*models.Story, error)
	Unpublish(ctx context.Context, id string, actor services.Actor) (*models.Story, error)
	Review(ctx context.Context, id string, actor services.Actor) (*models.StoryReview, error)
	ModerationLogs(ctx context.Context, page, limit int) ([]models.ModerationLog, error)
}

type AdminController struct {
	admins      middlewares.AdminLookup
	moderation  Moderation
	jwtSecret   string
	tokenExpiry time.Duration
	log         *zap.Logger
}

func NewAdminController(admins middlewares.AdminLookup, moderation Moderation, jwtSecret string, tokenExpiry time.Duration, log *zap.Logger) *AdminController {
	return &AdminController{
		admins:      admins,
		moderation:  moderation,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		log:         log,
	}
}

// AdminLogin handles admin/moderator login
func (a *AdminController) AdminLogin(c *gin.Context) {
	var request structs.AdminLoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	dbCtx, cancel := context.WithTimeout(c.Request.Context(), adminTimeout)
	defer cancel()

	admin, err := a.admins.FindByEmail(dbCtx, request.Email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.FromContext(c, a.log).Error("admin lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !utils.CheckPasswordHash(request.Password, admin.Password) {
		logger.FromContext(c, a.log).Info("admin login rejected", zap.String("email", request.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateAdminToken(a.jwtSecret, admin.Email, admin.Role, a.tokenExpiry)
	if err != nil {
		logger.FromContext(c, a.log).Error("failed to sign admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Admin login successful",
		"accessToken": token,
		"admin": gin.H{
			"id":    admin.ID.Hex(),
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		Email:     c.GetString(middlewares.ContextAdminEmail),
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// ListStories returns the moderation queue (?status=pending, the default)
// or the published stories (?status=approved).
func (a *AdminController) ListStories(c *gin.Context) {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), adminTimeout)
	defer cancel()

	var (
		result *models.ModerationPage
		err    error
	)
	switch c.DefaultQuery("status", "pending") {
	case "pending":
		result, err = a.moderation.ListPending(ctx, page, limit)
	case "approved":
		result, err = a.moderation.ListPublished(ctx, page, limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "message": "status must be pending or approved"})
		return
	}
	if err != nil {
		respondServiceError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *AdminController) ApproveStory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), adminTimeout)
	defer cancel()

	story, err := a.moderation.Approve(ctx, c.Param("id"), actorFrom(c))
	if err != nil {
		respondServiceError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story approved", "story": story})
}

func (a *AdminController) UnpublishStory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), adminTimeout)
	defer cancel()

	story, err := a.moderation.Unpublish(ctx, c.Param("id"), actorFrom(c))
	if err != nil {
		respondServiceError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story unpublished", "story": story})
}

// ReviewStory asks the language model for a moderation suggestion.
func (a *AdminController) ReviewStory(c *gin.Context) {
	// Model calls are slower than database work.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	review, err := a.moderation.Review(ctx, c.Param("id"), actorFrom(c))
	if err != nil {
		respondServiceError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (a *AdminController) ModerationLogs(c *gin.Context) {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), adminTimeout)
	defer cancel()

	logs, err := a.moderation.ModerationLogs(ctx, page, limit)
	if err != nil {
		respondServiceError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
