package routes

import (
	"time"

	"spectrumhub/controllers"
	"spectrumhub/middlewares"

	"github.com/gin-gonic/gin"
)

// SubmissionLimit caps story submissions per caller.
type SubmissionLimit struct {
	Limiter middlewares.Limiter
	Max     int
	Window  time.Duration
}

// SetupStoryRoutes registers the public story board. Submissions accept
// anonymous callers; a nil limiter or zero Max disables rate limiting.
func SetupStoryRoutes(router *gin.RouterGroup, stories *controllers.StoryController, users *middlewares.UserAuth, limit SubmissionLimit) {
	submit := []gin.HandlerFunc{users.Optional()}
	if limit.Limiter != nil && limit.Max > 0 {
		submit = append(submit, middlewares.RateLimit(limit.Limiter, limit.Max, limit.Window))
	}
	submit = append(submit, stories.SubmitStory)

	storyRoutes := router.Group("/stories")
	{
		storyRoutes.GET("", stories.ListStories)
		storyRoutes.GET("/relationships", stories.Relationships)
		storyRoutes.GET("/:id", stories.GetStory)
		storyRoutes.POST("", submit...)
	}
}
