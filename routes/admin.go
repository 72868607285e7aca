package routes

import (
	"spectrumhub/controllers"
	"spectrumhub/middlewares"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(router *gin.RouterGroup, admin *controllers.AdminController, auth gin.HandlerFunc, enforcer *casbin.Enforcer) {
	// Public admin routes (login only, accounts are created with hubctl)
	adminPublic := router.Group("/admin")
	{
		adminPublic.POST("/login", admin.AdminLogin)
	}

	protected := router.Group("/admin")
	protected.Use(auth)
	{
		protected.GET("/stories", middlewares.RBACMiddleware(enforcer, middlewares.ResourceStory, middlewares.ActionRead), admin.ListStories)
		protected.POST("/stories/:id/approve", middlewares.RBACMiddleware(enforcer, middlewares.ResourceStory, middlewares.ActionApprove), admin.ApproveStory)
		protected.POST("/stories/:id/unpublish", middlewares.RBACMiddleware(enforcer, middlewares.ResourceStory, middlewares.ActionApprove), admin.UnpublishStory)
		protected.POST("/stories/:id/review", middlewares.RBACMiddleware(enforcer, middlewares.ResourceStory, middlewares.ActionReview), admin.ReviewStory)

		protected.GET("/logs", middlewares.RBACMiddleware(enforcer, middlewares.ResourceLogs, middlewares.ActionRead), admin.ModerationLogs)
	}
}
