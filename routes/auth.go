package routes

import (
	"spectrumhub/controllers"
	"spectrumhub/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the hosted sign-in flows.
func SetupAuthRoutes(router *gin.RouterGroup, auth *controllers.AuthController, users *middlewares.UserAuth) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", auth.SignUp)
		authRoutes.POST("/verify-email", auth.VerifyEmail)
		authRoutes.POST("/login", auth.Login)
		authRoutes.POST("/refresh", auth.Refresh)
		authRoutes.POST("/forgot-password", auth.ForgotPassword)
		authRoutes.POST("/confirm-forgot-password", auth.ConfirmForgotPassword)

		authRoutes.POST("/signout", users.Required(), auth.SignOut)
		authRoutes.GET("/me", users.Required(), auth.Me)
	}
}
