package routes

import (
	"spectrumhub/controllers"
	"spectrumhub/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupScreeningRoutes registers the screening tool. Running a screening
// requires a signed-in user.
func SetupScreeningRoutes(router *gin.RouterGroup, screening *controllers.ScreeningController, users *middlewares.UserAuth) {
	screeningRoutes := router.Group("/screening")
	{
		screeningRoutes.GET("/models", screening.Models)
		screeningRoutes.POST("/predict", users.Required(), screening.Predict)
	}
}
