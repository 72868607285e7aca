package routes

import (
	"spectrumhub/controllers"

	"github.com/gin-gonic/gin"
)

func SetupContentRoutes(router *gin.RouterGroup) {
	contentRoutes := router.Group("/content")
	{
		contentRoutes.GET("/pages", controllers.ListPages)
		contentRoutes.GET("/pages/:slug", controllers.GetPage)
	}
}
