package routes

import (
	"spectrumhub/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

// SetupWebsocketRoutes exposes the story event stream.
func SetupWebsocketRoutes(router *gin.RouterGroup, hub *websocket.Hub, upgrader *gorilla.Upgrader) {
	router.GET("/ws/stories", websocket.StoryEventsHandler(hub, upgrader))
}
