package websocket

import (
	"net/http"

	"spectrumhub/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	ReadBufferSize  = 1024
	WriteBufferSize = 1024
	maxMessageSize  = 512
)

// NewUpgrader accepts same-origin requests, clients without an Origin
// header, and the configured front end origins.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  ReadBufferSize,
		WriteBufferSize: WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] || allowed[origin] {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

// StoryEventsHandler upgrades the request and streams story events until
// the client disconnects. Incoming messages are read only to notice closes.
func StoryEventsHandler(hub *Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c, hub.log)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Info("websocket upgrade failed", zap.Error(err))
			return
		}

		client := hub.Register(conn)
		defer hub.Unregister(client)

		conn.SetReadLimit(maxMessageSize)
		if err := client.SafeWriteJSON(gin.H{"type": "connected", "clientId": client.ID}); err != nil {
			return
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Info("story websocket closed", zap.Error(err))
				}
				return
			}
		}
	}
}
