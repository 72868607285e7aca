package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spectrumhub/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, hub *Hub, origins []string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/stories", StoryEventsHandler(hub, NewUpgrader(origins)))
	return httptest.NewServer(r)
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stories"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()

	var hello map[string]string
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "connected", hello["type"])
	require.NotEmpty(t, hello["clientId"])
	return conn
}

func TestHubBroadcastsStoryEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, nil)
	defer srv.Close()

	a := dial(t, srv, nil)
	b := dial(t, srv, nil)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	event := models.StoryEvent{
		Type:      models.StoryEventPublished,
		StoryID:   "abc",
		Title:     "Finding My Voice",
		Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	hub.Broadcast(event)

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got models.StoryEvent
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, event, got)
	}

	a.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	b.Close()
}

func TestUpgraderChecksOrigin(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, []string{"http://localhost:5173"})
	defer srv.Close()

	allowed := dial(t, srv, http.Header{"Origin": {"http://localhost:5173"}})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/stories"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	allowed.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUnregisterTwice(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, nil)
	defer srv.Close()

	conn := dial(t, srv, nil)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	var client *Client
	for c := range hub.clients {
		client = c
	}
	hub.mu.RUnlock()

	hub.Unregister(client)
	hub.Unregister(client)
	assert.Equal(t, 0, hub.Count())
}
