package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spectrumhub/db"
	"spectrumhub/models"
	"spectrumhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	calls int
	users map[string]*models.Identity
}

func (f *fakeResolver) GetUser(_ context.Context, token string) (*models.Identity, error) {
	f.calls++
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("NotAuthorizedException")
}

type mapCache struct {
	entries map[string]*models.Identity
}

func (m *mapCache) Get(_ context.Context, fp string) (*models.Identity, error) {
	return m.entries[fp], nil
}

func (m *mapCache) Set(_ context.Context, fp string, identity *models.Identity, _ time.Duration) error {
	m.entries[fp] = identity
	return nil
}

func newUserRouter(auth *UserAuth, optional bool) *gin.Engine {
	r := gin.New()
	mw := auth.Required()
	if optional {
		mw = auth.Optional()
	}
	r.GET("/me", mw, func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"email": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": identity.Email})
	})
	return r
}

func get(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequiredAuthStatusCodes(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.Identity{"good": {Email: "a@b.co"}}}
	r := newUserRouter(NewUserAuth(resolver, nil, time.Minute, zap.NewNop()), false)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token good", http.StatusBadRequest},
		{"extra parts", "Bearer good extra", http.StatusBadRequest},
		{"invalid", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequiredAuthUsesCache(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.Identity{"good": {Email: "a@b.co"}}}
	cache := &mapCache{entries: map[string]*models.Identity{}}
	r := newUserRouter(NewUserAuth(resolver, cache, time.Minute, zap.NewNop()), false)

	for i := 0; i < 3; i++ {
		w := get(r, "/me", "Bearer good")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"email":"a@b.co"}`, w.Body.String())
	}
	assert.Equal(t, 1, resolver.calls)
	assert.Contains(t, cache.entries, utils.TokenFingerprint("good"))
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.Identity{"good": {Email: "a@b.co"}}}
	r := newUserRouter(NewUserAuth(resolver, nil, time.Minute, zap.NewNop()), true)

	assert.JSONEq(t, `{"email":"a@b.co"}`, get(r, "/me", "Bearer good").Body.String())
	for _, header := range []string{"", "Bearer bad", "garbage"} {
		w := get(r, "/me", header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"email":""}`, w.Body.String())
	}
}

type fakeAdmins map[string]*models.Admin

func (f fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	if a, ok := f[email]; ok {
		return a, nil
	}
	return nil, db.ErrNotFound
}

func newAdminRouter(t *testing.T, secret string, admins AdminLookup) *gin.Engine {
	enforcer, err := NewEnforcer(nil, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	group := r.Group("/admin", AdminAuthMiddleware(secret, admins))
	group.GET("/stories", RBACMiddleware(enforcer, ResourceStory, ActionRead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	group.GET("/logs", RBACMiddleware(enforcer, ResourceLogs, ActionRead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAdminAuthAndRBAC(t *testing.T) {
	const secret = "test-secret"
	admins := fakeAdmins{
		"admin@example.com": {ID: primitive.NewObjectID(), Email: "admin@example.com", Role: models.RoleAdmin},
		"mod@example.com":   {ID: primitive.NewObjectID(), Email: "mod@example.com", Role: models.RoleModerator},
	}
	r := newAdminRouter(t, secret, admins)

	token := func(email, role string) string {
		tok, err := utils.GenerateAdminToken(secret, email, role, time.Hour)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	adminTok := token("admin@example.com", models.RoleAdmin)
	modTok := token("mod@example.com", models.RoleModerator)
	// A forged role claim is ignored in favour of the stored account.
	escalated := token("mod@example.com", models.RoleAdmin)
	unknown := token("ghost@example.com", models.RoleAdmin)
	wrongKey, err := utils.GenerateAdminToken("other", "admin@example.com", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/admin/stories", "", http.StatusUnauthorized},
		{"wrong key", "/admin/stories", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"unknown admin", "/admin/stories", unknown, http.StatusForbidden},
		{"admin reads stories", "/admin/stories", adminTok, http.StatusOK},
		{"moderator reads stories", "/admin/stories", modTok, http.StatusOK},
		{"admin reads logs", "/admin/logs", adminTok, http.StatusOK},
		{"moderator denied logs", "/admin/logs", modTok, http.StatusForbidden},
		{"role claim ignored", "/admin/logs", escalated, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, get(r, tt.path, tt.header).Code)
		})
	}
}

func TestNewEnforcerDefaultPolicies(t *testing.T) {
	enforcer, err := NewEnforcer(nil, zap.NewNop())
	require.NoError(t, err)

	for _, p := range defaultPolicies {
		ok, err := enforcer.Enforce(p.role, p.resource, p.action)
		require.NoError(t, err)
		assert.True(t, ok, "%s %s %s", p.role, p.resource, p.action)
	}

	ok, err := enforcer.Enforce(models.RoleModerator, ResourceLogs, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = enforcer.Enforce("visitor", ResourceStory, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

type countingLimiter struct {
	hits map[string]int
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.hits[key]++
	return l.hits[key] <= limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}}
	r := gin.New()
	r.POST("/stories", RateLimit(limiter, 2, time.Hour), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/stories", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post().Code)
	assert.Equal(t, http.StatusCreated, post().Code)
	w := post()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Equal(t, 3, limiter.hits["ip:192.0.2.1"])
}

func TestRateLimitKeysSignedInUsers(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}}
	r := gin.New()
	r.POST("/stories", func(c *gin.Context) {
		c.Set(ContextUserEmail, "a@b.co")
		c.Next()
	}, RateLimit(limiter, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stories", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, limiter.hits["user:a@b.co"])
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/stories", RateLimit(&countingLimiter{err: errors.New("redis down")}, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stories", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}
