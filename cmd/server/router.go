package main

import (
	"context"
	"net/http"

	"spectrumhub/config"
	"spectrumhub/controllers"
	"spectrumhub/db"
	"spectrumhub/internal/redisstore"
	"spectrumhub/logger"
	"spectrumhub/middlewares"
	"spectrumhub/routes"
	"spectrumhub/services"
	"spectrumhub/websocket"

	"github.com/casbin/casbin/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type deps struct {
	identity *services.CognitoIdentity
	stories  *services.StoryService
	admins   *db.AdminStore
	enforcer *casbin.Enforcer
	hub      *websocket.Hub
	redis    *redis.Client
	screener *services.Ensemble
}

func setupRouter(cfg *config.Config, log *zap.Logger, d deps) *gin.Engine {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(log))

	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies", zap.Error(err))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	var (
		tokenCache middlewares.TokenCache
		revoker    controllers.TokenRevoker
		limit      routes.SubmissionLimit
	)
	checks := []controllers.HealthCheck{{
		Name:  "mongo",
		Check: func(ctx context.Context) error { return db.MongoClient.Ping(ctx, nil) },
	}}
	if d.redis != nil {
		cache := redisstore.NewTokenCache(d.redis)
		tokenCache, revoker = cache, cache
		limit = routes.SubmissionLimit{
			Limiter: redisstore.NewRateLimiter(d.redis, "stories"),
			Max:     cfg.RateLimit.Submissions,
			Window:  cfg.RateLimit.Window,
		}
		checks = append(checks, controllers.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return d.redis.Ping(ctx).Err() },
		})
	}

	users := middlewares.NewUserAuth(d.identity, tokenCache, cfg.Auth.TokenCacheTTL, log)

	router.GET("/healthz", controllers.Health(checks...))

	api := router.Group("/")
	routes.SetupAuthRoutes(api, controllers.NewAuthController(d.identity, revoker, log), users)
	routes.SetupStoryRoutes(api, controllers.NewStoryController(d.stories, log), users, limit)
	routes.SetupScreeningRoutes(api, controllers.NewScreeningController(d.screener, log), users)
	routes.SetupContentRoutes(api)
	routes.SetupWebsocketRoutes(api, d.hub, websocket.NewUpgrader(cfg.Server.AllowedOrigins))

	adminCtrl := controllers.NewAdminController(d.admins, d.stories, cfg.JWT.Secret, cfg.JWTExpiry(), log)
	routes.SetupAdminRoutes(api, adminCtrl, middlewares.AdminAuthMiddleware(cfg.JWT.Secret, d.admins), d.enforcer)

	return router
}
