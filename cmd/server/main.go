package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"spectrumhub/config"
	"spectrumhub/db"
	"spectrumhub/internal/redisstore"
	"spectrumhub/logger"
	"spectrumhub/middlewares"
	"spectrumhub/services"
	"spectrumhub/websocket"

	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to $CONFIG_PATH or "+config.DefaultPath+")")
	flag.Parse()

	if err := run(config.ResolvePath(*configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB using the URI from the configuration
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.Disconnect(dctx); err != nil {
			log.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	log.Info("connected to MongoDB", zap.String("database", db.DatabaseName(cfg.Database.URI)))

	if err := db.EnsureIndexes(ctx, db.MongoDatabase); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("redis not configured; submission rate limiting and token caching are off")
	}

	identity, err := services.NewCognitoIdentity(ctx, cfg.Cognito.Region, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret)
	if err != nil {
		return err
	}

	adapter, err := mongodbadapter.NewAdapter(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	enforcer, err := middlewares.NewEnforcer(adapter, log)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(log)

	// With Redis, events go through the stream so every instance sees them.
	var events *redisstore.EventStream
	var publisher services.StoryEventPublisher = hub
	if rdb != nil {
		events = redisstore.NewEventStream(rdb, log)
		publisher = events
	}

	opts := []services.StoryServiceOption{services.WithEventPublisher(publisher)}
	if cfg.Gemini.ApiKey != "" {
		reviewer, err := services.NewGeminiReviewer(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithReviewer(reviewer))
	} else {
		log.Warn("gemini api key not set; story review suggestions are off")
	}
	if cfg.SMTPEnabled() {
		opts = append(opts, services.WithNotifier(services.NewSMTPNotifier(services.SMTPSettings{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			SenderEmail: cfg.SMTP.SenderEmail,
			SenderName:  cfg.SMTP.SenderName,
			Inbox:       cfg.SMTP.ModerationInbox,
		})))
	}

	stories := services.NewStoryService(
		db.NewStoryStore(db.MongoDatabase),
		db.NewModerationLogStore(db.MongoDatabase),
		log,
		opts...,
	)

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	seeded, err := stories.SeedSamples(seedCtx)
	cancel()
	if err != nil {
		log.Warn("failed to seed sample stories", zap.Error(err))
	} else if seeded > 0 {
		log.Info("seeded sample stories", zap.Int("count", seeded))
	}

	router := setupRouter(cfg, log, deps{
		identity: identity,
		stories:  stories,
		admins:   db.NewAdminStore(db.MongoDatabase),
		enforcer: enforcer,
		hub:      hub,
		redis:    rdb,
		screener: services.NewEnsemble(cfg.Screening.NetworkSeed),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if events != nil {
		g.Go(func() error { return events.Run(gctx, hub) })
	}
	g.Go(func() error {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		hub.Close()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
