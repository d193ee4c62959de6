package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/docuvault/docuvault/internal/config"
	"github.com/docuvault/docuvault/internal/database"
	"github.com/docuvault/docuvault/internal/document/handler"
	"github.com/docuvault/docuvault/internal/document/repository"
	"github.com/docuvault/docuvault/internal/document/service"
	"github.com/docuvault/docuvault/internal/storage"
	"github.com/docuvault/docuvault/internal/upload"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/metrics"
	"github.com/docuvault/docuvault/pkg/middleware"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS())

	// Redis is optional; it only backs the distributed rate limiter
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, falling back to in-memory rate limiting", zap.Error(err))
			redisClient = nil
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimit(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// MongoDB, with retry/backoff to tolerate startup races against the DB container
	mongoClient, err := connectMongoWithRetry(cfg)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Disconnect(mongoClient); err != nil {
			logger.Warn("closing MongoDB connection failed", zap.Error(err))
		}
	}()

	store, err := buildStore(cfg, r)
	if err != nil {
		logger.Fatal("could not initialize file store", zap.Error(err))
	}

	col := mongoClient.Database(cfg.MongoDB.Database).Collection("documents")
	repo := repository.NewMongoRepo(col)
	svc := service.New(repo, store)
	h := handler.New(svc, upload.New(store), mongoClient)
	h.Register(r)

	// static front-end
	r.StaticFile("/", "web/index.html")
	r.StaticFile("/styles.css", "web/styles.css")
	r.StaticFile("/app.js", "web/app.js")

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

func connectMongoWithRetry(cfg *config.Config) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err = database.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			logger.Infof("connected to MongoDB (database %s)", cfg.MongoDB.Database)
			return client, nil
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return nil, err
}

// buildStore picks the configured file-store backend. The local backend also
// exposes the content directory read-only under /uploads.
func buildStore(cfg *config.Config, r *gin.Engine) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "minio":
		return storage.NewMinIOStore(cfg.Storage.MinIO)
	case "local", "":
		store, err := storage.NewLocalStore(cfg.Storage.UploadDir)
		if err != nil {
			return nil, err
		}
		r.Static("/uploads", store.Dir())
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
