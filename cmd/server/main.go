package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spotcheck/spotfeed/internal/api"
	"github.com/spotcheck/spotfeed/internal/cache"
	"github.com/spotcheck/spotfeed/internal/feed"
	"github.com/spotcheck/spotfeed/internal/storage"
	"github.com/spotcheck/spotfeed/internal/store"
	"github.com/spotcheck/spotfeed/internal/users"
	"github.com/spotcheck/spotfeed/pkg/config"
	"github.com/spotcheck/spotfeed/pkg/logging"
	"github.com/spotcheck/spotfeed/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Spotfeed API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	ctx := context.Background()

	// Document store
	documentStore, err := store.NewMongo(ctx, &cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to document store", zap.Error(err))
	}
	defer documentStore.Close(ctx)

	// Read cache: Redis when configured, bounded in-memory otherwise
	var readCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		readCache = redisCache
	} else {
		logger.Info("Using in-memory read cache", zap.Int("max_entries", cfg.Feed.CacheMaxEntries))
		readCache = cache.NewMemory(cfg.Feed.CacheMaxEntries)
	}

	// Media object store
	mediaStore, err := storage.NewMinIO(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to connect to media storage", zap.Error(err))
	}

	// Aggregation components
	userService := users.New(documentStore)
	metricsResolver := feed.NewMetricsResolver(documentStore)
	catalogResolver := feed.NewCatalogResolver(documentStore, readCache, cfg.Feed.CatalogCacheTTL)
	answerAggregator := feed.NewAnswerAggregator(documentStore, userService, metricsResolver)
	postAggregator := feed.NewPostAggregator(documentStore, readCache, userService, metricsResolver, catalogResolver, answerAggregator, cfg.Feed)
	voteLedger := feed.NewVoteLedger(documentStore)
	writer := feed.NewWriter(documentStore, readCache, mediaStore)

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	handlers := api.NewHandlers(postAggregator, answerAggregator, voteLedger, writer, catalogResolver)
	router := api.NewRouter(handlers, &cfg.Auth)
	router.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
