package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/marketplace-backend/config"
	"github.com/dustin/marketplace-backend/internal/adapter"
	"github.com/dustin/marketplace-backend/internal/catalog"
	"github.com/dustin/marketplace-backend/internal/embedding"
	"github.com/dustin/marketplace-backend/internal/features"
	"github.com/dustin/marketplace-backend/internal/recommendation"
	"github.com/dustin/marketplace-backend/internal/repository"
	"github.com/dustin/marketplace-backend/internal/review"
	"github.com/dustin/marketplace-backend/internal/scoring"
	"github.com/dustin/marketplace-backend/internal/search"
	"github.com/dustin/marketplace-backend/internal/user"
	"github.com/dustin/marketplace-backend/internal/utils"
	"github.com/dustin/marketplace-backend/internal/worker"
	"github.com/dustin/marketplace-backend/pkg/database"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize logger with validation and defaults
	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	appLogger.Info("Starting marketplace backend service")

	// Connect to database with validation and defaults
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: " + err.Error())
	}

	appLogger.Info("Database connection established")

	// Run database migrations for all models
	if err := db.AutoMigrate(
		&user.User{},
		&catalog.Agent{},
		&catalog.Order{},
		&review.Review{},
		&catalog.SearchHistory{},
	); err != nil {
		appLogger.Fatal("Failed to migrate database: " + err.Error())
	}

	appLogger.Info("Database migration completed")

	// Initialize GORM-based repositories
	gateway := repository.NewGORMGateway(db, appLogger)
	userRepo := repository.NewGORMUserRepository(db, appLogger)
	reviewRepo := repository.NewGORMReviewRepository(db, appLogger)

	// Remote embedding service when configured, local hashing otherwise
	embedder, err := embedding.NewFromConfig(&cfg.Embedding)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedder: " + err.Error())
	}
	embeddingClient, remoteEmbeddings := embedder.(*embedding.Client)
	if remoteEmbeddings {
		appLogger.Info("Embedding client initialized with URL: " + cfg.Embedding.ServiceURL)
	} else {
		appLogger.Info("Using local hashing embedder")
	}

	weights := scoring.DefaultWeights()
	extractor := features.NewExtractor(embedder, weights, appLogger)

	snapshotStore, err := recommendation.NewStore(&cfg.Recommendation, gateway, extractor, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize snapshot store: " + err.Error())
	}

	// Initialize business services with dependency injection
	userService, err := user.NewService(&cfg.JWT, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize user service: " + err.Error())
	}
	reviewService := review.NewService(reviewRepo, snapshotStore, appLogger)
	recommendationService, err := recommendation.NewService(&cfg.Recommendation, snapshotStore, gateway, weights, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize recommendation service: " + err.Error())
	}

	// Search embeds recommendations through an adapter
	searchService := search.NewService(
		gateway,
		adapter.NewRecommendationServiceToSearchRecommender(recommendationService),
		weights,
		appLogger,
	)

	// Initialize HTTP handlers
	userHandler := user.NewHandler(userService)
	reviewHandler := review.NewHandler(reviewService)
	searchHandler := search.NewHandler(searchService)
	recommendationHandler := recommendation.NewHandler(recommendationService)

	// Initialize background worker for snapshot rebuilds
	snapshotWorker, err := worker.NewRefreshWorker(
		&cfg.Worker,
		"snapshot-refresh",
		adapter.SnapshotStoreToRefreshFunc(snapshotStore),
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize refresh worker: " + err.Error())
	}

	// Warm the snapshot before serving; a failure here is retried lazily
	if err := snapshotWorker.RunOnce(); err != nil {
		appLogger.Warn("Initial snapshot build failed: " + err.Error())
	}

	if err := snapshotWorker.Start(); err != nil {
		appLogger.Error("Failed to start snapshot refresh worker: " + err.Error())
	}

	// Setup HTTP router with middleware
	router := gin.New()

	// Configure standard middleware stack
	router.Use(requestid.New())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "marketplace-backend",
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		status := "healthy"

		databaseStatus := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			databaseStatus = "unreachable"
			status = "degraded"
		}

		embeddingStatus := "local"
		if remoteEmbeddings {
			if _, err := embeddingClient.HealthCheck(); err != nil {
				embeddingStatus = "unreachable"
				status = "degraded"
			} else {
				embeddingStatus = "connected"
			}
		}

		snapshotInfo := gin.H{"ready": false}
		if snap, err := snapshotStore.Current(c.Request.Context()); err == nil {
			snapshotInfo = gin.H{
				"ready":    true,
				"agents":   snap.Catalog.Len(),
				"users":    len(snap.Users),
				"built_at": snap.BuiltAt,
			}
		} else {
			status = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         status,
			"timestamp":      time.Now(),
			"service":        "marketplace-backend",
			"refresh_worker": snapshotWorker.IsRunning(),
			"database":       databaseStatus,
			"embedding":      embeddingStatus,
			"snapshot":       snapshotInfo,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// JWT secret shared by the issuing service and both middlewares
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production" // default
	}
	authMiddleware := utils.NewJWTMiddleware(jwtSecret)
	optionalAuthMiddleware := utils.NewOptionalJWTMiddleware(jwtSecret)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Register feature routes - each feature manages its own routes
		userHandler.RegisterRoutes(v1, authMiddleware)
		searchHandler.RegisterRoutes(v1, optionalAuthMiddleware)
		recommendationHandler.RegisterRoutes(v1, authMiddleware)
		reviewHandler.RegisterRoutes(v1, authMiddleware)
	}

	// Parse server configuration with defaults
	serverPort := cfg.Server.Port
	if serverPort == "" {
		serverPort = "8080" // default
	}

	serverReadTimeout := 30 * time.Second // default
	if cfg.Server.ReadTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.ReadTimeout); err == nil {
			serverReadTimeout = duration
		}
	}

	serverWriteTimeout := 30 * time.Second // default
	if cfg.Server.WriteTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.WriteTimeout); err == nil {
			serverWriteTimeout = duration
		}
	}

	serverEnvironment := cfg.Server.Environment
	if serverEnvironment == "" {
		serverEnvironment = "development" // default
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	// Start server in goroutine for graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server: " + err.Error())
		}
	}()

	appLogger.Info("Server started successfully on port " + serverPort + " (" + serverEnvironment + " environment)")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop refresh worker first
	if err := snapshotWorker.Stop(); err != nil {
		appLogger.Error("Error stopping refresh worker: " + err.Error())
	}

	// Shutdown server with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown: " + err.Error())
	}

	appLogger.Info("Server shutdown complete")
}
