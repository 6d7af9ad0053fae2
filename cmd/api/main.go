package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/taskquest-dev/taskquest/pkg/validator"

	"github.com/taskquest-dev/taskquest/internal/adapter/handler"
	"github.com/taskquest-dev/taskquest/internal/adapter/repository"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/cache"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/database"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/external/extraction"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/external/transcription"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/storage"
	meetinguc "github.com/taskquest-dev/taskquest/internal/usecase/meeting"
	"github.com/taskquest-dev/taskquest/internal/usecase/reward"
	taskuc "github.com/taskquest-dev/taskquest/internal/usecase/task"
	"github.com/taskquest-dev/taskquest/pkg/config"
	"github.com/taskquest-dev/taskquest/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("Running GORM AutoMigrate (development only)...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("Skipping GORM AutoMigrate; use sql-migrate for schema migrations")
	}

	// Initialize cache: Redis when enabled, in-memory otherwise
	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		log.Println("Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		cacheStore = redisStore
	} else {
		log.Println("Redis disabled, using in-memory cache")
		cacheStore = cache.NewMemoryStore()
	}

	// Initialize object storage
	log.Println("Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize repositories
	log.Println("Initializing repositories...")
	taskRepo := repository.NewTaskRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize reward engine
	tables := reward.DefaultTables()
	ledger := reward.NewLedger(rewardRepo, tables, logger)
	streaks := reward.NewEngine(rewardRepo, tables, cfg.RewardLocation(), logger)

	// Initialize task usecases
	materializer := taskuc.NewMaterializer(taskRepo, logger)
	completion := taskuc.NewCompletionService(taskRepo, ledger, streaks, tables, logger)

	// Initialize external collaborators
	log.Println("Initializing collaborator clients...")
	capture := transcription.NewClient(&cfg.Assembly, minioClient, logger)
	extractor := extraction.NewClient(&cfg.Extraction, logger)

	// Initialize meeting service
	meetingService := meetinguc.NewService(meetingRepo, materializer, ledger, capture, extractor, logger)

	// Initialize JWT manager
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize handlers
	log.Println("Initializing handlers...")
	taskHandler := handler.NewTaskHandler(taskRepo, materializer, completion, cacheStore, logger)
	meetingHandler := handler.NewMeetingHandler(meetingRepo, meetingService, cacheStore, logger)
	rewardHandler := handler.NewRewardHandler(rewardRepo, tables, cacheStore, logger)
	storageHandler := handler.NewStorageHandler(minioClient, meetingRepo, meetingService, logger)
	userHandler := handler.NewUserHandler(userRepo, logger)

	// Setup router with handlers
	log.Println("Setting up routes...")
	router := handler.NewRouter(cfg, jwtManager, taskHandler, meetingHandler, rewardHandler, storageHandler, userHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		log.Printf("Environment: %s", cfg.Server.Environment)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
