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

	pkgvalidator "github.com/johnquangdev/standup-assistant/pkg/validator"

	"github.com/johnquangdev/standup-assistant/internal/adapter/handler"
	"github.com/johnquangdev/standup-assistant/internal/app"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/database"
	"github.com/johnquangdev/standup-assistant/pkg/config"
	"github.com/johnquangdev/standup-assistant/pkg/jwt"
)

// @title           Standup Assistant API
// @version         1.0
// @description     Starts AI-run daily standup calls and exposes their results.

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Server.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	log.Println("🔧 Initializing dependencies...")

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Server.Environment != "production" {
		if _, err := database.Migrate(db, cfg.Database.MigrationsDir, database.Up, 0); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations in production; run `standupctl migrate up` from CI/CD")
	}

	rootCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.Build(rootCtx, cfg, db, logger, app.Options{})
	cancelInit()
	if err != nil {
		log.Fatalf("Failed to build standup pipeline: %v", err)
	}
	defer a.Close()

	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	if cfg.Hooks.TriggerSecret == "" {
		log.Println("⚠️  HOOKS_TRIGGER_SECRET is empty; scheduler triggers will be rejected")
	}

	var livekitHook *handler.LiveKitWebhook
	if !cfg.LiveKit.UseMock {
		log.Println("🪝 Initializing LiveKit webhook receiver...")
		livekitHook = handler.NewLiveKitWebhook(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, a.State, logger)
	}

	log.Println("🛣️  Setting up routes...")
	callHandler := handler.NewCallHandler(a.Orchestrator, cfg.Standup.MaxConcurrentCalls, logger)
	router := handler.NewRouter(cfg, jwtManager,
		callHandler,
		handler.NewTeamHandler(a.Orchestrator, logger),
		handler.NewHooksHandler(callHandler, cfg.Hooks.TriggerSecret, logger),
		livekitHook,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}
	if err := a.Orchestrator.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Calls still running at shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
