package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourorg/trading-admin/internal/audit"
	"github.com/yourorg/trading-admin/internal/config"
	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/handler"
	"github.com/yourorg/trading-admin/internal/repository"
	"github.com/yourorg/trading-admin/internal/service"
	"github.com/yourorg/trading-admin/internal/web"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("can't detect .env file: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer syncLogger(logger)

	// Database access
	provider, err := database.NewProvider(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to configure database", zap.Error(err))
	}
	defer provider.Close()

	logger.Info("Database configured",
		zap.String("driver", cfg.Database.Driver),
		zap.String("addr", database.Address(cfg.Database)),
		zap.Bool("pooled", cfg.Database.Pooled))

	// Procedure audit
	publisher := audit.New(cfg.Audit, logger)
	defer publisher.Close()

	// Initialize repositories
	referenceRepo := repository.NewReferenceRepository(provider, logger)
	viewRepo := repository.NewViewRepository(provider, logger)
	functionRepo := repository.NewFunctionRepository(provider, logger)
	procedureRepo := repository.NewProcedureRepository(provider, logger)

	// Initialize services
	referenceService := service.NewReferenceService(referenceRepo, logger)
	viewService := service.NewViewService(viewRepo, logger)
	functionService := service.NewFunctionService(functionRepo, logger)
	procedureService := service.NewProcedureService(procedureRepo, publisher, logger)

	// Initialize handlers
	dashboardHandler := handler.NewDashboardHandler(referenceService, viewService, functionService, procedureService, logger)
	apiHandler := handler.NewAPIHandler(referenceService, viewService, functionService, procedureService, logger)

	templates, err := web.Templates()
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	// Set up HTTP server with Gin
	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(dashboardHandler, apiHandler, provider, templates, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}

func createLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch cfg.Level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// syncLogger flushes the logger; stdout on a terminal or closed pipe cannot be synced
func syncLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EBADF) && !errors.Is(err, syscall.ENOTTY) {
		log.Printf("can't sync logger: %v", err)
	}
}
