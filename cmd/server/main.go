package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal/internal/appinfo"
	"jobportal/internal/cache"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/handlers/web"
	"jobportal/internal/middleware"
	"jobportal/internal/repositories"
	"jobportal/internal/response"
	"jobportal/internal/router"
	"jobportal/internal/services"
	"jobportal/internal/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, cfgErr := config.Load()

	var logging config.LoggingConfig
	if cfg != nil {
		logging = cfg.Logging
	}

	// Initialize logger
	logger, err := initLogger(os.Getenv("GO_ENV"), logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfgErr != nil {
		logger.Fatal("Failed to load configuration", zap.Error(cfgErr))
	}

	logger.Info("Starting job portal",
		zap.String("version", appinfo.Version()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Database and migrations
	dbManager, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbManager.Close()

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repositories", zap.Error(err))
	}

	// Cache for filter side data
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Provider = cfg.Cache.Provider
	cacheConfig.RedisURL = cfg.Cache.RedisURL
	cacheConfig.TTL = cfg.Cache.TTL
	cacheInstance, err := cache.NewCache(cacheConfig, logger)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	// Resume storage
	resumeStore, err := storage.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize resume storage", zap.Error(err))
	}

	serviceCollection, err := services.NewServiceCollection(repos, cacheInstance, resumeStore, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer serviceCollection.Close()

	// Seed the admin account before accepting requests
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := serviceCollection.AuthService.SeedAdmin(seedCtx); err != nil {
		seedCancel()
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}
	seedCancel()

	responseConfig := response.DefaultConfig()
	responseConfig.MaskInternalErrors = cfg.IsProduction()
	responseConfig.PrettyJSON = cfg.IsDevelopment()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	authenticator := middleware.NewAuthenticator(serviceCollection.AuthService, cfg.Auth.CookieName, responseBuilder)
	handlers := web.NewHandler(serviceCollection, responseBuilder, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupRouter(handlers, authenticator, responseBuilder, cfg, logger),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down application...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	metrics := dbManager.Metrics()
	logger.Info("Final database metrics",
		zap.Int64("total_queries", metrics.QueryCount),
		zap.Int64("total_errors", metrics.ErrorCount),
		zap.Int64("slow_queries", metrics.SlowQueryCount),
		zap.Duration("avg_query_duration", metrics.AvgQueryDuration),
	)
}

// initLogger builds the zap logger for the environment, then applies the
// configured level and encoding
func initLogger(env string, logging config.LoggingConfig) (*zap.Logger, error) {
	var config zap.Config

	switch env {
	case "production":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if logging.Level != "" {
		level, err := zapcore.ParseLevel(logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", logging.Level, err)
		}
		config.Level.SetLevel(level)
	}

	switch logging.Format {
	case "json":
		config.Encoding = "json"
	case "console", "text":
		config.Encoding = "console"
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
