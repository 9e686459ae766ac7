package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/weatherscore/internal/api"
	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/logging"
	"github.com/alexivanou/weatherscore/internal/scores"
	"github.com/alexivanou/weatherscore/internal/seeder"
	"github.com/alexivanou/weatherscore/internal/service"
	"github.com/alexivanou/weatherscore/internal/stats"
	"github.com/alexivanou/weatherscore/internal/weather"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, false)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, err := scores.OpenWithConfig(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("Failed to open score store", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if cfg.Seeder.File != "" {
		autoSeed(ctx, store, cfg, logger)
	}

	if !cfg.Weather.IsConfigured() {
		logger.Warn("OPENWEATHER_API_KEY is not set; weather requests will fail")
	}
	client := weather.NewClientFromConfig(cfg.Weather, logger)

	svc := service.New(client, store, logger)
	defer svc.Close()

	statsCollector := stats.NewCollector(store, cfg.DB.Type)
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.Weather.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// autoSeed imports the configured score file into an empty store
func autoSeed(ctx context.Context, store *scores.Store, cfg *config.Config, logger *zap.Logger) {
	count, err := store.Count(ctx)
	if err != nil {
		logger.Warn("Failed to check if score store is empty", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	logger.Info("Score store is empty, importing seed file...", zap.String("file", cfg.Seeder.File))
	parser := seeder.NewParser(cfg.Seeder)
	if _, err := seeder.ImportFile(ctx, parser, cfg.Seeder.File, store, logger); err != nil {
		logger.Warn("Failed to import seed file", zap.Error(err))
	}
}
