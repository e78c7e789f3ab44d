package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/verdant-hollow/internal/config"
	"github.com/jwebster45206/verdant-hollow/internal/handlers"
	"github.com/jwebster45206/verdant-hollow/internal/logger"
	"github.com/jwebster45206/verdant-hollow/internal/middleware"
	"github.com/jwebster45206/verdant-hollow/internal/services"
	"github.com/jwebster45206/verdant-hollow/internal/session"
	store "github.com/jwebster45206/verdant-hollow/internal/storage"
	"github.com/jwebster45206/verdant-hollow/pkg/dice"
	"github.com/jwebster45206/verdant-hollow/pkg/encounter"
	"github.com/jwebster45206/verdant-hollow/pkg/storage"
	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	sweepInterval      = 5 * time.Minute
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Verdant Hollow API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"storage_backend", cfg.StorageBackend,
		"encounter_mode", cfg.EncounterMode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	saves, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open save storage", "error", err)
		os.Exit(1)
	}

	llm, err := services.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Warn("LLM provider unavailable, using local encounters", "error", err)
		llm = nil
	}

	roller := dice.NewRoller(nil)
	var gen encounter.Generator = encounter.NewFallbackGenerator(roller)
	if llm != nil {
		gen = encounter.NewWithFallback(encounter.NewAIGenerator(llm, cfg.ContentRating, log), gen, log)
		log.Info("Using LLM encounters", "provider", llm.Name(), "content_rating", cfg.ContentRating)
	}

	game, err := story.New(story.Options{
		Mode:          cfg.EncounterMode,
		MaxEncounters: cfg.MaxEncounters,
		Roller:        roller,
		Generator:     gen,
		Storage:       saves,
		Logger:        log,
	})
	if err != nil {
		log.Error("Failed to build game", "error", err)
		os.Exit(1)
	}
	sessions := session.NewManager(game, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(saves, llm, sessions, log))
	sessionHandler := handlers.NewSessionHandler(sessions, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)
	mux.Handle("/v1/play", handlers.NewPlayHandler(sessions, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.Sweep(sessionIdleTimeout)
			case <-sweepDone:
				return
			}
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	close(sweepDone)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if llm != nil {
		if err := llm.Close(); err != nil {
			log.Error("Error closing LLM client", "error", err)
		}
	}
	if err := saves.Close(); err != nil {
		log.Error("Error closing save storage", "error", err)
	}

	log.Info("Server exited")
}

// openStorage builds the configured backend behind a local file fallback.
// A remote backend that cannot be reached leaves the file store alone.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	local, err := store.NewFileStorage(cfg.SaveDir, log)
	if err != nil {
		return nil, err
	}

	var primary storage.Storage
	switch cfg.StorageBackend {
	case config.BackendRedis:
		r, err := store.NewRedisStorage(cfg.RedisURL, log)
		if err != nil {
			logger.WithError(log, err).Warn("Redis misconfigured, saving locally")
			return local, nil
		}
		if err := r.WaitForConnection(ctx); err != nil {
			logger.WithError(log, err).Warn("Redis unreachable, saving locally")
			_ = r.Close()
			return local, nil
		}
		primary = r
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			log.Warn("DATABASE_URL not set, saving locally")
			return local, nil
		}
		p, err := store.NewPostgresStorage(ctx, cfg.DatabaseURL, log)
		if err != nil {
			logger.WithError(log, err).Warn("Postgres unavailable, saving locally")
			return local, nil
		}
		primary = p
	default:
		log.Info("Saving games locally", "dir", cfg.SaveDir)
		return local, nil
	}

	log.Info(fmt.Sprintf("Saving games to %s with local fallback", cfg.StorageBackend), "dir", cfg.SaveDir)
	return store.NewFallbackStorage(primary, local, log), nil
}
