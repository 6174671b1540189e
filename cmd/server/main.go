package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/artifact"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/cache"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/config"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/handler"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/logging"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/metrics"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/model"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/router"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/service"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/textproc"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("recommender-api", "info", "text").WithError(err).Fatal("failed to load config")
	}
	log := logging.New("recommender-api", cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ Model ---------------
	log.Info("loading model artifacts")
	bundle, err := artifact.Load(cfg.ArtifactPaths())
	if err != nil {
		log.WithError(err).Fatal("failed to load model artifacts, run the trainer first")
	}
	normalizer, err := textproc.New()
	if err != nil {
		log.WithError(err).Fatal("failed to load lemmatizer")
	}
	engine, err := model.NewEngine(normalizer, bundle.Model, bundle.Vectors, bundle.Games)
	if err != nil {
		log.WithError(err).Fatal("model artifacts are inconsistent")
	}
	stats := engine.Stats()
	metrics.GamesLoaded.Set(float64(stats.TotalGames))
	metrics.VocabularySize.Set(float64(stats.VocabularySize))
	log.WithField("games", stats.TotalGames).
		WithField("vocabulary_size", stats.VocabularySize).
		Info("model loaded")

	// ------------ Redis ---------------
	var resultCache service.ResultCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewFromURL(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		defer rc.Close()

		if err := rc.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, serving without cache")
		} else {
			// results from a previous model must not outlive it
			if err := rc.ClearAll(ctx); err != nil {
				log.WithError(err).Warn("failed to clear cached results")
			}
			resultCache = rc
			log.Info("connected to Redis")
		}
	}

	// ---------------- Server --------------------
	svc := service.NewService(engine, resultCache, log, service.Options{
		DefaultTopN: cfg.DefaultTopN,
		MaxTopN:     cfg.MaxTopN,
	})
	h := handler.NewHandler(svc, log)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, log, router.Options{
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			RequestTimeout:     cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
