package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/artifact"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/config"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/logging"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/repository"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/textproc"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/training"
	"github.com/AsfandAhmad/SteamGamesRecommender/seeds"
)

func main() {
	source := flag.String("source", "csv", "where to read reviews from: csv or postgres")
	importCSV := flag.Bool("import", false, "with -source=csv, also store the reviews in PostgreSQL")
	migrateDownOnly := flag.Bool("migrate-down", false, "drop the reviews table and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("recommender-train", "info", "text").WithError(err).Fatal("failed to load config")
	}
	log := logging.New("recommender-train", cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	if *source != "csv" && *source != "postgres" {
		log.Fatalf("unknown -source %q, want csv or postgres", *source)
	}

	var pool *pgxpool.Pool
	if *source == "postgres" || *importCSV || *migrateDownOnly {
		pool, err = connect(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer pool.Close()

		// for migrate-down using CLI flag
		if *migrateDownOnly {
			if err := migrateDown(ctx, pool); err != nil {
				log.WithError(err).Fatal("failed to migrate down")
			}
			log.Info("migrations dropped")
			return
		}
		if err := migrateUp(ctx, pool); err != nil {
			log.WithError(err).Fatal("failed to migrate up")
		}
		log.Info("migrations applied")
	}

	// ------------ Reviews ---------------
	var reviews []domain.Review
	switch *source {
	case "csv":
		log.WithField("file", cfg.RawReviewsFile).WithField("limit", cfg.SampleSize).Info("reading reviews")
		reviews, err = training.ReadReviewsFile(cfg.RawReviewsFile, cfg.SampleSize)
		if err != nil {
			log.WithError(err).Fatal("failed to read reviews")
		}
		if *importCSV {
			if err := repository.NewRepository(pool).InsertReviews(ctx, reviews); err != nil {
				log.WithError(err).Fatal("failed to import reviews")
			}
			log.WithField("reviews", len(reviews)).Info("reviews imported")
		}
	case "postgres":
		if err := checkSeed(ctx, pool, log); err != nil {
			log.WithError(err).Fatal("failed to check seed")
		}
		reviews, err = repository.NewRepository(pool).ListReviews(ctx, cfg.SampleSize)
		if err != nil {
			log.WithError(err).Fatal("failed to load reviews")
		}
	}
	log.WithField("reviews", len(reviews)).Info("reviews loaded")

	// ------------ Train ---------------
	normalizer, err := textproc.New()
	if err != nil {
		log.WithError(err).Fatal("failed to load lemmatizer")
	}
	bundle, err := training.Run(ctx, reviews, normalizer, training.Config{
		MinReviewsPerGame: cfg.MinReviewsPerGame,
		TFIDF:             cfg.TFIDF,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("training failed")
	}

	paths := cfg.ArtifactPaths()
	for _, p := range []string{paths.Model, paths.Vectors, paths.Games} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			log.WithError(err).Fatal("failed to create output directory")
		}
	}
	if err := artifact.Save(paths, bundle); err != nil {
		log.WithError(err).Fatal("failed to save artifacts")
	}
	log.WithFields(logrus.Fields{
		"model":   paths.Model,
		"vectors": paths.Vectors,
		"games":   paths.Games,
	}).Info("model files saved")
}

func connect(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := waitForDB(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("connected to PostgreSQL")
	return pool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *logrus.Entry) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Infof("waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.down.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := os.ReadFile("migrations/create_tables.up.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, log *logrus.Entry) error {
	count, err := repository.NewRepository(pool).CountReviews(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Infof("database already seeded (%d reviews), skipping", count)
		return nil
	}
	return seeds.Setup(ctx, pool, log)
}
