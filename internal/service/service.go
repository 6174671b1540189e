package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/metrics"
)

const (
	defaultTopN      = 5
	maxTopN          = 20
	profileMaxTopN   = 100
	batchConcurrency = 10
)

// Recommender is the read-only query surface of a loaded model.
type Recommender interface {
	Clean(text string) string
	RecommendCleaned(cleaned string, topN int) ([]domain.Recommendation, error)
	Games() []domain.Game
	TotalGames() int
	Stats() domain.Stats
}

// ResultCache stores ranked results keyed by cleaned query text and result count.
type ResultCache interface {
	Get(ctx context.Context, cleaned string, topN int) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, cleaned string, topN int, recs []domain.Recommendation) error
}

type Options struct {
	DefaultTopN    int
	MaxTopN        int
	ProfileMaxTopN int
}

type Service struct {
	engine Recommender
	cache  ResultCache
	log    *logrus.Entry
	opts   Options
}

// NewService wires the query path. engine may be nil when no model could be loaded,
// in which case every query returns domain.ErrModelUnavailable. cache may be nil.
func NewService(engine Recommender, cache ResultCache, log *logrus.Entry, opts Options) *Service {
	if opts.DefaultTopN < 1 {
		opts.DefaultTopN = defaultTopN
	}
	if opts.MaxTopN < opts.DefaultTopN {
		opts.MaxTopN = maxTopN
	}
	if opts.ProfileMaxTopN < opts.MaxTopN {
		opts.ProfileMaxTopN = max(profileMaxTopN, opts.MaxTopN)
	}
	return &Service{
		engine: engine,
		cache:  cache,
		log:    log.WithField("component", "service"),
		opts:   opts,
	}
}

func (s *Service) Ready() bool {
	return s.engine != nil
}

// ClampTopN maps a requested count into [1, MaxTopN]; anything below 1 means "use the default".
func (s *Service) ClampTopN(n int) int {
	return clamp(n, s.opts.DefaultTopN, s.opts.MaxTopN)
}

func (s *Service) Recommend(ctx context.Context, review string, topN int) (*domain.RecommendationResult, error) {
	if s.engine == nil {
		return nil, domain.ErrModelUnavailable
	}
	return s.recommend(ctx, review, s.ClampTopN(topN))
}

func (s *Service) recommend(ctx context.Context, review string, topN int) (*domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned := s.engine.Clean(review)

	// Check cache
	if s.cache != nil && cleaned != "" {
		cached, found, err := s.cache.Get(ctx, cleaned, topN)
		if err != nil {
			metrics.CacheErrors.WithLabelValues("get").Inc()
			s.log.WithError(err).Warn("cache get failed")
		}
		if found {
			metrics.CacheHits.Inc()
			return &domain.RecommendationResult{Recommendations: cached, CacheHit: true}, nil
		}
		metrics.CacheMisses.Inc()
	}

	start := time.Now()
	recs, err := s.engine.RecommendCleaned(cleaned, topN)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("rank games: %w", err)
	}
	if len(recs) == 0 {
		metrics.RecommendEmpty.Inc()
	}

	if s.cache != nil && cleaned != "" {
		if cacheErr := s.cache.Set(ctx, cleaned, topN, recs); cacheErr != nil {
			metrics.CacheErrors.WithLabelValues("set").Inc()
			s.log.WithError(cacheErr).Warn("cache set failed")
		}
	}

	return &domain.RecommendationResult{Recommendations: recs}, nil
}

// BuildProfile joins free-text preferences with an optional list of genres into one query.
func BuildProfile(preferences string, genres []string) string {
	var kept []string
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return preferences
	}
	return preferences + " " + strings.Join(kept, " ")
}

// RecommendProfile ranks games for a preference profile. It allows deeper result
// lists than Recommend and tags each result with its tier.
func (s *Service) RecommendProfile(ctx context.Context, preferences string, genres []string, topN int) ([]domain.ProfileRecommendation, error) {
	if s.engine == nil {
		return nil, domain.ErrModelUnavailable
	}
	res, err := s.recommend(ctx, BuildProfile(preferences, genres), clamp(topN, s.opts.DefaultTopN, s.opts.ProfileMaxTopN))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProfileRecommendation, len(res.Recommendations))
	for i, r := range res.Recommendations {
		out[i] = domain.ProfileRecommendation{Recommendation: r, Level: domain.RecommendationLevel(r.Rank)}
	}
	return out, nil
}

func (s *Service) RecommendBatch(ctx context.Context, reviews []string, topN int) (*domain.BatchResponse, error) {
	if s.engine == nil {
		return nil, domain.ErrModelUnavailable
	}
	start := time.Now()
	topN = s.ClampTopN(topN)

	// Process reviews concurrently with bounded worker pool
	results := make([]domain.BatchItemResult, len(reviews))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)

	for i, review := range reviews {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = s.processBatchItem(ctx, idx, text, topN)
		}(i, review)
	}
	wg.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Success: true,
		TopN:    topN,
		Results: results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Meta: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// processBatchItem ranks one review of a batch, capturing errors instead of failing the batch.
func (s *Service) processBatchItem(ctx context.Context, idx int, review string, topN int) domain.BatchItemResult {
	res, err := s.recommend(ctx, review, topN)
	if err != nil {
		s.log.WithError(err).WithField("index", idx).Warn("batch item failed")
		code, msg := CategorizeError(err)
		return domain.BatchItemResult{
			Index:   idx,
			Review:  review,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}
	return domain.BatchItemResult{
		Index:           idx,
		Review:          review,
		Recommendations: res.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

// Games returns one page of the game catalogue and the catalogue size.
// page and perPage are 1-based and assumed validated by the caller.
func (s *Service) Games(page, perPage int) ([]domain.Game, int, error) {
	if s.engine == nil {
		return nil, 0, domain.ErrModelUnavailable
	}
	all := s.engine.Games()
	total := len(all)

	start := (page - 1) * perPage
	if start >= total {
		return []domain.Game{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}

	out := make([]domain.Game, end-start)
	for i, g := range all[start:end] {
		out[i] = domain.Game{ID: g.ID, Name: g.Name}
	}
	return out, total, nil
}

func (s *Service) TotalGames() int {
	if s.engine == nil {
		return 0
	}
	return s.engine.TotalGames()
}

func (s *Service) Stats() (domain.Stats, error) {
	if s.engine == nil {
		return domain.Stats{}, domain.ErrModelUnavailable
	}
	return s.engine.Stats(), nil
}

// CategorizeError maps an error to a stable code and a user-facing message.
func CategorizeError(err error) (string, string) {
	if errors.Is(err, domain.ErrModelUnavailable) {
		return "model_unavailable", "recommendation system is not initialized"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "request_timeout", "request timed out, please try again"
	}
	return "internal_error", "an unexpected error occurred"
}

func clamp(n, def, max int) int {
	if n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
