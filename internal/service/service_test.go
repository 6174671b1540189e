package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/logging"
)

type fakeEngine struct {
	mu    sync.Mutex
	calls int
	games []domain.Game
	err   error
}

func (f *fakeEngine) Clean(text string) string { return text }

func (f *fakeEngine) RecommendCleaned(cleaned string, topN int) ([]domain.Recommendation, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	recs := []domain.Recommendation{}
	if cleaned == "" || cleaned == "nomatch" {
		return recs, nil
	}
	for i := 0; i < topN && i < len(f.games); i++ {
		recs = append(recs, domain.Recommendation{
			GameID:          f.games[i].ID,
			GameName:        f.games[i].Name,
			SimilarityScore: 1 / float64(i+1),
			MatchPercentage: 100 / float64(i+1),
			Rank:            i + 1,
		})
	}
	return recs, nil
}

func (f *fakeEngine) Games() []domain.Game { return f.games }

func (f *fakeEngine) TotalGames() int { return len(f.games) }

func (f *fakeEngine) Stats() domain.Stats {
	return domain.Stats{TotalGames: len(f.games), VocabularySize: 42, VectorDimensions: 42}
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]domain.Recommendation
	getErr  error
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]domain.Recommendation)}
}

func (c *memCache) key(cleaned string, topN int) string { return fmt.Sprintf("%s|%d", cleaned, topN) }

func (c *memCache) Get(_ context.Context, cleaned string, topN int) ([]domain.Recommendation, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, ok := c.entries[c.key(cleaned, topN)]
	return recs, ok, nil
}

func (c *memCache) Set(_ context.Context, cleaned string, topN int, recs []domain.Recommendation) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(cleaned, topN)] = recs
	return nil
}

func makeGames(n int) []domain.Game {
	games := make([]domain.Game, n)
	for i := range games {
		games[i] = domain.Game{ID: int64(100 + i), Name: fmt.Sprintf("Game %d", i), ReviewCount: 5}
	}
	return games
}

func newTestService(engine Recommender, cache ResultCache) *Service {
	return NewService(engine, cache, logging.Discard(), Options{DefaultTopN: 5, MaxTopN: 20})
}

func TestNewServiceDefaults(t *testing.T) {
	s := NewService(&fakeEngine{}, nil, logging.Discard(), Options{})
	assert.Equal(t, 5, s.opts.DefaultTopN)
	assert.Equal(t, 20, s.opts.MaxTopN)
	assert.Equal(t, 100, s.opts.ProfileMaxTopN)
}

func TestProfileCapNeverBelowQueryCap(t *testing.T) {
	s := NewService(&fakeEngine{}, nil, logging.Discard(), Options{DefaultTopN: 5, MaxTopN: 250})
	assert.Equal(t, 250, s.opts.MaxTopN)
	assert.Equal(t, 250, s.opts.ProfileMaxTopN)

	s = NewService(&fakeEngine{}, nil, logging.Discard(), Options{DefaultTopN: 5, MaxTopN: 30})
	assert.Equal(t, 100, s.opts.ProfileMaxTopN)
}

func TestClampTopN(t *testing.T) {
	s := newTestService(&fakeEngine{}, nil)
	assert.Equal(t, 5, s.ClampTopN(0))
	assert.Equal(t, 5, s.ClampTopN(-3))
	assert.Equal(t, 1, s.ClampTopN(1))
	assert.Equal(t, 12, s.ClampTopN(12))
	assert.Equal(t, 20, s.ClampTopN(21))
	assert.Equal(t, 20, s.ClampTopN(1000))
}

func TestRecommendWithoutModel(t *testing.T) {
	s := newTestService(nil, nil)
	assert.False(t, s.Ready())

	_, err := s.Recommend(context.Background(), "fun", 5)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	_, err = s.RecommendBatch(context.Background(), []string{"fun"}, 5)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	_, err = s.RecommendProfile(context.Background(), "fun", nil, 5)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	_, _, err = s.Games(1, 10)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	_, err = s.Stats()
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Equal(t, 0, s.TotalGames())
}

func TestRecommendClampsTopN(t *testing.T) {
	s := newTestService(&fakeEngine{games: makeGames(50)}, nil)

	res, err := s.Recommend(context.Background(), "fun", 0)
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 5)

	res, err = s.Recommend(context.Background(), "fun", 500)
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 20)
}

func TestRecommendCacheAside(t *testing.T) {
	engine := &fakeEngine{games: makeGames(10)}
	cache := newMemCache()
	s := newTestService(engine, cache)

	first, err := s.Recommend(context.Background(), "space sim", 3)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, engine.callCount())

	second, err := s.Recommend(context.Background(), "space sim", 3)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, 1, engine.callCount())

	// a different result count is a different entry
	_, err = s.Recommend(context.Background(), "space sim", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.callCount())
}

func TestRecommendEmptyResultsAreCached(t *testing.T) {
	engine := &fakeEngine{games: makeGames(3)}
	cache := newMemCache()
	s := newTestService(engine, cache)

	res, err := s.Recommend(context.Background(), "nomatch", 5)
	require.NoError(t, err)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)

	res, err = s.Recommend(context.Background(), "nomatch", 5)
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
	assert.Equal(t, 1, engine.callCount())
}

func TestRecommendBlankQuerySkipsCache(t *testing.T) {
	engine := &fakeEngine{games: makeGames(3)}
	cache := newMemCache()
	s := newTestService(engine, cache)

	res, err := s.Recommend(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Empty(t, cache.entries)
}

func TestRecommendSurvivesCacheErrors(t *testing.T) {
	engine := &fakeEngine{games: makeGames(10)}
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	s := newTestService(engine, cache)

	res, err := s.Recommend(context.Background(), "fun", 3)
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 3)
	assert.False(t, res.CacheHit)
}

func TestRecommendEngineError(t *testing.T) {
	boom := errors.New("boom")
	s := newTestService(&fakeEngine{err: boom}, nil)

	_, err := s.Recommend(context.Background(), "fun", 3)
	assert.ErrorIs(t, err, boom)
}

func TestRecommendCanceledContext(t *testing.T) {
	engine := &fakeEngine{games: makeGames(3)}
	s := newTestService(engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Recommend(ctx, "fun", 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, engine.callCount())
}

func TestRecommendBatchKeepsOrder(t *testing.T) {
	engine := &fakeEngine{games: makeGames(10)}
	s := newTestService(engine, nil)

	reviews := make([]string, 25)
	for i := range reviews {
		reviews[i] = fmt.Sprintf("review %d", i)
	}
	reviews[7] = "nomatch"

	resp, err := s.RecommendBatch(context.Background(), reviews, 2)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TopN)
	require.Len(t, resp.Results, len(reviews))
	for i, r := range resp.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, reviews[i], r.Review)
		assert.Equal(t, domain.StatusSuccess, r.Status)
	}
	assert.Empty(t, resp.Results[7].Recommendations)
	assert.Len(t, resp.Results[0].Recommendations, 2)
	assert.Equal(t, len(reviews), resp.Summary.SuccessCount)
	assert.Equal(t, 0, resp.Summary.FailedCount)
	assert.NotEmpty(t, resp.Meta.GeneratedAt)
}

func TestRecommendBatchCapturesFailures(t *testing.T) {
	s := newTestService(&fakeEngine{err: errors.New("boom")}, nil)

	resp, err := s.RecommendBatch(context.Background(), []string{"a", "b"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Summary.SuccessCount)
	assert.Equal(t, 2, resp.Summary.FailedCount)
	for _, r := range resp.Results {
		assert.Equal(t, domain.StatusFailed, r.Status)
		assert.Equal(t, "internal_error", r.Error)
		assert.Nil(t, r.Recommendations)
	}
}

func TestBuildProfile(t *testing.T) {
	assert.Equal(t, "open world", BuildProfile("open world", nil))
	assert.Equal(t, "open world rpg survival", BuildProfile("open world", []string{"rpg", " survival "}))
	assert.Equal(t, "open world", BuildProfile("open world", []string{" ", ""}))
}

func TestRecommendProfileLevels(t *testing.T) {
	s := newTestService(&fakeEngine{games: makeGames(80)}, nil)

	recs, err := s.RecommendProfile(context.Background(), "story", []string{"rpg"}, 60)
	require.NoError(t, err)
	require.Len(t, recs, 60)
	assert.Equal(t, domain.LevelHighlyRecommended, recs[0].Level)
	assert.Equal(t, domain.LevelHighlyRecommended, recs[9].Level)
	assert.Equal(t, domain.LevelRecommended, recs[10].Level)
	assert.Equal(t, domain.LevelRecommended, recs[49].Level)
	assert.Equal(t, domain.LevelLeastRecommended, recs[50].Level)

	// profiles may go deeper than single queries but not past their own cap
	recs, err = s.RecommendProfile(context.Background(), "story", nil, 500)
	require.NoError(t, err)
	assert.Len(t, recs, 80)
}

func TestGamesPagination(t *testing.T) {
	s := newTestService(&fakeEngine{games: makeGames(25)}, nil)

	page, total, err := s.Games(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page, 10)
	assert.Equal(t, int64(100), page[0].ID)
	assert.Zero(t, page[0].ReviewCount)

	page, _, err = s.Games(3, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, int64(120), page[0].ID)

	page, total, err = s.Games(4, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestStats(t *testing.T) {
	s := newTestService(&fakeEngine{games: makeGames(4)}, nil)
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalGames)
	assert.Equal(t, 42, stats.VocabularySize)
	assert.Equal(t, 4, s.TotalGames())
}

func TestCategorizeError(t *testing.T) {
	code, _ := CategorizeError(domain.ErrModelUnavailable)
	assert.Equal(t, "model_unavailable", code)

	code, _ = CategorizeError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	assert.Equal(t, "request_timeout", code)

	code, msg := CategorizeError(errors.New("other"))
	assert.Equal(t, "internal_error", code)
	assert.NotEmpty(t, msg)
}
