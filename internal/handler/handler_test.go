package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/logging"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/model"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/service"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/textproc"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/vectorspace"
)

var testGames = []domain.Game{
	{ID: 10, Name: "Bullet Storm Arena", ReviewCount: 7},
	{ID: 20, Name: "Zen Tiles", ReviewCount: 5},
	{ID: 30, Name: "Far Horizons", ReviewCount: 9},
}

var testReviews = []string{
	"fast paced shooter action",
	"relaxing puzzle calm",
	"open world exploration adventure",
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	n := textproc.NewNormalizer(textproc.IdentityLemmatizer{})
	docs := make([]string, len(testReviews))
	for i, r := range testReviews {
		docs[i] = n.Clean(r)
	}
	cfg := vectorspace.DefaultConfig()
	cfg.MinDF = 1
	vsm, vectors, err := vectorspace.FitTransform(docs, cfg)
	require.NoError(t, err)
	engine, err := model.NewEngine(n, vsm, vectors, testGames)
	require.NoError(t, err)

	log := logging.Discard()
	return NewHandler(service.NewService(engine, nil, log, service.Options{DefaultTopN: 2, MaxTopN: 3}), log)
}

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRecommend(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"Intense action shooter!","top_n":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[RecommendationResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Intense action shooter!", resp.UserReview)
	assert.Equal(t, 3, resp.TotalRecommendations)
	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t, int64(10), resp.Recommendations[0].GameID)
	assert.Equal(t, 1, resp.Recommendations[0].Rank)
	assert.False(t, resp.CacheHit)
}

func TestRecommendTopNBounds(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"shooter"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[RecommendationResponse](t, rec).Recommendations, 2)

	rec = serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"shooter","top_n":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[RecommendationResponse](t, rec).Recommendations, 2)

	rec = serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"shooter","top_n":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[RecommendationResponse](t, rec).Recommendations, 3)
}

func TestRecommendNonIntegerTopNUsesDefault(t *testing.T) {
	h := newTestHandler(t)
	for _, topN := range []string{`"3"`, `"many"`, `2.5`, `true`, `null`, `[3]`} {
		rec := serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"shooter","top_n":`+topN+`}`)
		require.Equal(t, http.StatusOK, rec.Code, topN)
		assert.Len(t, decode[RecommendationResponse](t, rec).Recommendations, 2, topN)
	}

	rec := serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"shooter","top_n":3.0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[RecommendationResponse](t, rec).Recommendations, 3)
}

func TestTopNOrZero(t *testing.T) {
	assert.Equal(t, 4, topNOrZero(float64(4)))
	assert.Equal(t, -2, topNOrZero(float64(-2)))
	assert.Equal(t, 0, topNOrZero(2.5))
	assert.Equal(t, 0, topNOrZero("4"))
	assert.Equal(t, 0, topNOrZero(nil))
	assert.Equal(t, 0, topNOrZero(1e300))
}

func TestRecommendNoMatch(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.Recommend, http.MethodPost, "/api/recommend", `{"review":"the and of"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[EmptyRecommendationResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, noMatchMessage, resp.Message)
	assert.NotNil(t, resp.Recommendations)
	assert.Empty(t, resp.Recommendations)
	assert.Contains(t, rec.Body.String(), `"recommendations":[]`)
}

func TestRecommendValidation(t *testing.T) {
	h := newTestHandler(t)
	cases := []struct {
		name, body, wantErr string
	}{
		{"missing review", `{}`, "Missing review"},
		{"null review", `{"review":null}`, "Missing review"},
		{"blank review", `{"review":"   "}`, "Invalid review"},
		{"numeric review", `{"review":42}`, "Invalid review"},
		{"not an object", `["fun"]`, "Invalid request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h.Recommend, http.MethodPost, "/api/recommend", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.wantErr, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRecommendBatch(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.RecommendBatch, http.MethodPost, "/api/recommend/batch", `{"reviews":["shooter action","calm puzzle","zzz"],"top_n":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[domain.BatchResponse](t, rec)
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, int64(10), resp.Results[0].Recommendations[0].GameID)
	assert.Equal(t, int64(20), resp.Results[1].Recommendations[0].GameID)
	assert.Empty(t, resp.Results[2].Recommendations)
	assert.Equal(t, 3, resp.Summary.SuccessCount)
}

func TestRecommendBatchValidation(t *testing.T) {
	h := newTestHandler(t)

	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = "fun"
	}
	body, err := json.Marshal(map[string]any{"reviews": tooMany})
	require.NoError(t, err)

	for _, b := range []string{`{}`, `{"reviews":[]}`, `{"reviews":["ok",""]}`, string(body)} {
		rec := serve(h.RecommendBatch, http.MethodPost, "/api/recommend/batch", b)
		assert.Equal(t, http.StatusBadRequest, rec.Code, b)
		assert.Equal(t, "invalid_parameter", decode[ErrorResponse](t, rec).Error)
	}
}

func TestRecommendProfile(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.RecommendProfile, http.MethodPost, "/api/profile", `{"preferences":"open world","genres":["adventure"],"top_n":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProfileResponse](t, rec)
	assert.Equal(t, "open world adventure", resp.Profile)
	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t, int64(30), resp.Recommendations[0].GameID)
	assert.Equal(t, domain.LevelHighlyRecommended, resp.Recommendations[0].Level)

	rec = serve(h.RecommendProfile, http.MethodPost, "/api/profile", `{"genres":["rpg"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListGames(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.ListGames, http.MethodGet, "/api/games?page=1&per_page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[GamesResponse](t, rec)
	assert.Equal(t, 3, resp.TotalGames)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.PerPage)
	require.Len(t, resp.Games, 2)
	assert.Equal(t, "Bullet Storm Arena", resp.Games[0].Name)
	assert.NotContains(t, rec.Body.String(), "review_count")

	rec = serve(h.ListGames, http.MethodGet, "/api/games?page=2&per_page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[GamesResponse](t, rec).Games, 1)

	rec = serve(h.ListGames, http.MethodGet, "/api/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, decode[GamesResponse](t, rec).PerPage)

	for _, q := range []string{"page=0", "page=abc", "per_page=101", "per_page=0", "per_page=x"} {
		rec = serve(h.ListGames, http.MethodGet, "/api/games?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestStats(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.Stats, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[StatsResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Stats.TotalGames)
	assert.Positive(t, resp.Stats.VocabularySize)
	assert.Equal(t, resp.Stats.VocabularySize, resp.Stats.VectorDimensions)
}

func TestHome(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h.Home, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HomeResponse](t, rec)
	assert.Equal(t, "online", resp.Status)
	assert.True(t, resp.ModelLoaded)
	assert.Equal(t, 3, resp.TotalGames)
}

func TestRecovererWritesJSON500(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Recoverer(logging.Discard()))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[ErrorResponse](t, rec).Error)
}
