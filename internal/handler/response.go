package handler

import "github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HomeResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ModelLoaded bool   `json:"model_loaded"`
	TotalGames  int    `json:"total_games"`
}

type GamesResponse struct {
	Success    bool          `json:"success"`
	TotalGames int           `json:"total_games"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	Games      []domain.Game `json:"games"`
}

type RecommendationResponse struct {
	Success              bool                    `json:"success"`
	UserReview           string                  `json:"user_review"`
	TotalRecommendations int                     `json:"total_recommendations"`
	Recommendations      []domain.Recommendation `json:"recommendations"`
	CacheHit             bool                    `json:"cache_hit"`
}

// EmptyRecommendationResponse is sent when a query matched nothing in the vocabulary.
type EmptyRecommendationResponse struct {
	Success         bool                    `json:"success"`
	UserReview      string                  `json:"user_review"`
	Recommendations []domain.Recommendation `json:"recommendations"`
	Message         string                  `json:"message"`
}

type ProfileResponse struct {
	Success              bool                           `json:"success"`
	Profile              string                         `json:"profile"`
	TotalRecommendations int                            `json:"total_recommendations"`
	Recommendations      []domain.ProfileRecommendation `json:"recommendations"`
}

type StatsResponse struct {
	Success bool         `json:"success"`
	Stats   domain.Stats `json:"stats"`
}

const noMatchMessage = "No matching games found. Try using different keywords."
