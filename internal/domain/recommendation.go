package domain

type Recommendation struct {
	GameID          int64   `json:"game_id"`
	GameName        string  `json:"game_name"`
	SimilarityScore float64 `json:"similarity_score"`
	MatchPercentage float64 `json:"match_percentage"`
	Rank            int     `json:"rank"`
}

type RecommendationResult struct {
	Recommendations []Recommendation
	CacheHit        bool
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchItemResult struct {
	Index           int              `json:"index"`
	Review          string           `json:"review"`
	Recommendations []Recommendation `json:"recommendations"`
	Status          BatchStatus      `json:"status"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchResponse struct {
	Success bool              `json:"success"`
	TopN    int               `json:"top_n"`
	Results []BatchItemResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
	Meta    BatchMeta         `json:"metadata"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

// ProfileRecommendation is a recommendation for a preference profile, tagged with
// a coarse tier derived from its rank.
type ProfileRecommendation struct {
	Recommendation
	Level string `json:"recommendation_level"`
}

const (
	LevelHighlyRecommended = "Highly Recommended"
	LevelRecommended       = "Recommended"
	LevelLeastRecommended  = "Least Recommended"
)

// RecommendationLevel maps a 1-based rank to its tier: top 10, top 50, the rest.
func RecommendationLevel(rank int) string {
	switch {
	case rank <= 10:
		return LevelHighlyRecommended
	case rank <= 50:
		return LevelRecommended
	default:
		return LevelLeastRecommended
	}
}
