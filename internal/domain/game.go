package domain

type Game struct {
	ID          int64  `json:"game_id"`
	Name        string `json:"game_name"`
	ReviewCount int    `json:"review_count,omitempty"`
}

// Review is a single raw user review as it arrives from the CSV dump or the database.
type Review struct {
	AppID   int64
	AppName string
	Text    string
}

type Stats struct {
	TotalGames       int `json:"total_games"`
	VocabularySize   int `json:"vocabulary_size"`
	VectorDimensions int `json:"vector_dimensions"`
}
