package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/repository"
)

const (
	seedGames         = 60
	minReviewsPerGame = 5
	maxExtraReviews   = 20
	firstSeededAppID  = 100000
	phrasesPerReview  = 3
)

var genres = []string{"action", "puzzle", "rpg", "strategy", "survival", "racing"}

var genreWeights = []float64{0.3, 0.15, 0.2, 0.15, 0.1, 0.1}

var genrePhrases = map[string][]string{
	"action": {
		"fast paced shooter", "intense combat", "great gunplay", "boss fights are brutal",
		"tight controls", "explosive action", "competitive multiplayer",
	},
	"puzzle": {
		"clever puzzles", "relaxing atmosphere", "brain teasing levels", "calm music",
		"satisfying solutions", "minimalist art style",
	},
	"rpg": {
		"deep story", "memorable characters", "huge open world", "meaningful choices",
		"character customization", "side quests everywhere", "epic fantasy adventure",
	},
	"strategy": {
		"deep tactics", "resource management", "turn based battles", "base building",
		"empire management", "hard decisions",
	},
	"survival": {
		"crafting system", "scary nights", "hunting and gathering", "cooperative survival with friends",
		"permadeath tension", "open world exploration",
	},
	"racing": {
		"realistic driving physics", "beautiful tracks", "car customization", "split screen racing",
		"drifting feels great", "arcade speed",
	},
}

var verdicts = []string{
	"absolutely loved it", "worth every penny", "highly recommend", "could not stop playing",
	"a bit short but fun", "needs more content", "runs smoothly", "amazing graphics",
}

var titleWords = map[string][]string{
	"action":   {"Bullet", "Storm", "Strike", "Fury", "Iron"},
	"puzzle":   {"Zen", "Tiles", "Lumen", "Prism", "Quiet"},
	"rpg":      {"Legends", "Realm", "Saga", "Crown", "Shadow"},
	"strategy": {"Empire", "Command", "Dominion", "Siege", "Frontier"},
	"survival": {"Wilds", "Outlast", "Ember", "Frost", "Haven"},
	"racing":   {"Turbo", "Apex", "Drift", "Circuit", "Nitro"},
}

// Setup replaces the contents of game_reviews with deterministic sample reviews.
func Setup(ctx context.Context, pool *pgxpool.Pool, log *logrus.Entry) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Info("[seed] truncating existing reviews")
	if _, err := pool.Exec(ctx, `TRUNCATE game_reviews RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	reviews := Generate(rng, seedGames)
	log.WithField("reviews", len(reviews)).Info("[seed] inserting reviews")
	if err := repository.NewRepository(pool).InsertReviews(ctx, reviews); err != nil {
		return fmt.Errorf("seed reviews: %w", err)
	}

	log.Info("[seed] seeding complete")
	return nil
}

// Generate builds sample reviews for n games. Every game gets at least
// minReviewsPerGame reviews so it survives training's minimum-review filter.
func Generate(rng *rand.Rand, n int) []domain.Review {
	var reviews []domain.Review
	for i := range n {
		genre := weightedChoice(rng, genres, genreWeights)
		words := titleWords[genre]
		name := fmt.Sprintf("%s %s %d", words[rng.Intn(len(words))], words[rng.Intn(len(words))], i+1)
		appID := int64(firstSeededAppID + i)

		count := minReviewsPerGame + int(powerLawScore(rng)*maxExtraReviews)
		for range count {
			reviews = append(reviews, domain.Review{
				AppID:   appID,
				AppName: name,
				Text:    reviewText(rng, genre),
			})
		}
	}
	return reviews
}

func reviewText(rng *rand.Rand, genre string) string {
	phrases := genrePhrases[genre]
	parts := make([]string, 0, phrasesPerReview+1)
	for range phrasesPerReview {
		parts = append(parts, phrases[rng.Intn(len(phrases))])
	}
	parts = append(parts, verdicts[rng.Intn(len(verdicts))])
	return strings.Join(parts, ", ") + "."
}

// powerLawScore skews towards small values so most games get few extra reviews.
func powerLawScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	if raw < 0.01 {
		raw = 0.01
	}
	return math.Round(raw*100) / 100
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
