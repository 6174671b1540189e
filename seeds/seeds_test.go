package seeds

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(rand.New(rand.NewSource(42)), 10)
	b := Generate(rand.New(rand.NewSource(42)), 10)
	assert.Equal(t, a, b)
}

func TestGenerateCoversEveryGame(t *testing.T) {
	reviews := Generate(rand.New(rand.NewSource(42)), 12)
	require.NotEmpty(t, reviews)

	perGame := map[int64]int{}
	names := map[int64]string{}
	for _, r := range reviews {
		perGame[r.AppID]++
		if prev, ok := names[r.AppID]; ok {
			assert.Equal(t, prev, r.AppName)
		}
		names[r.AppID] = r.AppName
		assert.NotEmpty(t, r.Text)
	}
	assert.Len(t, perGame, 12)
	for id, n := range perGame {
		assert.GreaterOrEqual(t, n, minReviewsPerGame, "app %d", id)
	}
}

func TestWeightedChoice(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 100 {
		assert.Equal(t, "only", weightedChoice(rng, []string{"never", "only"}, []float64{0, 1}))
	}
}

func TestPowerLawScoreRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for range 1000 {
		s := powerLawScore(rng)
		assert.GreaterOrEqual(t, s, 0.01)
		assert.LessOrEqual(t, s, 1.0)
	}
}
