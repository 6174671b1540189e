package model

import (
	"errors"
	"fmt"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/similarity"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/textproc"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/vectorspace"
)

// Engine answers recommendation queries over a fitted model and the game vectors
// built with it. It is never mutated after NewEngine, so one instance is shared by
// all request handlers.
type Engine struct {
	normalizer *textproc.Normalizer
	vsm        *vectorspace.Model
	index      *similarity.Index
	games      []domain.Game
}

// MismatchError reports artifacts that were not produced by the same training run.
// It matches domain.ErrArtifactCorrupt under errors.Is.
type MismatchError struct {
	Msg string
}

func (e *MismatchError) Error() string {
	return e.Msg
}

func (e *MismatchError) Unwrap() error {
	return domain.ErrArtifactCorrupt
}

func IsMismatchError(err error) bool {
	var target *MismatchError
	return errors.As(err, &target)
}

func NewEngine(n *textproc.Normalizer, vsm *vectorspace.Model, vectors *vectorspace.Matrix, games []domain.Game) (*Engine, error) {
	if n == nil || vsm == nil || vectors == nil {
		return nil, domain.ErrModelUnavailable
	}
	if vectors.Len() != len(games) {
		return nil, &MismatchError{Msg: fmt.Sprintf("game vectors have %d rows but game table has %d entries", vectors.Len(), len(games))}
	}
	if vectors.Cols != vsm.Dim() {
		return nil, &MismatchError{Msg: fmt.Sprintf("game vectors have %d columns but vocabulary has %d terms", vectors.Cols, vsm.Dim())}
	}
	return &Engine{
		normalizer: n,
		vsm:        vsm,
		index:      similarity.NewIndex(vectors),
		games:      append([]domain.Game(nil), games...),
	}, nil
}

// Clean normalizes raw query text the same way the training corpus was normalized.
func (e *Engine) Clean(text string) string {
	return e.normalizer.Clean(text)
}

// Recommend returns up to topN games ranked by similarity to text.
//
// Text that normalizes to nothing, or whose terms are all outside the vocabulary,
// yields an empty list rather than games with a meaningless zero score.
func (e *Engine) Recommend(text string, topN int) ([]domain.Recommendation, error) {
	return e.RecommendCleaned(e.Clean(text), topN)
}

// RecommendCleaned is Recommend for text that has already been through Clean.
func (e *Engine) RecommendCleaned(cleaned string, topN int) ([]domain.Recommendation, error) {
	recs := []domain.Recommendation{}
	if isBlank(cleaned) {
		return recs, nil
	}

	scores, err := e.index.Scores(e.vsm.Transform(cleaned))
	if errors.Is(err, similarity.ErrNoMatch) {
		return recs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("score query: %w", err)
	}
	if allZero(scores) {
		return recs, nil
	}

	for i, m := range similarity.TopK(scores, topN) {
		g := e.games[m.Index]
		recs = append(recs, domain.Recommendation{
			GameID:          g.ID,
			GameName:        g.Name,
			SimilarityScore: m.Score,
			MatchPercentage: m.Score * 100,
			Rank:            i + 1,
		})
	}
	return recs, nil
}

// Games lists every game the engine can recommend, in corpus order.
func (e *Engine) Games() []domain.Game {
	return append([]domain.Game(nil), e.games...)
}

func (e *Engine) TotalGames() int { return len(e.games) }

func (e *Engine) Stats() domain.Stats {
	return domain.Stats{
		TotalGames:       len(e.games),
		VocabularySize:   e.vsm.VocabularySize(),
		VectorDimensions: e.vsm.Dim(),
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func allZero(scores []float64) bool {
	for _, s := range scores {
		if s > 0 {
			return false
		}
	}
	return true
}
