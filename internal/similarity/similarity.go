// Package similarity ranks reference vectors against a query by cosine similarity.
package similarity

import (
	"errors"
	"sort"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/vectorspace"
)

// ErrNoMatch is returned when the query vector carries no weight, so every
// similarity would be a meaningless zero.
var ErrNoMatch = errors.New("query vector is empty")

// Index holds reference rows together with their precomputed norms.
// It is read-only after construction.
type Index struct {
	cols  int
	rows  []vectorspace.SparseVector
	norms []float64
}

func NewIndex(m *vectorspace.Matrix) *Index {
	ix := &Index{
		cols:  m.Cols,
		rows:  m.Rows,
		norms: make([]float64, len(m.Rows)),
	}
	for i, r := range m.Rows {
		ix.norms[i] = r.Norm()
	}
	return ix
}

func (ix *Index) Len() int { return len(ix.rows) }

// Scores computes the cosine similarity between query and every row in one pass.
// The query is expanded once to a dense lookup so each row costs only its own non-zeros.
// Rows without weight score 0.
func (ix *Index) Scores(query vectorspace.SparseVector) ([]float64, error) {
	qnorm := query.Norm()
	if qnorm == 0 {
		return nil, ErrNoMatch
	}
	dense := query.Dense(ix.cols)

	scores := make([]float64, len(ix.rows))
	for i, row := range ix.rows {
		if ix.norms[i] == 0 {
			continue
		}
		var dot float64
		for k, col := range row.Indices {
			dot += row.Values[k] * dense[col]
		}
		scores[i] = clamp(dot / (qnorm * ix.norms[i]))
	}
	return scores, nil
}

// Cosine returns the cosine similarity of two sparse vectors, 0 if either is empty.
func Cosine(a, b vectorspace.SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(a.Dot(b) / (na * nb))
}

type Match struct {
	Index int
	Score float64
}

// TopK returns the k highest scores in descending order. Equal scores keep their
// original order. k is clamped to [1, len(scores)].
func TopK(scores []float64, k int) []Match {
	if len(scores) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(scores) {
		k = len(scores)
	}

	matches := make([]Match, len(scores))
	for i, s := range scores {
		matches[i] = Match{Index: i, Score: s}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches[:k]
}

func clamp(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
