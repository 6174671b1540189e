// Package training turns raw reviews into the artifacts the server loads:
// one document per game, a fitted vector space model, and the game vectors.
package training

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/artifact"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/textproc"
	"github.com/AsfandAhmad/SteamGamesRecommender/internal/vectorspace"
)

type Config struct {
	MinReviewsPerGame int
	TFIDF             vectorspace.Config
}

// GameDocument is all cleaned review text of one game joined into a single document.
type GameDocument struct {
	Game     domain.Game
	Document string
}

type gameKey struct {
	id   int64
	name string
}

// Aggregate cleans every review, drops the ones that clean to nothing, and groups
// the rest per game. Games with fewer than minReviews surviving reviews are dropped.
// Output is ordered by app id, then app name.
func Aggregate(reviews []domain.Review, n *textproc.Normalizer, minReviews int) []GameDocument {
	parts := make(map[gameKey][]string)
	for _, rv := range reviews {
		cleaned := n.Clean(rv.Text)
		if cleaned == "" {
			continue
		}
		k := gameKey{id: rv.AppID, name: rv.AppName}
		parts[k] = append(parts[k], cleaned)
	}

	keys := make([]gameKey, 0, len(parts))
	for k, p := range parts {
		if len(p) >= minReviews {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].name < keys[j].name
	})

	docs := make([]GameDocument, len(keys))
	for i, k := range keys {
		docs[i] = GameDocument{
			Game:     domain.Game{ID: k.id, Name: k.name, ReviewCount: len(parts[k])},
			Document: strings.Join(parts[k], " "),
		}
	}
	return docs
}

// Run aggregates reviews and fits the model on the resulting game documents.
func Run(ctx context.Context, reviews []domain.Review, n *textproc.Normalizer, cfg Config, log *logrus.Entry) (*artifact.Bundle, error) {
	log = log.WithField("component", "training")
	log.WithField("reviews", len(reviews)).Info("aggregating reviews")

	docs := Aggregate(reviews, n, cfg.MinReviewsPerGame)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no game has at least %d usable reviews: %w", cfg.MinReviewsPerGame, vectorspace.ErrEmptyCorpus)
	}
	log.WithField("games", len(docs)).Infof("games with at least %d reviews", cfg.MinReviewsPerGame)

	texts := make([]string, len(docs))
	games := make([]domain.Game, len(docs))
	for i, d := range docs {
		texts[i] = d.Document
		games[i] = d.Game
	}

	vsm, vectors, err := vectorspace.FitTransform(texts, cfg.TFIDF)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	log.WithFields(logrus.Fields{
		"games":             len(games),
		"vocabulary_size":   vsm.VocabularySize(),
		"vector_dimensions": fmt.Sprintf("%dx%d", vectors.Len(), vectors.Cols),
	}).Info("training complete")

	return &artifact.Bundle{Model: vsm, Vectors: vectors, Games: games}, nil
}
