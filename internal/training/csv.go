package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
)

var requiredColumns = []string{"app_id", "app_name", "review_text"}

// ReadReviewsFile reads at most limit reviews from a CSV dump. See ReadReviews.
func ReadReviewsFile(path string, limit int) ([]domain.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reviews: %w", err)
	}
	defer f.Close()
	return ReadReviews(f, limit)
}

// ReadReviews reads at most limit rows from a CSV with a header naming at least
// app_id, app_name and review_text. Other columns are ignored; rows with an
// unparsable app_id are skipped. limit <= 0 reads everything.
func ReadReviews(r io.Reader, limit int) ([]domain.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("reviews csv is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	idx := make([]int, len(requiredColumns))
	for i, name := range requiredColumns {
		c, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("reviews csv has no %q column", name)
		}
		idx[i] = c
	}

	var reviews []domain.Review
	for limit <= 0 || len(reviews) < limit {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reviews: %w", err)
		}
		if len(rec) <= max(idx[0], idx[1], idx[2]) {
			continue
		}
		appID, err := strconv.ParseInt(strings.TrimSpace(rec[idx[0]]), 10, 64)
		if err != nil {
			continue
		}
		reviews = append(reviews, domain.Review{
			AppID:   appID,
			AppName: rec[idx[1]],
			Text:    rec[idx[2]],
		})
	}
	return reviews, nil
}
