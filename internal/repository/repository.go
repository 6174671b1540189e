package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AsfandAhmad/SteamGamesRecommender/internal/domain"
)

// insertBatchSize keeps a single INSERT under PostgreSQL's 65535 bind parameter limit.
const insertBatchSize = 1000

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListReviews returns up to limit reviews in insertion order. limit <= 0 returns all of them.
func (r *Repository) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	query := `SELECT app_id, app_name, review_text FROM game_reviews ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var items []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.AppID, &rv.AppName, &rv.Text); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		items = append(items, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over reviews: %w", err)
	}
	return items, nil
}

func (r *Repository) CountReviews(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_reviews`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// InsertReviews writes reviews in multi-row batches inside one transaction.
func (r *Repository) InsertReviews(ctx context.Context, reviews []domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for start := 0; start < len(reviews); start += insertBatchSize {
		end := min(start+insertBatchSize, len(reviews))
		query, args := buildInsert(reviews[start:end])
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert reviews %d-%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func buildInsert(reviews []domain.Review) (string, []any) {
	rows := make([]string, 0, len(reviews))
	args := make([]any, 0, len(reviews)*3)
	for i, rv := range reviews {
		base := i * 3
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, rv.AppID, rv.AppName, rv.Text)
	}
	return "INSERT INTO game_reviews (app_id, app_name, review_text) VALUES " + strings.Join(rows, ", "), args
}
