package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByProduct returns reviews newest first, plus the total count.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]model.Review, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, customer_id, author_name, rating, title, body, verified_purchase, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Review, error) {
		var rv model.Review
		err := row.Scan(&rv.ID, &rv.ProductID, &rv.CustomerID, &rv.AuthorName, &rv.Rating,
			&rv.Title, &rv.Body, &rv.VerifiedPurchase, &rv.CreatedAt)
		return rv, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan reviews: %w", err)
	}
	return reviews, total, nil
}

// Summary computes the average rating and the per-star histogram.
func (r *ReviewRepository) Summary(ctx context.Context, productID uuid.UUID) (model.ReviewSummary, error) {
	summary := model.ReviewSummary{Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	rows, err := r.pool.Query(ctx, `
		SELECT rating, count(*) FROM reviews WHERE product_id = $1 GROUP BY rating`, productID)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	defer rows.Close()

	sum := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return summary, err
		}
		summary.Histogram[rating] = count
		summary.TotalCount += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	summary.AverageRating = model.AverageRating(sum, summary.TotalCount)
	return summary, nil
}

func (r *ReviewRepository) Exists(ctx context.Context, productID, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE product_id = $1 AND customer_id = $2)`,
		productID, customerID,
	).Scan(&exists)
	return exists, err
}

func (r *ReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (product_id, customer_id, author_name, rating, title, body, verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		rv.ProductID, rv.CustomerID, rv.AuthorName, rv.Rating, rv.Title, rv.Body, rv.VerifiedPurchase,
	).Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}
