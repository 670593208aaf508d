package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Create(ctx context.Context, rev *models.Review) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO reviews (id, contract_id, reviewer_id, target_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, rev.ID, rev.ContractID, rev.ReviewerID, rev.TargetID, rev.Rating, rev.Comment).Scan(&rev.CreatedAt)
}

// Exists reports whether the reviewer already reviewed this contract.
func (r *ReviewRepo) Exists(ctx context.Context, contractID, reviewerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reviews WHERE contract_id = $1 AND reviewer_id = $2
		)
	`, contractID, reviewerID).Scan(&exists)
	return exists, err
}

// ListByTarget returns reviews received by a user, newest first.
func (r *ReviewRepo) ListByTarget(ctx context.Context, targetID uuid.UUID) ([]*models.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contract_id, reviewer_id, target_id, rating, comment, created_at
		FROM reviews WHERE target_id = $1 ORDER BY created_at DESC
	`, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Review
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.ContractID, &rev.ReviewerID, &rev.TargetID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &rev)
	}
	return list, rows.Err()
}
