package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, user_id, full_name, bio, avatar_url, skills, platforms, is_verified, is_featured, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Bio, &p.AvatarURL, &p.Skills, &p.Platforms, &p.IsVerified, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE user_id = $1
	`, userID))
}

// SetModeration updates the admin-controlled flags.
func (r *ProfileRepo) SetModeration(ctx context.Context, userID uuid.UUID, verified, featured bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE profiles SET is_verified = $2, is_featured = $3, updated_at = now()
		WHERE user_id = $1
	`, userID, verified, featured)
	return err
}

// ListFeatured returns featured freelancer profiles for the public landing feed.
func (r *ProfileRepo) ListFeatured(ctx context.Context) ([]*models.Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE is_featured ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET full_name = $2, bio = $3, avatar_url = $4, skills = $5, platforms = $6, updated_at = now()
		WHERE user_id = $1
	`, p.UserID, p.FullName, p.Bio, p.AvatarURL, p.Skills, p.Platforms)
	return err
}
