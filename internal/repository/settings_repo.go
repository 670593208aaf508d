package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

// SettingsRepo reads and updates the single-row platform_settings table.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var s models.PlatformSettings
	err := r.pool.QueryRow(ctx, `
		SELECT commission_bps, updated_at FROM platform_settings WHERE id
	`).Scan(&s.CommissionBps, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CommissionBpsTx reads the commission rate inside tx so settlement and
// acceptance see the rate consistently with their own writes.
func (r *SettingsRepo) CommissionBpsTx(ctx context.Context, tx pgx.Tx) (int, error) {
	var bps int
	err := tx.QueryRow(ctx, `
		SELECT commission_bps FROM platform_settings WHERE id
	`).Scan(&bps)
	return bps, err
}

func (r *SettingsRepo) UpdateCommission(ctx context.Context, bps int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE platform_settings SET commission_bps = $1, updated_at = now() WHERE id
	`, bps)
	return err
}
