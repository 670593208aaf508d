package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

// StatsRepo aggregates platform-wide counters for the admin dashboard.
type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) Snapshot(ctx context.Context) (*models.PlatformStats, error) {
	var s models.PlatformStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM projects),
			(SELECT count(*) FROM contracts),
			(SELECT count(*) FROM contracts WHERE status = $1),
			(SELECT count(*) FROM disputes WHERE status = $2),
			(SELECT count(*) FROM withdrawals WHERE status = $3),
			(SELECT coalesce(sum(amount_cents), 0) FROM payments WHERE status = $4),
			(SELECT coalesce(sum(platform_fee_cents), 0) FROM payments WHERE status = $4)
	`, models.ContractStatusCompleted, models.DisputeStatusOpen,
		models.WithdrawalStatusPending, models.PaymentStatusReleased,
	).Scan(
		&s.Users, &s.Projects, &s.Contracts, &s.CompletedContracts,
		&s.OpenDisputes, &s.PendingWithdrawals,
		&s.ReleasedVolumeCents, &s.PlatformFeesCents,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
