package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

const disputeColumns = `id, contract_id, reported_by, reason, status, resolution, admin_notes, created_at, updated_at`

type DisputeRepo struct {
	pool *pgxpool.Pool
}

func NewDisputeRepo(pool *pgxpool.Pool) *DisputeRepo {
	return &DisputeRepo{pool: pool}
}

func scanDispute(row pgx.Row) (*models.Dispute, error) {
	var d models.Dispute
	err := row.Scan(&d.ID, &d.ContractID, &d.ReportedBy, &d.Reason, &d.Status,
		&d.Resolution, &d.AdminNotes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO disputes (id, contract_id, reported_by, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, d.ID, d.ContractID, d.ReportedBy, d.Reason, d.Status).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return scanDispute(r.pool.QueryRow(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE id = $1
	`, id))
}

func (r *DisputeRepo) ListByStatus(ctx context.Context, status string) ([]*models.Dispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE status = $1 ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	return collectDisputes(rows)
}

func (r *DisputeRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Dispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE contract_id = $1 ORDER BY created_at DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	return collectDisputes(rows)
}

func collectDisputes(rows pgx.Rows) ([]*models.Dispute, error) {
	defer rows.Close()
	var list []*models.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ResolveTx records the admin's resolution. The status guard makes
// resolution a one-shot transition.
func (r *DisputeRepo) ResolveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, resolution, notes string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE disputes
		SET status = $1, resolution = $2, admin_notes = $3, updated_at = now()
		WHERE id = $4 AND status <> $1
	`, models.DisputeStatusResolved, resolution, notes, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
