package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type ContractRepo struct {
	pool *pgxpool.Pool
}

func NewContractRepo(pool *pgxpool.Pool) *ContractRepo {
	return &ContractRepo{pool: pool}
}

const contractColumns = `id, project_id, proposal_id, client_id, freelancer_id, amount_cents, platform_fee_cents, status, revision_count, start_date, deadline, approved_at, created_at, updated_at`

func scanContract(row pgx.Row) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.ProjectID, &c.ProposalID, &c.ClientID, &c.FreelancerID, &c.AmountCents, &c.PlatformFeeCents, &c.Status, &c.RevisionCount, &c.StartDate, &c.Deadline, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateTx inserts the contract inside the caller's transaction
// (proposal acceptance writes proposal, contract and project atomically).
func (r *ContractRepo) CreateTx(ctx context.Context, tx pgx.Tx, c *models.Contract) error {
	return tx.QueryRow(ctx, `
		INSERT INTO contracts (id, project_id, proposal_id, client_id, freelancer_id, amount_cents, platform_fee_cents, status, revision_count, start_date, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, c.ID, c.ProjectID, c.ProposalID, c.ClientID, c.FreelancerID, c.AmountCents, c.PlatformFeeCents, c.Status, c.RevisionCount, c.StartDate, c.Deadline).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *ContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return scanContract(r.pool.QueryRow(ctx, `
		SELECT `+contractColumns+` FROM contracts WHERE id = $1
	`, id))
}

// GetByIDForUpdate locks the contract row. Settlement relies on this to
// serialize per contract.
func (r *ContractRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Contract, error) {
	return scanContract(tx.QueryRow(ctx, `
		SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE
	`, id))
}

// ListByUser returns contracts where the user is either party, newest first.
func (r *ContractRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SetStatus conditionally moves a contract from one status to another.
// Returns false when the row was not in fromStatus (lost the race or an
// invalid starting point).
func (r *ContractRepo) SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET status = $3, updated_at = now() WHERE id = $1 AND status = $2
	`, id, fromStatus, toStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkNeedsRevision moves submitted -> needs_revision and bumps the
// revision counter in the same statement.
func (r *ContractRepo) MarkNeedsRevision(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts
		SET status = $2, revision_count = revision_count + 1, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, models.ContractStatusNeedsRevision, models.ContractStatusSubmitted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkApproved moves submitted -> approved and stamps approved_at.
func (r *ContractRepo) MarkApproved(ctx context.Context, id uuid.UUID, approvedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts
		SET status = $2, approved_at = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, models.ContractStatusApproved, approvedAt, models.ContractStatusSubmitted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteTx moves approved -> completed inside the settlement transaction.
// The zero-rows case is the settlement idempotency guard.
func (r *ContractRepo) CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE contracts SET status = $2, updated_at = now() WHERE id = $1 AND status = $3
	`, id, models.ContractStatusCompleted, models.ContractStatusApproved)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ForceApproveTx stamps approval regardless of the current status. Admin
// dispute resolution uses it so payment release can still funnel through
// CompleteTx's idempotency guard.
func (r *ContractRepo) ForceApproveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE contracts SET status = $2, approved_at = now(), updated_at = now() WHERE id = $1
	`, id, models.ContractStatusApproved)
	return err
}

// CancelTx moves any non-terminal status -> cancelled inside the caller's
// transaction (dispute resolution path).
func (r *ContractRepo) CancelTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE contracts SET status = $2, updated_at = now()
		WHERE id = $1 AND status NOT IN ($3, $4)
	`, id, models.ContractStatusCancelled, models.ContractStatusCompleted, models.ContractStatusCancelled)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
