package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

const proposalColumns = `id, project_id, freelancer_id, price_cents, delivery_days, message, status, created_at, updated_at`

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.PriceCents, &p.DeliveryDays, &p.Message, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO proposals (id, project_id, freelancer_id, price_cents, delivery_days, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.ProjectID, p.FreelancerID, p.PriceCents, p.DeliveryDays, p.Message, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return scanProposal(r.pool.QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE id = $1
	`, id))
}

// GetByIDForUpdate locks the proposal row. Call within a transaction.
func (r *ProposalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	return scanProposal(tx.QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE
	`, id))
}

func (r *ProposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProposals(rows)
}

func (r *ProposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE freelancer_id = $1 ORDER BY created_at DESC
	`, freelancerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProposals(rows)
}

// ListIncoming returns proposals on the client's projects, newest first.
func (r *ProposalRepo) ListIncoming(ctx context.Context, clientID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.project_id, p.freelancer_id, p.price_cents, p.delivery_days, p.message, p.status, p.created_at, p.updated_at
		FROM proposals p
		JOIN projects pr ON pr.id = p.project_id
		WHERE pr.client_id = $1
		ORDER BY p.created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProposals(rows)
}

func collectProposals(rows pgx.Rows) ([]*models.Proposal, error) {
	var list []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// HasPending reports whether the freelancer already has a pending proposal
// on the project.
func (r *ProposalRepo) HasPending(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM proposals
			WHERE project_id = $1 AND freelancer_id = $2 AND status = 'pending'
		)
	`, projectID, freelancerID).Scan(&exists)
	return exists, err
}

// SetStatus conditionally moves a proposal from one status to another.
// Returns false when the proposal was not in fromStatus.
func (r *ProposalRepo) SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = now() WHERE id = $1 AND status = $2
	`, id, fromStatus, toStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetStatusTx is the transactional variant of SetStatus.
func (r *ProposalRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = now() WHERE id = $1 AND status = $2
	`, id, fromStatus, toStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RejectPendingTx rejects every pending proposal on the project except the
// accepted one and returns the affected freelancer IDs so they can be
// notified.
func (r *ProposalRepo) RejectPendingTx(ctx context.Context, tx pgx.Tx, projectID, exceptID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `
		UPDATE proposals SET status = 'rejected', updated_at = now()
		WHERE project_id = $1 AND id <> $2 AND status = 'pending'
		RETURNING freelancer_id
	`, projectID, exceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
