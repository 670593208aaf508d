package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

const projectColumns = `id, client_id, title, description, service_type, required_skills, budget_cents, deadline, status, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.ServiceType, &p.RequiredSkills, &p.BudgetCents, &p.Deadline, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, client_id, title, description, service_type, required_skills, budget_cents, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, p.ID, p.ClientID, p.Title, p.Description, p.ServiceType, p.RequiredSkills, p.BudgetCents, p.Deadline, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id))
}

// GetByIDForUpdate locks the project row. Call within a transaction.
func (r *ProjectRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error) {
	return scanProject(tx.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE
	`, id))
}

// ListOpen returns open projects, newest first, optionally filtered by a
// required skill.
func (r *ProjectRepo) ListOpen(ctx context.Context, skill string) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE status = 'open'`
	args := []any{}
	if skill != "" {
		query += ` AND $1 = ANY(required_skills)`
		args = append(args, skill)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *ProjectRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE client_id = $1 ORDER BY created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func collectProjects(rows pgx.Rows) ([]*models.Project, error) {
	var list []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SetStatus conditionally moves a project from one status to another.
// Returns false when the project was not in fromStatus.
func (r *ProjectRepo) SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects SET status = $3, updated_at = now() WHERE id = $1 AND status = $2
	`, id, fromStatus, toStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetStatusTx is SetStatus inside the caller's transaction, unconditional on
// the previous status (the caller holds the row lock).
func (r *ProjectRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, toStatus string) error {
	_, err := tx.Exec(ctx, `
		UPDATE projects SET status = $2, updated_at = now() WHERE id = $1
	`, id, toStatus)
	return err
}
