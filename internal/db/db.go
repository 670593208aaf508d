package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

// EnsureSchema creates the marketplace tables and indexes if they do not
// exist and seeds the single platform_settings row. Statements are
// idempotent so startup is safe against an already-provisioned database.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_suspended BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL CHECK (role IN ('client','designer','media_buyer','admin')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, role)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			full_name TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			platforms TEXT[] NOT NULL DEFAULT '{}',
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			service_type TEXT NOT NULL CHECK (service_type IN ('design','campaign','full_package')),
			required_skills TEXT[] NOT NULL DEFAULT '{}',
			budget_cents BIGINT NOT NULL CHECK (budget_cents > 0),
			deadline TIMESTAMPTZ NULL,
			status TEXT NOT NULL DEFAULT 'open' CHECK (status IN
				('draft','open','in_progress','under_review','completed','cancelled')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
		`CREATE TABLE IF NOT EXISTS proposals (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			freelancer_id UUID NOT NULL REFERENCES users(id),
			price_cents BIGINT NOT NULL CHECK (price_cents > 0),
			delivery_days INTEGER NOT NULL CHECK (delivery_days > 0),
			message TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN
				('pending','accepted','rejected','withdrawn')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_one_pending
			ON proposals(project_id, freelancer_id) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_proposals_project ON proposals(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_proposals_freelancer ON proposals(freelancer_id)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			proposal_id UUID NULL UNIQUE REFERENCES proposals(id),
			client_id UUID NOT NULL REFERENCES users(id),
			freelancer_id UUID NOT NULL REFERENCES users(id),
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			platform_fee_cents BIGINT NOT NULL CHECK (platform_fee_cents >= 0),
			status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN
				('in_progress','submitted','needs_revision','approved','under_review','completed','cancelled')),
			revision_count INTEGER NOT NULL DEFAULT 0 CHECK (revision_count >= 0),
			start_date TIMESTAMPTZ NOT NULL DEFAULT now(),
			deadline TIMESTAMPTZ NULL,
			approved_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_client ON contracts(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_freelancer ON contracts(freelancer_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
			sender_id UUID NOT NULL REFERENCES users(id),
			content TEXT NOT NULL DEFAULT '',
			attachment_key TEXT NOT NULL DEFAULT '',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_contract_created ON messages(contract_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			contract_id UUID NOT NULL REFERENCES contracts(id),
			payer_id UUID NOT NULL REFERENCES users(id),
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			platform_fee_cents BIGINT NOT NULL CHECK (platform_fee_cents >= 0),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN
				('pending','paid','released','refunded')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users(id),
			balance_cents BIGINT NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
			total_earned_cents BIGINT NOT NULL DEFAULT 0 CHECK (total_earned_cents >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS withdrawals (
			id UUID PRIMARY KEY,
			wallet_id UUID NOT NULL REFERENCES wallets(id),
			user_id UUID NOT NULL REFERENCES users(id),
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN
				('pending','approved','rejected','processed')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawals_user ON withdrawals(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawals_status ON withdrawals(status)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			reference_id UUID NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			contract_id UUID NOT NULL REFERENCES contracts(id),
			reviewer_id UUID NOT NULL REFERENCES users(id),
			target_id UUID NOT NULL REFERENCES users(id),
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (contract_id, reviewer_id)
		)`,
		`CREATE TABLE IF NOT EXISTS disputes (
			id UUID PRIMARY KEY,
			contract_id UUID NOT NULL REFERENCES contracts(id),
			reported_by UUID NOT NULL REFERENCES users(id),
			reason TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','under_review','resolved')),
			resolution TEXT NOT NULL DEFAULT '',
			admin_notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS platform_settings (
			id BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
			commission_bps INTEGER NOT NULL CHECK (commission_bps BETWEEN 0 AND 10000),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO platform_settings (id, commission_bps)
		VALUES (TRUE, $1)
		ON CONFLICT (id) DO NOTHING
	`, models.DefaultCommissionBps)
	if err != nil {
		return fmt.Errorf("seed platform settings: %w", err)
	}
	return nil
}
