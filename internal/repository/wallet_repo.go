package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, user_id, balance_cents, total_earned_cents, created_at, updated_at`

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.TotalEarnedCents, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return scanWallet(r.pool.QueryRow(ctx, `
		SELECT `+walletColumns+` FROM wallets WHERE user_id = $1
	`, userID))
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
func (r *WalletRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallets (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID)
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// GetByUserIDForUpdate locks the wallet row. Call within a transaction.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Wallet, error) {
	return scanWallet(tx.QueryRow(ctx, `
		SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID))
}

// CreditTx atomically adds amount to both balance and total_earned,
// creating the wallet if the freelancer has never been paid before.
// A single upsert-increment, never read-modify-write.
func (r *WalletRepo) CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallets (id, user_id, balance_cents, total_earned_cents)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance_cents = wallets.balance_cents + EXCLUDED.balance_cents,
		    total_earned_cents = wallets.total_earned_cents + EXCLUDED.total_earned_cents,
		    updated_at = now()
	`, uuid.New(), userID, amountCents)
	return err
}

// ReserveTx debits amount from the wallet if the balance covers it.
// Returns false when the balance is insufficient; nothing is written then.
func (r *WalletRepo) ReserveTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amountCents int64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets SET balance_cents = balance_cents - $1, updated_at = now()
		WHERE id = $2 AND balance_cents >= $1
	`, amountCents, walletID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RefundTx returns previously reserved funds to the wallet
// (withdrawal rejection).
func (r *WalletRepo) RefundTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amountCents int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE wallets SET balance_cents = balance_cents + $1, updated_at = now()
		WHERE id = $2
	`, amountCents, walletID)
	return err
}
