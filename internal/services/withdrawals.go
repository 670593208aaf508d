package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/notify"
)

// MinWithdrawalCents is the smallest withdrawal the platform processes.
const MinWithdrawalCents = 1000

// WithdrawalStore is the withdrawal repository surface the service needs.
type WithdrawalStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Withdrawal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Withdrawal, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) (bool, error)
}

// WithdrawalWalletStore reserves and refunds wallet funds.
type WithdrawalWalletStore interface {
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Wallet, error)
	ReserveTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amountCents int64) (bool, error)
	RefundTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amountCents int64) error
}

// WithdrawalService handles freelancer payout requests. Funds are debited
// when the request is created, so the wallet balance can never be promised
// to two withdrawals; rejection puts the money back.
type WithdrawalService struct {
	db             TxBeginner
	withdrawals    WithdrawalStore
	wallets        WithdrawalWalletStore
	insertNotifyTx notify.InsertTxFunc
	log            *slog.Logger
}

func NewWithdrawalService(db TxBeginner, withdrawals WithdrawalStore, wallets WithdrawalWalletStore,
	insertNotifyTx notify.InsertTxFunc, log *slog.Logger) *WithdrawalService {
	if log == nil {
		log = slog.Default()
	}
	return &WithdrawalService{db: db, withdrawals: withdrawals, wallets: wallets, insertNotifyTx: insertNotifyTx, log: log}
}

// Request reserves the amount from the wallet and records a pending
// withdrawal in one transaction. The conditional debit is the server-side
// balance check: a stale balance read by the client cannot overdraw.
func (s *WithdrawalService) Request(ctx context.Context, userID uuid.UUID, amountCents int64) (*models.Withdrawal, error) {
	if amountCents < MinWithdrawalCents {
		return nil, fmt.Errorf("%w: minimum withdrawal is %d cents", ErrValidation, MinWithdrawalCents)
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	wallet, err := s.wallets.GetByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}
	ok, err := s.wallets.ReserveTx(ctx, tx, wallet.ID, amountCents)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}
	w := &models.Withdrawal{
		ID:          uuid.New(),
		WalletID:    wallet.ID,
		UserID:      userID,
		AmountCents: amountCents,
		Status:      models.WithdrawalStatusPending,
	}
	if err := s.withdrawals.CreateTx(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WithdrawalService) ListMine(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error) {
	return s.withdrawals.ListByUser(ctx, userID)
}

func (s *WithdrawalService) ListByStatus(ctx context.Context, status string) ([]*models.Withdrawal, error) {
	return s.withdrawals.ListByStatus(ctx, status)
}

// Approve moves a pending withdrawal to approved. Funds stay reserved until
// MarkProcessed records the external transfer.
func (s *WithdrawalService) Approve(ctx context.Context, withdrawalID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := s.withdrawals.GetByIDForUpdate(ctx, tx, withdrawalID)
	if err != nil {
		return notFound(err)
	}
	ok, err := s.withdrawals.SetStatusTx(ctx, tx, withdrawalID, models.WithdrawalStatusPending, models.WithdrawalStatusApproved)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: withdrawal is %s", ErrInvalidTransition, w.Status)
	}
	if s.insertNotifyTx != nil {
		ref := w.ID
		if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
			UserID: w.UserID, Type: models.NotifyWithdrawalApproved,
			Title: "Withdrawal approved", Message: "Your withdrawal was approved and will be processed.",
			ReferenceID: &ref,
		}); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Reject declines a pending withdrawal and refunds the reserved amount.
func (s *WithdrawalService) Reject(ctx context.Context, withdrawalID uuid.UUID, reason string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := s.withdrawals.GetByIDForUpdate(ctx, tx, withdrawalID)
	if err != nil {
		return notFound(err)
	}
	ok, err := s.withdrawals.SetStatusTx(ctx, tx, withdrawalID, models.WithdrawalStatusPending, models.WithdrawalStatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: withdrawal is %s", ErrInvalidTransition, w.Status)
	}
	if err := s.wallets.RefundTx(ctx, tx, w.WalletID, w.AmountCents); err != nil {
		return err
	}
	if s.insertNotifyTx != nil {
		ref := w.ID
		msg := "Your withdrawal was rejected and the funds were returned to your wallet."
		if reason != "" {
			msg = fmt.Sprintf("Your withdrawal was rejected: %s. The funds were returned to your wallet.", reason)
		}
		if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
			UserID: w.UserID, Type: models.NotifyWithdrawalRejected,
			Title: "Withdrawal rejected", Message: msg, ReferenceID: &ref,
		}); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// MarkProcessed records that the approved payout was transferred externally.
func (s *WithdrawalService) MarkProcessed(ctx context.Context, withdrawalID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := s.withdrawals.GetByIDForUpdate(ctx, tx, withdrawalID)
	if err != nil {
		return notFound(err)
	}
	ok, err := s.withdrawals.SetStatusTx(ctx, tx, withdrawalID, models.WithdrawalStatusApproved, models.WithdrawalStatusProcessed)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: withdrawal is %s", ErrInvalidTransition, w.Status)
	}
	return tx.Commit(ctx)
}
