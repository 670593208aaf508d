package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/notify"
)

// SettlementContractStore is the contract surface settlement needs.
type SettlementContractStore interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Contract, error)
	CompleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	CancelTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	ForceApproveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// SettlementProjectStore closes out the project when its contract settles.
type SettlementProjectStore interface {
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, toStatus string) error
}

// SettlementPaymentStore records the settlement.
type SettlementPaymentStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error
}

// SettlementWalletStore credits the freelancer's wallet.
type SettlementWalletStore interface {
	CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amountCents int64) error
}

// SettlementService releases escrowed funds for approved contracts. The
// whole settlement is one transaction serialized per contract by the row
// lock; the approved-to-completed CAS guarantees a contract settles at most
// once no matter how many release requests race.
type SettlementService struct {
	db             TxBeginner
	contracts      SettlementContractStore
	projects       SettlementProjectStore
	payments       SettlementPaymentStore
	wallets        SettlementWalletStore
	insertNotifyTx notify.InsertTxFunc
	log            *slog.Logger
}

func NewSettlementService(db TxBeginner, contracts SettlementContractStore, projects SettlementProjectStore,
	payments SettlementPaymentStore, wallets SettlementWalletStore, insertNotifyTx notify.InsertTxFunc, log *slog.Logger) *SettlementService {
	if log == nil {
		log = slog.Default()
	}
	return &SettlementService{
		db: db, contracts: contracts, projects: projects,
		payments: payments, wallets: wallets, insertNotifyTx: insertNotifyTx, log: log,
	}
}

// ReleasePayment settles an approved contract: it flips the contract to
// completed, records the payment, marks the project completed and credits
// the freelancer's wallet with the amount net of the platform fee fixed at
// acceptance.
func (s *SettlementService) ReleasePayment(ctx context.Context, clientID, contractID uuid.UUID) (*models.Payment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := s.contracts.GetByIDForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.ClientID != clientID {
		return nil, ErrUnauthorized
	}
	if c.Status == models.ContractStatusCompleted {
		return nil, fmt.Errorf("%w: payment already released", ErrConflict)
	}
	if c.Status != models.ContractStatusApproved {
		return nil, fmt.Errorf("%w: cannot release payment from %s", ErrInvalidTransition, c.Status)
	}

	ok, err := s.contracts.CompleteTx(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contract settled concurrently", ErrConflict)
	}

	payment := &models.Payment{
		ID:               uuid.New(),
		ContractID:       c.ID,
		PayerID:          c.ClientID,
		AmountCents:      c.AmountCents,
		PlatformFeeCents: c.PlatformFeeCents,
		Status:           models.PaymentStatusReleased,
	}
	if err := s.payments.CreateTx(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := s.projects.SetStatusTx(ctx, tx, c.ProjectID, models.ProjectStatusCompleted); err != nil {
		return nil, err
	}
	if err := s.wallets.CreditTx(ctx, tx, c.FreelancerID, c.NetEarningsCents()); err != nil {
		return nil, err
	}
	if s.insertNotifyTx != nil {
		ref := c.ID
		if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
			UserID: c.FreelancerID, Type: models.NotifyPaymentReleased,
			Title:   "Payment released",
			Message: fmt.Sprintf("%d.%02d was credited to your wallet.", c.NetEarningsCents()/100, c.NetEarningsCents()%100),
			ReferenceID: &ref,
		}); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payment, nil
}

// CancelContract voids a non-terminal contract without paying out. Used by
// dispute resolution with a refund outcome: escrow never left the client, so
// cancelling releases the obligation. The project reopens for new proposals.
func (s *SettlementService) CancelContract(ctx context.Context, contractID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	c, err := s.contracts.GetByIDForUpdate(ctx, tx, contractID)
	if err != nil {
		return notFound(err)
	}
	if models.ContractTerminal(c.Status) {
		return fmt.Errorf("%w: contract is %s", ErrInvalidTransition, c.Status)
	}
	ok, err := s.contracts.CancelTx(ctx, tx, contractID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: contract changed concurrently", ErrConflict)
	}
	if err := s.projects.SetStatusTx(ctx, tx, c.ProjectID, models.ProjectStatusCancelled); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SettleForDispute releases payment to the freelancer regardless of the
// approval step. Admin resolution path; shares the transaction shape of
// ReleasePayment but accepts any non-terminal status.
func (s *SettlementService) SettleForDispute(ctx context.Context, contractID uuid.UUID) (*models.Payment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := s.contracts.GetByIDForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if models.ContractTerminal(c.Status) {
		return nil, fmt.Errorf("%w: contract is %s", ErrInvalidTransition, c.Status)
	}

	// Walk through approved so CompleteTx's CAS still guards double settlement.
	if err := s.contracts.ForceApproveTx(ctx, tx, contractID); err != nil {
		return nil, err
	}
	ok, err := s.contracts.CompleteTx(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contract settled concurrently", ErrConflict)
	}

	payment := &models.Payment{
		ID:               uuid.New(),
		ContractID:       c.ID,
		PayerID:          c.ClientID,
		AmountCents:      c.AmountCents,
		PlatformFeeCents: c.PlatformFeeCents,
		Status:           models.PaymentStatusReleased,
	}
	if err := s.payments.CreateTx(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := s.projects.SetStatusTx(ctx, tx, c.ProjectID, models.ProjectStatusCompleted); err != nil {
		return nil, err
	}
	if err := s.wallets.CreditTx(ctx, tx, c.FreelancerID, c.NetEarningsCents()); err != nil {
		return nil, err
	}
	if s.insertNotifyTx != nil {
		ref := c.ID
		if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
			UserID: c.FreelancerID, Type: models.NotifyPaymentReleased,
			Title: "Payment released", Message: "A dispute was resolved in your favour and payment was released.",
			ReferenceID: &ref,
		}); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payment, nil
}
