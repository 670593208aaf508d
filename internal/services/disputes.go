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

// DisputeStore is the dispute repository surface the service needs.
type DisputeStore interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Dispute, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Dispute, error)
	ResolveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, resolution, notes string) (bool, error)
}

// DisputeContractStore reads and freezes the disputed contract.
type DisputeContractStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error)
}

// DisputeService lets contract parties escalate and admins resolve. Fund
// movement on resolution goes through the settlement service so its
// idempotency guards apply.
type DisputeService struct {
	db             TxBeginner
	disputes       DisputeStore
	contracts      DisputeContractStore
	settlement     *SettlementService
	insertNotifyTx notify.InsertTxFunc
	notifyFn       notify.InsertFunc
	log            *slog.Logger
}

func NewDisputeService(db TxBeginner, disputes DisputeStore, contracts DisputeContractStore,
	settlement *SettlementService, insertNotifyTx notify.InsertTxFunc, notifyFn notify.InsertFunc, log *slog.Logger) *DisputeService {
	if log == nil {
		log = slog.Default()
	}
	return &DisputeService{
		db: db, disputes: disputes, contracts: contracts, settlement: settlement,
		insertNotifyTx: insertNotifyTx, notifyFn: notifyFn, log: log,
	}
}

// Open files a dispute on a live contract and freezes it under review.
func (s *DisputeService) Open(ctx context.Context, callerID, contractID uuid.UUID, reason string) (*models.Dispute, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.ClientID != callerID && c.FreelancerID != callerID {
		return nil, ErrUnauthorized
	}
	if models.ContractTerminal(c.Status) {
		return nil, fmt.Errorf("%w: contract is %s", ErrInvalidTransition, c.Status)
	}

	d := &models.Dispute{
		ID:         uuid.New(),
		ContractID: contractID,
		ReportedBy: callerID,
		Reason:     reason,
		Status:     models.DisputeStatusOpen,
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, err
	}
	if c.Status != models.ContractStatusUnderReview {
		ok, err := s.contracts.SetStatus(ctx, contractID, c.Status, models.ContractStatusUnderReview)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: contract changed concurrently", ErrConflict)
		}
	}

	other := c.ClientID
	if callerID == c.ClientID {
		other = c.FreelancerID
	}
	s.enqueue(ctx, other, models.NotifyDisputeOpened, "Dispute opened",
		"A dispute was opened on one of your contracts.", d.ID)
	return d, nil
}

// Resolve applies the admin's decision. refund cancels the contract so the
// client keeps their money, release pays the freelancer out, none leaves
// funds untouched. The dispute flip is a one-shot CAS, so a second resolve
// returns ErrConflict; retrying a resolve that failed after the funds moved
// is safe and completes the flip without paying twice.
func (s *DisputeService) Resolve(ctx context.Context, disputeID uuid.UUID, resolution, notes string) (*models.Dispute, error) {
	if !models.ValidDisputeResolution(resolution) {
		return nil, fmt.Errorf("%w: unknown resolution %q", ErrValidation, resolution)
	}
	d, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, notFound(err)
	}
	if d.Status == models.DisputeStatusResolved {
		return nil, fmt.Errorf("%w: dispute already resolved", ErrConflict)
	}
	c, err := s.contracts.GetByID(ctx, d.ContractID)
	if err != nil {
		return nil, notFound(err)
	}

	// An earlier resolve may have moved the funds and then died before the
	// dispute flip. The contract is then already in the terminal state the
	// resolution asks for; skip the fund movement so the retry can finish.
	switch resolution {
	case models.DisputeResolutionRefund:
		if c.Status != models.ContractStatusCancelled {
			if err := s.settlement.CancelContract(ctx, d.ContractID); err != nil {
				return nil, err
			}
		}
	case models.DisputeResolutionRelease:
		if c.Status != models.ContractStatusCompleted {
			if _, err := s.settlement.SettleForDispute(ctx, d.ContractID); err != nil {
				return nil, err
			}
		}
	case models.DisputeResolutionNone:
		// Unfreeze the contract so work can continue.
		if c.Status == models.ContractStatusUnderReview {
			ok, err := s.contracts.SetStatus(ctx, d.ContractID, models.ContractStatusUnderReview, models.ContractStatusInProgress)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: contract changed concurrently", ErrConflict)
			}
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ok, err := s.disputes.ResolveTx(ctx, tx, disputeID, resolution, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: dispute resolved concurrently", ErrConflict)
	}
	if s.insertNotifyTx != nil {
		ref := d.ID
		for _, userID := range []uuid.UUID{c.ClientID, c.FreelancerID} {
			if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
				UserID: userID, Type: models.NotifyDisputeResolved,
				Title: "Dispute resolved", Message: fmt.Sprintf("The dispute was resolved: %s.", resolution),
				ReferenceID: &ref,
			}); err != nil {
				return nil, err
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.disputes.GetByID(ctx, disputeID)
}

func (s *DisputeService) ListOpen(ctx context.Context) ([]*models.Dispute, error) {
	return s.disputes.ListByStatus(ctx, models.DisputeStatusOpen)
}

func (s *DisputeService) ListByContract(ctx context.Context, callerID, contractID uuid.UUID) ([]*models.Dispute, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.ClientID != callerID && c.FreelancerID != callerID {
		return nil, ErrUnauthorized
	}
	return s.disputes.ListByContract(ctx, contractID)
}

func (s *DisputeService) enqueue(ctx context.Context, userID uuid.UUID, typ, title, msg string, ref uuid.UUID) {
	if s.notifyFn == nil {
		return
	}
	refID := ref
	err := s.notifyFn(ctx, notify.DeliverJobArgs{UserID: userID, Type: typ, Title: title, Message: msg, ReferenceID: &refID})
	if err != nil {
		s.log.Error("enqueue notification", "type", typ, "user_id", userID, "error", err)
	}
}
