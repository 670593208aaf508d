package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/notify"
)

// ProposalStore is the proposal repository surface the service needs.
type ProposalStore interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error)
	ListIncoming(ctx context.Context, clientID uuid.UUID) ([]*models.Proposal, error)
	HasPending(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) (bool, error)
	RejectPendingTx(ctx context.Context, tx pgx.Tx, projectID, exceptID uuid.UUID) ([]uuid.UUID, error)
}

// ProposalProjectStore is the project surface for proposal operations.
type ProposalProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, toStatus string) error
}

// ProposalContractStore creates the contract backing an accepted proposal.
type ProposalContractStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, c *models.Contract) error
}

// CommissionSource reads the platform commission rate inside the acceptance
// transaction so the fee and the rate update cannot interleave.
type CommissionSource interface {
	CommissionBpsTx(ctx context.Context, tx pgx.Tx) (int, error)
}

// ProposalService handles bidding and the acceptance transaction that turns
// a bid into a contract.
type ProposalService struct {
	db             TxBeginner
	proposals      ProposalStore
	projects       ProposalProjectStore
	contracts      ProposalContractStore
	settings       CommissionSource
	insertNotifyTx notify.InsertTxFunc
	notifyFn       notify.InsertFunc
	log            *slog.Logger
}

func NewProposalService(db TxBeginner, proposals ProposalStore, projects ProposalProjectStore,
	contracts ProposalContractStore, settings CommissionSource,
	insertNotifyTx notify.InsertTxFunc, notifyFn notify.InsertFunc, log *slog.Logger) *ProposalService {
	if log == nil {
		log = slog.Default()
	}
	return &ProposalService{
		db: db, proposals: proposals, projects: projects, contracts: contracts,
		settings: settings, insertNotifyTx: insertNotifyTx, notifyFn: notifyFn, log: log,
	}
}

// Create submits a bid on an open project. One pending proposal per
// freelancer per project; the partial unique index backs this check against
// concurrent submissions.
func (s *ProposalService) Create(ctx context.Context, freelancerID, projectID uuid.UUID, priceCents int64, deliveryDays int, message string) (*models.Proposal, error) {
	if priceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if deliveryDays <= 0 {
		return nil, fmt.Errorf("%w: delivery days must be positive", ErrValidation)
	}
	if len(message) > 2000 {
		return nil, fmt.Errorf("%w: message exceeds 2000 characters", ErrValidation)
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project is not open for proposals", ErrValidation)
	}
	if project.ClientID == freelancerID {
		return nil, fmt.Errorf("%w: cannot bid on your own project", ErrValidation)
	}
	pending, err := s.proposals.HasPending(ctx, projectID, freelancerID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: you already have a pending proposal on this project", ErrConflict)
	}

	p := &models.Proposal{
		ID:           uuid.New(),
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		PriceCents:   priceCents,
		DeliveryDays: deliveryDays,
		Message:      message,
		Status:       models.ProposalStatusPending,
	}
	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, err
	}
	s.enqueue(ctx, project.ClientID, models.NotifyNewProposal, "New proposal",
		fmt.Sprintf("A freelancer submitted a proposal on %q.", project.Title), p.ID)
	return p, nil
}

// Accept turns a pending proposal into a contract. The proposal flip, contract
// creation, project transition, rejection of competing proposals and
// notification enqueue all happen in one transaction: the row locks on
// proposal and project serialize concurrent accepts, and the status CAS makes
// the second one fail with ErrConflict.
func (s *ProposalService) Accept(ctx context.Context, clientID, proposalID uuid.UUID) (*models.Contract, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := s.proposals.GetByIDForUpdate(ctx, tx, proposalID)
	if err != nil {
		return nil, notFound(err)
	}
	project, err := s.projects.GetByIDForUpdate(ctx, tx, p.ProjectID)
	if err != nil {
		return nil, notFound(err)
	}
	if project.ClientID != clientID {
		return nil, ErrUnauthorized
	}
	if p.Status != models.ProposalStatusPending {
		return nil, fmt.Errorf("%w: proposal is %s", ErrInvalidTransition, p.Status)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project is %s", ErrInvalidTransition, project.Status)
	}

	ok, err := s.proposals.SetStatusTx(ctx, tx, proposalID, models.ProposalStatusPending, models.ProposalStatusAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proposal was decided concurrently", ErrConflict)
	}

	rateBps, err := s.settings.CommissionBpsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	start := time.Now().UTC()
	deadline := start.AddDate(0, 0, p.DeliveryDays)
	proposalRef := p.ID
	contract := &models.Contract{
		ID:               uuid.New(),
		ProjectID:        project.ID,
		ProposalID:       &proposalRef,
		ClientID:         project.ClientID,
		FreelancerID:     p.FreelancerID,
		AmountCents:      p.PriceCents,
		PlatformFeeCents: models.PlatformFeeCents(p.PriceCents, rateBps),
		Status:           models.ContractStatusInProgress,
		StartDate:        start,
		Deadline:         &deadline,
	}
	if err := s.contracts.CreateTx(ctx, tx, contract); err != nil {
		return nil, err
	}
	if err := s.projects.SetStatusTx(ctx, tx, project.ID, models.ProjectStatusInProgress); err != nil {
		return nil, err
	}

	rejected, err := s.proposals.RejectPendingTx(ctx, tx, project.ID, proposalID)
	if err != nil {
		return nil, err
	}

	if s.insertNotifyTx != nil {
		contractRef := contract.ID
		if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
			UserID: p.FreelancerID, Type: models.NotifyProposalAccepted,
			Title: "Proposal accepted", Message: fmt.Sprintf("Your proposal on %q was accepted.", project.Title),
			ReferenceID: &contractRef,
		}); err != nil {
			return nil, err
		}
		if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
			UserID: project.ClientID, Type: models.NotifyContractCreated,
			Title: "Contract started", Message: fmt.Sprintf("A contract was created for %q.", project.Title),
			ReferenceID: &contractRef,
		}); err != nil {
			return nil, err
		}
		for _, freelancerID := range rejected {
			loserRef := project.ID
			if err := s.insertNotifyTx(ctx, tx, notify.DeliverJobArgs{
				UserID: freelancerID, Type: models.NotifyProposalRejected,
				Title: "Proposal not selected", Message: fmt.Sprintf("Another proposal was chosen for %q.", project.Title),
				ReferenceID: &loserRef,
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return contract, nil
}

// Reject declines a pending proposal. Client only.
func (s *ProposalService) Reject(ctx context.Context, clientID, proposalID uuid.UUID) error {
	p, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return notFound(err)
	}
	project, err := s.projects.GetByID(ctx, p.ProjectID)
	if err != nil {
		return notFound(err)
	}
	if project.ClientID != clientID {
		return ErrUnauthorized
	}
	ok, err := s.proposals.SetStatus(ctx, proposalID, models.ProposalStatusPending, models.ProposalStatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: proposal is not pending", ErrInvalidTransition)
	}
	s.enqueue(ctx, p.FreelancerID, models.NotifyProposalRejected, "Proposal rejected",
		fmt.Sprintf("Your proposal on %q was rejected.", project.Title), p.ID)
	return nil
}

// Withdraw retracts the freelancer's own pending proposal.
func (s *ProposalService) Withdraw(ctx context.Context, freelancerID, proposalID uuid.UUID) error {
	p, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return notFound(err)
	}
	if p.FreelancerID != freelancerID {
		return ErrUnauthorized
	}
	ok, err := s.proposals.SetStatus(ctx, proposalID, models.ProposalStatusPending, models.ProposalStatusWithdrawn)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: proposal is not pending", ErrInvalidTransition)
	}
	return nil
}

// ListByProject returns a project's proposals. Client only; freelancers see
// their own through ListMine.
func (s *ProposalService) ListByProject(ctx context.Context, callerID, projectID uuid.UUID) ([]*models.Proposal, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err)
	}
	if project.ClientID != callerID {
		return nil, ErrUnauthorized
	}
	return s.proposals.ListByProject(ctx, projectID)
}

func (s *ProposalService) ListMine(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	return s.proposals.ListByFreelancer(ctx, freelancerID)
}

// ListIncoming returns every proposal across the client's projects.
func (s *ProposalService) ListIncoming(ctx context.Context, clientID uuid.UUID) ([]*models.Proposal, error) {
	return s.proposals.ListIncoming(ctx, clientID)
}

func (s *ProposalService) enqueue(ctx context.Context, userID uuid.UUID, typ, title, msg string, ref uuid.UUID) {
	if s.notifyFn == nil {
		return
	}
	refID := ref
	err := s.notifyFn(ctx, notify.DeliverJobArgs{UserID: userID, Type: typ, Title: title, Message: msg, ReferenceID: &refID})
	if err != nil {
		s.log.Error("enqueue notification", "type", typ, "user_id", userID, "error", err)
	}
}
