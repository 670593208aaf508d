package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/notify"
)

// MaxRevisions caps how many times a client can send work back before the
// next rejection must go through approval or a dispute.
const MaxRevisions = 3

// ContractStore is the contract repository surface the lifecycle needs.
type ContractStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error)
	SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error)
	MarkNeedsRevision(ctx context.Context, id uuid.UUID) (bool, error)
	MarkApproved(ctx context.Context, id uuid.UUID, approvedAt time.Time) (bool, error)
}

// ContractMessageStore persists optional notes attached to transitions.
type ContractMessageStore interface {
	Create(ctx context.Context, m *models.Message) error
}

// ContractService drives the work lifecycle between acceptance and
// settlement. Every transition is a compare-and-swap on the current status,
// so two racing requests cannot both win.
type ContractService struct {
	contracts ContractStore
	messages  ContractMessageStore
	notifyFn  notify.InsertFunc
	log       *slog.Logger
}

func NewContractService(contracts ContractStore, messages ContractMessageStore, notifyFn notify.InsertFunc, log *slog.Logger) *ContractService {
	if log == nil {
		log = slog.Default()
	}
	return &ContractService{contracts: contracts, messages: messages, notifyFn: notifyFn, log: log}
}

func (s *ContractService) Get(ctx context.Context, callerID, contractID uuid.UUID) (*models.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.ClientID != callerID && c.FreelancerID != callerID {
		return nil, ErrUnauthorized
	}
	return c, nil
}

func (s *ContractService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	return s.contracts.ListByUser(ctx, userID)
}

// SubmitWork moves in_progress or needs_revision to submitted. Freelancer only.
func (s *ContractService) SubmitWork(ctx context.Context, freelancerID, contractID uuid.UUID, note string) (*models.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.FreelancerID != freelancerID {
		return nil, ErrUnauthorized
	}
	to, err := NextContractStatus(c.Status, ActorFreelancer, ActionSubmit)
	if err != nil {
		return nil, err
	}
	ok, err := s.contracts.SetStatus(ctx, contractID, c.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contract status changed concurrently", ErrConflict)
	}
	s.attachNote(ctx, c, freelancerID, note)
	s.enqueue(ctx, c.ClientID, models.NotifyWorkSubmitted, "Work submitted",
		"The freelancer submitted work for your review.", c.ID)
	return s.contracts.GetByID(ctx, contractID)
}

// RequestRevision sends submitted work back to the freelancer. Client only,
// capped at MaxRevisions.
func (s *ContractService) RequestRevision(ctx context.Context, clientID, contractID uuid.UUID, note string) (*models.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.ClientID != clientID {
		return nil, ErrUnauthorized
	}
	if _, err := NextContractStatus(c.Status, ActorClient, ActionRequestRevision); err != nil {
		return nil, err
	}
	if c.RevisionCount >= MaxRevisions {
		return nil, fmt.Errorf("%w: revision limit reached", ErrValidation)
	}
	ok, err := s.contracts.MarkNeedsRevision(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contract status changed concurrently", ErrConflict)
	}
	s.attachNote(ctx, c, clientID, note)
	s.enqueue(ctx, c.FreelancerID, models.NotifyRevisionRequested, "Revision requested",
		"The client requested changes to your submission.", c.ID)
	return s.contracts.GetByID(ctx, contractID)
}

// ApproveWork accepts the submission. Approval stamps approved_at and makes
// the contract eligible for payment release. Client only.
func (s *ContractService) ApproveWork(ctx context.Context, clientID, contractID uuid.UUID) (*models.Contract, error) {
	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, notFound(err)
	}
	if c.ClientID != clientID {
		return nil, ErrUnauthorized
	}
	if _, err := NextContractStatus(c.Status, ActorClient, ActionApprove); err != nil {
		return nil, err
	}
	ok, err := s.contracts.MarkApproved(ctx, contractID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contract status changed concurrently", ErrConflict)
	}
	s.enqueue(ctx, c.FreelancerID, models.NotifyWorkApproved, "Work approved",
		"Your submission was approved. Payment will be released shortly.", c.ID)
	return s.contracts.GetByID(ctx, contractID)
}

func (s *ContractService) attachNote(ctx context.Context, c *models.Contract, senderID uuid.UUID, note string) {
	if note == "" || s.messages == nil {
		return
	}
	m := &models.Message{ID: uuid.New(), ContractID: c.ID, SenderID: senderID, Content: note}
	if err := s.messages.Create(ctx, m); err != nil {
		s.log.Error("attach transition note", "contract_id", c.ID, "error", err)
	}
}

func (s *ContractService) enqueue(ctx context.Context, userID uuid.UUID, typ, title, msg string, ref uuid.UUID) {
	if s.notifyFn == nil {
		return
	}
	refID := ref
	err := s.notifyFn(ctx, notify.DeliverJobArgs{
		UserID: userID, Type: typ, Title: title, Message: msg, ReferenceID: &refID,
	})
	if err != nil {
		s.log.Error("enqueue notification", "type", typ, "user_id", userID, "error", err)
	}
}
