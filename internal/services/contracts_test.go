package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/models"
)

func newContractFixture(status string) (*models.Contract, uuid.UUID, uuid.UUID) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	c := &models.Contract{
		ID:               uuid.New(),
		ProjectID:        uuid.New(),
		ClientID:         clientID,
		FreelancerID:     freelancerID,
		AmountCents:      50000,
		PlatformFeeCents: 5000,
		Status:           status,
	}
	return c, clientID, freelancerID
}

func TestSubmitWork(t *testing.T) {
	c, _, freelancerID := newContractFixture(models.ContractStatusInProgress)
	contracts := newMockContracts(c)
	rec := &notifyRecorder{}
	svc := NewContractService(contracts, &mockMessages{}, rec.insert, nil)

	got, err := svc.SubmitWork(context.Background(), freelancerID, c.ID, "first draft attached")
	if err != nil {
		t.Fatalf("SubmitWork: %v", err)
	}
	if got.Status != models.ContractStatusSubmitted {
		t.Errorf("expected submitted, got %s", got.Status)
	}
	if len(rec.byType(models.NotifyWorkSubmitted)) != 1 {
		t.Errorf("expected a work_submitted notification for the client")
	}
}

func TestSubmitWorkFromNeedsRevision(t *testing.T) {
	c, _, freelancerID := newContractFixture(models.ContractStatusNeedsRevision)
	contracts := newMockContracts(c)
	svc := NewContractService(contracts, &mockMessages{}, nil, nil)

	if _, err := svc.SubmitWork(context.Background(), freelancerID, c.ID, ""); err != nil {
		t.Fatalf("SubmitWork from needs_revision: %v", err)
	}
}

func TestSubmitWorkWrongActor(t *testing.T) {
	c, clientID, _ := newContractFixture(models.ContractStatusInProgress)
	svc := NewContractService(newMockContracts(c), &mockMessages{}, nil, nil)

	if _, err := svc.SubmitWork(context.Background(), clientID, c.ID, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSubmitWorkInvalidState(t *testing.T) {
	c, _, freelancerID := newContractFixture(models.ContractStatusSubmitted)
	svc := NewContractService(newMockContracts(c), &mockMessages{}, nil, nil)

	if _, err := svc.SubmitWork(context.Background(), freelancerID, c.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestRevisionIncrementsCount(t *testing.T) {
	c, clientID, _ := newContractFixture(models.ContractStatusSubmitted)
	contracts := newMockContracts(c)
	msgs := &mockMessages{}
	svc := NewContractService(contracts, msgs, nil, nil)

	got, err := svc.RequestRevision(context.Background(), clientID, c.ID, "logo is too small")
	if err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}
	if got.Status != models.ContractStatusNeedsRevision {
		t.Errorf("expected needs_revision, got %s", got.Status)
	}
	if got.RevisionCount != 1 {
		t.Errorf("expected revision count 1, got %d", got.RevisionCount)
	}
	if len(msgs.messages) != 1 || msgs.messages[0].Content != "logo is too small" {
		t.Errorf("expected the note to be attached as a message")
	}
}

func TestRequestRevisionCapped(t *testing.T) {
	c, clientID, _ := newContractFixture(models.ContractStatusSubmitted)
	c.RevisionCount = MaxRevisions
	svc := NewContractService(newMockContracts(c), &mockMessages{}, nil, nil)

	if _, err := svc.RequestRevision(context.Background(), clientID, c.ID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation at the revision cap, got %v", err)
	}
}

func TestApproveWork(t *testing.T) {
	c, clientID, _ := newContractFixture(models.ContractStatusSubmitted)
	contracts := newMockContracts(c)
	rec := &notifyRecorder{}
	svc := NewContractService(contracts, &mockMessages{}, rec.insert, nil)

	got, err := svc.ApproveWork(context.Background(), clientID, c.ID)
	if err != nil {
		t.Fatalf("ApproveWork: %v", err)
	}
	if got.Status != models.ContractStatusApproved {
		t.Errorf("expected approved, got %s", got.Status)
	}
	if got.ApprovedAt == nil {
		t.Error("expected approved_at to be stamped")
	}
	if len(rec.byType(models.NotifyWorkApproved)) != 1 {
		t.Errorf("expected a work_approved notification for the freelancer")
	}
}

func TestApproveWorkOnlyFromSubmitted(t *testing.T) {
	for _, status := range []string{
		models.ContractStatusInProgress,
		models.ContractStatusNeedsRevision,
		models.ContractStatusApproved,
		models.ContractStatusCompleted,
		models.ContractStatusCancelled,
	} {
		c, clientID, _ := newContractFixture(status)
		svc := NewContractService(newMockContracts(c), &mockMessages{}, nil, nil)
		if _, err := svc.ApproveWork(context.Background(), clientID, c.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("status %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestGetDeniesStrangers(t *testing.T) {
	c, clientID, freelancerID := newContractFixture(models.ContractStatusInProgress)
	svc := NewContractService(newMockContracts(c), &mockMessages{}, nil, nil)

	for _, id := range []uuid.UUID{clientID, freelancerID} {
		if _, err := svc.Get(context.Background(), id, c.ID); err != nil {
			t.Errorf("party %s should see the contract: %v", id, err)
		}
	}
	if _, err := svc.Get(context.Background(), uuid.New(), c.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for a stranger, got %v", err)
	}
}
