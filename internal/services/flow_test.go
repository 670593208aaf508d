package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/models"
)

// Walks the whole hiring flow over one set of stores: a client posts a
// 50000 budget project, accepts a 45000 proposal at the default 10%
// commission, the freelancer delivers, and release credits 40500 net.
func TestHiringFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()
	freelancerID := uuid.New()
	project := &models.Project{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       "Product walkthrough video",
		ServiceType: models.ServiceTypeCampaign,
		BudgetCents: 50000,
		Status:      models.ProjectStatusOpen,
	}
	projects := newMockProjects(project)
	proposals := newMockProposals()
	contracts := newMockContracts()
	wallets := newMockWallets()
	payments := &mockPayments{}
	rec := &notifyRecorder{}

	proposalSvc := newProposalService(projects, proposals, contracts, rec)
	contractSvc := NewContractService(contracts, &mockMessages{}, rec.insert, nil)
	settlementSvc := NewSettlementService(mockPool{}, contracts, projects, payments, wallets, rec.insertTx, nil)

	p, err := proposalSvc.Create(ctx, freelancerID, project.ID, 45000, 7, "Storyboard within two days")
	if err != nil {
		t.Fatalf("Create proposal: %v", err)
	}

	c, err := proposalSvc.Accept(ctx, clientID, p.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if c.AmountCents != 45000 {
		t.Errorf("contract amount = %d, want 45000", c.AmountCents)
	}
	if c.PlatformFeeCents != 4500 {
		t.Errorf("platform fee = %d, want 4500", c.PlatformFeeCents)
	}
	if c.Status != models.ContractStatusInProgress {
		t.Errorf("contract status = %s, want in_progress", c.Status)
	}
	if c.Deadline == nil {
		t.Error("acceptance should set a deadline from the delivery days")
	}
	if projects.status(project.ID) != models.ProjectStatusInProgress {
		t.Errorf("project should be in_progress after acceptance")
	}

	if _, err := contractSvc.SubmitWork(ctx, freelancerID, c.ID, "final cut uploaded"); err != nil {
		t.Fatalf("SubmitWork: %v", err)
	}
	if _, err := contractSvc.ApproveWork(ctx, clientID, c.ID); err != nil {
		t.Fatalf("ApproveWork: %v", err)
	}

	payment, err := settlementSvc.ReleasePayment(ctx, clientID, c.ID)
	if err != nil {
		t.Fatalf("ReleasePayment: %v", err)
	}
	if payment.AmountCents != 45000 || payment.PlatformFeeCents != 4500 {
		t.Errorf("payment %d/%d, want 45000/4500", payment.AmountCents, payment.PlatformFeeCents)
	}
	if contracts.status(c.ID) != models.ContractStatusCompleted {
		t.Errorf("contract should be completed after release")
	}
	if projects.status(project.ID) != models.ProjectStatusCompleted {
		t.Errorf("project should be completed after release")
	}
	if got := wallets.balance(freelancerID); got != 40500 {
		t.Errorf("freelancer balance = %d, want 40500", got)
	}

	// The freelancer cannot withdraw more than they earned; the exact
	// balance goes through.
	withdrawalSvc := NewWithdrawalService(mockPool{}, newMockWithdrawals(), wallets, rec.insertTx, nil)
	if _, err := withdrawalSvc.Request(ctx, freelancerID, 45000); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance overdrawing, got %v", err)
	}
	if got := wallets.balance(freelancerID); got != 40500 {
		t.Errorf("failed withdrawal must not touch the balance, got %d", got)
	}
	w, err := withdrawalSvc.Request(ctx, freelancerID, 40500)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if w.Status != models.WithdrawalStatusPending {
		t.Errorf("withdrawal status = %s, want pending", w.Status)
	}
	if got := wallets.balance(freelancerID); got != 0 {
		t.Errorf("balance should be fully reserved, got %d", got)
	}
}
