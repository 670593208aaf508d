package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
)

// flakyDisputes fails the dispute flip a set number of times before
// delegating, standing in for a connection that drops mid-resolve.
type flakyDisputes struct {
	*mockDisputes
	failuresLeft int
}

func (f *flakyDisputes) ResolveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, resolution, notes string) (bool, error) {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return false, errors.New("connection reset by peer")
	}
	return f.mockDisputes.ResolveTx(ctx, tx, id, resolution, notes)
}

// staleContracts reports an out-of-date status from GetByID while the
// backing store holds the real one, forcing the freeze CAS to miss.
type staleContracts struct {
	*mockContracts
	staleStatus string
}

func (s *staleContracts) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c, err := s.mockContracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = s.staleStatus
	return c, nil
}

func newDisputeFixture(contractStatus string) (*DisputeService, *mockDisputes, *mockContracts, *mockWallets, *models.Contract) {
	c, _, _ := newContractFixture(contractStatus)
	contracts := newMockContracts(c)
	project := &models.Project{ID: c.ProjectID, ClientID: c.ClientID, Status: models.ProjectStatusInProgress}
	projects := newMockProjects(project)
	wallets := newMockWallets()
	rec := &notifyRecorder{}
	settlement := NewSettlementService(mockPool{}, contracts, projects, &mockPayments{}, wallets, rec.insertTx, nil)
	disputes := newMockDisputes()
	svc := NewDisputeService(mockPool{}, disputes, contracts, settlement, rec.insertTx, rec.insert, nil)
	return svc, disputes, contracts, wallets, c
}

func TestOpenDisputeFreezesContract(t *testing.T) {
	svc, _, contracts, _, c := newDisputeFixture(models.ContractStatusSubmitted)

	d, err := svc.Open(context.Background(), c.FreelancerID, c.ID, "client unresponsive")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Status != models.DisputeStatusOpen {
		t.Errorf("expected open, got %s", d.Status)
	}
	if contracts.status(c.ID) != models.ContractStatusUnderReview {
		t.Errorf("contract should be frozen under review")
	}
}

func TestOpenDisputeRequiresParty(t *testing.T) {
	svc, _, _, _, c := newDisputeFixture(models.ContractStatusInProgress)

	if _, err := svc.Open(context.Background(), uuid.New(), c.ID, "reason"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Open(context.Background(), c.ClientID, c.ID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty reason, got %v", err)
	}
}

func TestOpenDisputeTerminalContract(t *testing.T) {
	svc, _, _, _, c := newDisputeFixture(models.ContractStatusCompleted)

	if _, err := svc.Open(context.Background(), c.ClientID, c.ID, "too late"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestResolveRefundCancelsContract(t *testing.T) {
	svc, _, contracts, wallets, c := newDisputeFixture(models.ContractStatusSubmitted)
	d, err := svc.Open(context.Background(), c.ClientID, c.ID, "work never delivered")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	resolved, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRefund, "evidence supports client")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolved || resolved.Resolution != models.DisputeResolutionRefund {
		t.Errorf("unexpected resolution state: %+v", resolved)
	}
	if contracts.status(c.ID) != models.ContractStatusCancelled {
		t.Errorf("refund should cancel the contract")
	}
	if got := wallets.balance(c.FreelancerID); got != 0 {
		t.Errorf("refund must not pay the freelancer, got %d", got)
	}
}

func TestResolveReleasePaysFreelancer(t *testing.T) {
	svc, _, contracts, wallets, c := newDisputeFixture(models.ContractStatusSubmitted)
	d, err := svc.Open(context.Background(), c.FreelancerID, c.ID, "client refuses to approve finished work")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRelease, ""); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if contracts.status(c.ID) != models.ContractStatusCompleted {
		t.Errorf("release should complete the contract")
	}
	if got := wallets.balance(c.FreelancerID); got != 45000 {
		t.Errorf("freelancer should be paid net of fee, got %d", got)
	}
}

func TestResolveNoneUnfreezes(t *testing.T) {
	svc, _, contracts, _, c := newDisputeFixture(models.ContractStatusInProgress)
	d, err := svc.Open(context.Background(), c.ClientID, c.ID, "misunderstanding")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionNone, "talked it out"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if contracts.status(c.ID) != models.ContractStatusInProgress {
		t.Errorf("none resolution should unfreeze the contract, got %s", contracts.status(c.ID))
	}
}

func TestResolveTwiceConflicts(t *testing.T) {
	svc, _, _, wallets, c := newDisputeFixture(models.ContractStatusSubmitted)
	d, err := svc.Open(context.Background(), c.FreelancerID, c.ID, "payment overdue")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRelease, ""); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRelease, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double resolve, got %v", err)
	}
	if got := wallets.balance(c.FreelancerID); got != 45000 {
		t.Errorf("double payout detected, balance %d", got)
	}
}

func TestResolveRetryAfterPartialFailure(t *testing.T) {
	c, _, _ := newContractFixture(models.ContractStatusSubmitted)
	contracts := newMockContracts(c)
	projects := newMockProjects(&models.Project{ID: c.ProjectID, ClientID: c.ClientID, Status: models.ProjectStatusInProgress})
	wallets := newMockWallets()
	rec := &notifyRecorder{}
	settlement := NewSettlementService(mockPool{}, contracts, projects, &mockPayments{}, wallets, rec.insertTx, nil)
	disputes := &flakyDisputes{mockDisputes: newMockDisputes(), failuresLeft: 1}
	svc := NewDisputeService(mockPool{}, disputes, contracts, settlement, rec.insertTx, rec.insert, nil)

	d, err := svc.Open(context.Background(), c.FreelancerID, c.ID, "client refuses to approve finished work")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Funds move, then the dispute flip dies.
	if _, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRelease, ""); err == nil {
		t.Fatal("expected the first resolve to fail")
	}
	stuck, err := disputes.GetByID(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stuck.Status != models.DisputeStatusOpen {
		t.Fatalf("dispute should still be open after the failed flip, got %s", stuck.Status)
	}

	resolved, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRelease, "second attempt")
	if err != nil {
		t.Fatalf("retry after failed resolve: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolved || resolved.Resolution != models.DisputeResolutionRelease {
		t.Errorf("unexpected resolution state: %+v", resolved)
	}
	if contracts.status(c.ID) != models.ContractStatusCompleted {
		t.Errorf("release should complete the contract")
	}
	if got := wallets.balance(c.FreelancerID); got != 45000 {
		t.Errorf("freelancer must be paid exactly once, got %d", got)
	}
}

func TestResolveRefundRetryAfterPartialFailure(t *testing.T) {
	c, _, _ := newContractFixture(models.ContractStatusSubmitted)
	contracts := newMockContracts(c)
	projects := newMockProjects(&models.Project{ID: c.ProjectID, ClientID: c.ClientID, Status: models.ProjectStatusInProgress})
	wallets := newMockWallets()
	rec := &notifyRecorder{}
	settlement := NewSettlementService(mockPool{}, contracts, projects, &mockPayments{}, wallets, rec.insertTx, nil)
	disputes := &flakyDisputes{mockDisputes: newMockDisputes(), failuresLeft: 1}
	svc := NewDisputeService(mockPool{}, disputes, contracts, settlement, rec.insertTx, rec.insert, nil)

	d, err := svc.Open(context.Background(), c.ClientID, c.ID, "work never delivered")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRefund, ""); err == nil {
		t.Fatal("expected the first resolve to fail")
	}
	resolved, err := svc.Resolve(context.Background(), d.ID, models.DisputeResolutionRefund, "evidence supports client")
	if err != nil {
		t.Fatalf("retry after failed resolve: %v", err)
	}
	if resolved.Resolution != models.DisputeResolutionRefund {
		t.Errorf("unexpected resolution state: %+v", resolved)
	}
	if contracts.status(c.ID) != models.ContractStatusCancelled {
		t.Errorf("refund should cancel the contract")
	}
	if got := wallets.balance(c.FreelancerID); got != 0 {
		t.Errorf("refund must not pay the freelancer, got %d", got)
	}
}

func TestOpenDisputeConcurrentTransition(t *testing.T) {
	c, _, _ := newContractFixture(models.ContractStatusSubmitted)
	contracts := &staleContracts{mockContracts: newMockContracts(c), staleStatus: models.ContractStatusInProgress}
	disputes := newMockDisputes()
	svc := NewDisputeService(mockPool{}, disputes, contracts, nil, nil, nil, nil)

	if _, err := svc.Open(context.Background(), c.ClientID, c.ID, "missed deadline"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when the freeze loses the race, got %v", err)
	}
	if contracts.status(c.ID) != models.ContractStatusSubmitted {
		t.Errorf("contract status must be untouched, got %s", contracts.status(c.ID))
	}
}

func TestResolveUnknownResolution(t *testing.T) {
	svc, _, _, _, c := newDisputeFixture(models.ContractStatusSubmitted)
	d, _ := svc.Open(context.Background(), c.ClientID, c.ID, "reason")

	if _, err := svc.Resolve(context.Background(), d.ID, "split", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
