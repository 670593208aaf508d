package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/notify"
)

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- TxBeginner mock ---

type mockPool struct{}

func (mockPool) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

// --- contract store mock ---

type mockContracts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Contract
}

func newMockContracts(cs ...*models.Contract) *mockContracts {
	m := &mockContracts{byID: make(map[uuid.UUID]*models.Contract)}
	for _, c := range cs {
		cp := *c
		m.byID[c.ID] = &cp
	}
	return m
}

func (m *mockContracts) get(id uuid.UUID) (*models.Contract, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *mockContracts) GetByID(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockContracts) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockContracts) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Contract
	for _, c := range m.byID {
		if c.ClientID == userID || c.FreelancerID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockContracts) SetStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *mockContracts) MarkNeedsRevision(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != models.ContractStatusSubmitted {
		return false, nil
	}
	c.Status = models.ContractStatusNeedsRevision
	c.RevisionCount++
	return true, nil
}

func (m *mockContracts) MarkApproved(_ context.Context, id uuid.UUID, approvedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != models.ContractStatusSubmitted {
		return false, nil
	}
	c.Status = models.ContractStatusApproved
	c.ApprovedAt = &approvedAt
	return true, nil
}

func (m *mockContracts) CompleteTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != models.ContractStatusApproved {
		return false, nil
	}
	c.Status = models.ContractStatusCompleted
	return true, nil
}

func (m *mockContracts) CancelTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || models.ContractTerminal(c.Status) {
		return false, nil
	}
	c.Status = models.ContractStatusCancelled
	return true, nil
}

func (m *mockContracts) ForceApproveTx(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	c.Status = models.ContractStatusApproved
	c.ApprovedAt = &now
	return nil
}

func (m *mockContracts) CreateTx(_ context.Context, _ pgx.Tx, c *models.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockContracts) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

// --- project store mock ---

type mockProjects struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Project
}

func newMockProjects(ps ...*models.Project) *mockProjects {
	m := &mockProjects{byID: make(map[uuid.UUID]*models.Project)}
	for _, p := range ps {
		cp := *p
		m.byID[p.ID] = &cp
	}
	return m
}

func (m *mockProjects) get(id uuid.UUID) (*models.Project, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockProjects) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockProjects) SetStatusTx(_ context.Context, _ pgx.Tx, id uuid.UUID, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = to
	return nil
}

func (m *mockProjects) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

// --- proposal store mock ---

type mockProposals struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Proposal
}

func newMockProposals(ps ...*models.Proposal) *mockProposals {
	m := &mockProposals{byID: make(map[uuid.UUID]*models.Proposal)}
	for _, p := range ps {
		cp := *p
		m.byID[p.ID] = &cp
	}
	return m
}

func (m *mockProposals) Create(_ context.Context, p *models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockProposals) get(id uuid.UUID) (*models.Proposal, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockProposals) GetByID(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockProposals) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockProposals) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Proposal
	for _, p := range m.byID {
		if p.ProjectID == projectID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockProposals) ListByFreelancer(_ context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Proposal
	for _, p := range m.byID {
		if p.FreelancerID == freelancerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockProposals) ListIncoming(_ context.Context, _ uuid.UUID) ([]*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Proposal
	for _, p := range m.byID {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockProposals) HasPending(_ context.Context, projectID, freelancerID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.ProjectID == projectID && p.FreelancerID == freelancerID && p.Status == models.ProposalStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProposals) SetStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (m *mockProposals) SetStatusTx(ctx context.Context, _ pgx.Tx, id uuid.UUID, from, to string) (bool, error) {
	return m.SetStatus(ctx, id, from, to)
}

func (m *mockProposals) RejectPendingTx(_ context.Context, _ pgx.Tx, projectID, exceptID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uuid.UUID
	for _, p := range m.byID {
		if p.ProjectID == projectID && p.ID != exceptID && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusRejected
			out = append(out, p.FreelancerID)
		}
	}
	return out, nil
}

func (m *mockProposals) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

// --- payment store mock ---

type mockPayments struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func (m *mockPayments) CreateTx(_ context.Context, _ pgx.Tx, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments = append(m.payments, &cp)
	return nil
}

// --- wallet store mock ---

type mockWallets struct {
	mu       sync.Mutex
	byUser   map[uuid.UUID]*models.Wallet
	byWallet map[uuid.UUID]*models.Wallet
}

func newMockWallets(ws ...*models.Wallet) *mockWallets {
	m := &mockWallets{byUser: make(map[uuid.UUID]*models.Wallet), byWallet: make(map[uuid.UUID]*models.Wallet)}
	for _, w := range ws {
		cp := *w
		m.byUser[w.UserID] = &cp
		m.byWallet[w.ID] = &cp
	}
	return m
}

func (m *mockWallets) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *w
	return &cp, nil
}

func (m *mockWallets) GetByUserIDForUpdate(ctx context.Context, _ pgx.Tx, userID uuid.UUID) (*models.Wallet, error) {
	return m.GetByUserID(ctx, userID)
}

func (m *mockWallets) CreditTx(_ context.Context, _ pgx.Tx, userID uuid.UUID, amountCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byUser[userID]
	if !ok {
		w = &models.Wallet{ID: uuid.New(), UserID: userID}
		m.byUser[userID] = w
		m.byWallet[w.ID] = w
	}
	w.BalanceCents += amountCents
	w.TotalEarnedCents += amountCents
	return nil
}

func (m *mockWallets) ReserveTx(_ context.Context, _ pgx.Tx, walletID uuid.UUID, amountCents int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byWallet[walletID]
	if !ok || w.BalanceCents < amountCents {
		return false, nil
	}
	w.BalanceCents -= amountCents
	return true, nil
}

func (m *mockWallets) RefundTx(_ context.Context, _ pgx.Tx, walletID uuid.UUID, amountCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byWallet[walletID]
	if !ok {
		return pgx.ErrNoRows
	}
	w.BalanceCents += amountCents
	return nil
}

func (m *mockWallets) balance(userID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byUser[userID]
	if !ok {
		return 0
	}
	return w.BalanceCents
}

// --- withdrawal store mock ---

type mockWithdrawals struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Withdrawal
}

func newMockWithdrawals(ws ...*models.Withdrawal) *mockWithdrawals {
	m := &mockWithdrawals{byID: make(map[uuid.UUID]*models.Withdrawal)}
	for _, w := range ws {
		cp := *w
		m.byID[w.ID] = &cp
	}
	return m
}

func (m *mockWithdrawals) CreateTx(_ context.Context, _ pgx.Tx, w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.byID[w.ID] = &cp
	return nil
}

func (m *mockWithdrawals) GetByID(_ context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *w
	return &cp, nil
}

func (m *mockWithdrawals) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.Withdrawal, error) {
	return m.GetByID(ctx, id)
}

func (m *mockWithdrawals) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range m.byID {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockWithdrawals) ListByStatus(_ context.Context, status string) ([]*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Withdrawal
	for _, w := range m.byID {
		if w.Status == status {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockWithdrawals) SetStatusTx(_ context.Context, _ pgx.Tx, id uuid.UUID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	return true, nil
}

func (m *mockWithdrawals) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

// --- dispute store mock ---

type mockDisputes struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Dispute
}

func newMockDisputes(ds ...*models.Dispute) *mockDisputes {
	m := &mockDisputes{byID: make(map[uuid.UUID]*models.Dispute)}
	for _, d := range ds {
		cp := *d
		m.byID[d.ID] = &cp
	}
	return m
}

func (m *mockDisputes) Create(_ context.Context, d *models.Dispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.byID[d.ID] = &cp
	return nil
}

func (m *mockDisputes) GetByID(_ context.Context, id uuid.UUID) (*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (m *mockDisputes) ListByStatus(_ context.Context, status string) ([]*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Dispute
	for _, d := range m.byID {
		if d.Status == status {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockDisputes) ListByContract(_ context.Context, contractID uuid.UUID) ([]*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Dispute
	for _, d := range m.byID {
		if d.ContractID == contractID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockDisputes) ResolveTx(_ context.Context, _ pgx.Tx, id uuid.UUID, resolution, notes string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok || d.Status == models.DisputeStatusResolved {
		return false, nil
	}
	d.Status = models.DisputeStatusResolved
	d.Resolution = resolution
	d.AdminNotes = notes
	return true, nil
}

// --- message store mock ---

type mockMessages struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (m *mockMessages) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

// --- commission source mock ---

type mockSettings struct {
	bps int
}

func (m mockSettings) CommissionBpsTx(context.Context, pgx.Tx) (int, error) { return m.bps, nil }

// --- notification recorder ---

type notifyRecorder struct {
	mu   sync.Mutex
	jobs []notify.DeliverJobArgs
}

func (r *notifyRecorder) insert(_ context.Context, args notify.DeliverJobArgs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, args)
	return nil
}

func (r *notifyRecorder) insertTx(_ context.Context, _ pgx.Tx, args notify.DeliverJobArgs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, args)
	return nil
}

func (r *notifyRecorder) byType(typ string) []notify.DeliverJobArgs {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.DeliverJobArgs
	for _, j := range r.jobs {
		if j.Type == typ {
			out = append(out, j)
		}
	}
	return out
}
