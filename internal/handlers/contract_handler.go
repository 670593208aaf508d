package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/metrics"
	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/services"
)

// PaymentLookup lists settlements recorded against a contract.
type PaymentLookup interface {
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Payment, error)
}

// ContractHandler serves /api/v1/contracts.
type ContractHandler struct {
	Contracts  *services.ContractService
	Settlement *services.SettlementService
	Disputes   *services.DisputeService
	Payments   PaymentLookup
	Logger     *slog.Logger
}

type transitionRequest struct {
	Note string `json:"note"`
}

// List handles GET /api/v1/contracts — both sides of the caller's contracts.
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	contracts, err := h.Contracts.ListByUser(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if contracts == nil {
		contracts = []*models.Contract{}
	}
	writeJSON(w, http.StatusOK, contracts)
}

// Get handles GET /api/v1/contracts/{id}.
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	c, err := h.Contracts.Get(r.Context(), ident.UserID, id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListPayments handles GET /api/v1/contracts/{id}/payments.
func (h *ContractHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	// Get enforces that the caller is a party to the contract.
	if _, err := h.Contracts.Get(r.Context(), ident.UserID, id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	payments, err := h.Payments.ListByContract(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

// Submit handles POST /api/v1/contracts/{id}/submit.
func (h *ContractHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Contracts.SubmitWork)
}

// RequestRevision handles POST /api/v1/contracts/{id}/request-revision.
func (h *ContractHandler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Contracts.RequestRevision)
}

func (h *ContractHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, callerID, contractID uuid.UUID, note string) (*models.Contract, error)) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	var req transitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	c, err := fn(r.Context(), ident.UserID, id, req.Note)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Approve handles POST /api/v1/contracts/{id}/approve.
func (h *ContractHandler) Approve(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	c, err := h.Contracts.ApproveWork(r.Context(), ident.UserID, id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Release handles POST /api/v1/contracts/{id}/release — escrow settlement.
func (h *ContractHandler) Release(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	payment, err := h.Settlement.ReleasePayment(r.Context(), ident.UserID, id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.RecordPaymentReleased(payment.AmountCents)
	writeJSON(w, http.StatusOK, payment)
}

// OpenDispute handles POST /api/v1/contracts/{id}/disputes.
func (h *ContractHandler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	d, err := h.Disputes.Open(r.Context(), ident.UserID, id, req.Reason)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// ListDisputes handles GET /api/v1/contracts/{id}/disputes.
func (h *ContractHandler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	disputes, err := h.Disputes.ListByContract(r.Context(), ident.UserID, id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if disputes == nil {
		disputes = []*models.Dispute{}
	}
	writeJSON(w, http.StatusOK, disputes)
}
