package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/metrics"
	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/services"
)

// ProposalHandler serves /api/v1/proposals.
type ProposalHandler struct {
	Svc    *services.ProposalService
	Logger *slog.Logger
}

type createProposalRequest struct {
	ProjectID    string `json:"project_id"`
	PriceCents   int64  `json:"price_cents"`
	DeliveryDays int    `json:"delivery_days"`
	Message      string `json:"message"`
}

// Create handles POST /api/v1/proposals. Freelancer roles only.
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	if !ident.IsFreelancer() {
		writeError(w, http.StatusForbidden, "freelancer role required")
		return
	}
	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}
	p, err := h.Svc.Create(r.Context(), ident.UserID, projectID, req.PriceCents, req.DeliveryDays, req.Message)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.ProposalsCreated.Inc()
	writeJSON(w, http.StatusCreated, p)
}

// ListMine handles GET /api/v1/proposals/mine for freelancers.
func (h *ProposalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	proposals, err := h.Svc.ListMine(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if proposals == nil {
		proposals = []*models.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

// ListIncoming handles GET /api/v1/proposals/incoming — every proposal
// across the caller's projects.
func (h *ProposalHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	proposals, err := h.Svc.ListIncoming(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if proposals == nil {
		proposals = []*models.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

// ListByProject handles GET /api/v1/projects/{id}/proposals for the owning client.
func (h *ProposalHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	proposals, err := h.Svc.ListByProject(r.Context(), ident.UserID, projectID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if proposals == nil {
		proposals = []*models.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

// Accept handles POST /api/v1/proposals/{id}/accept. The response is the
// created contract.
func (h *ProposalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	proposalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	contract, err := h.Svc.Accept(r.Context(), ident.UserID, proposalID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.ProposalsAccepted.Inc()
	writeJSON(w, http.StatusCreated, contract)
}

// Reject handles POST /api/v1/proposals/{id}/reject.
func (h *ProposalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	proposalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	if err := h.Svc.Reject(r.Context(), ident.UserID, proposalID); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Withdraw handles POST /api/v1/proposals/{id}/withdraw.
func (h *ProposalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	proposalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	if err := h.Svc.Withdraw(r.Context(), ident.UserID, proposalID); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
