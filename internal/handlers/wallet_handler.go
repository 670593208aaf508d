package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/services"
)

// WalletRepoForHandler is the wallet surface the handler needs.
type WalletRepoForHandler interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
}

// WalletHandler serves /api/v1/wallet and /api/v1/withdrawals.
type WalletHandler struct {
	Wallets     WalletRepoForHandler
	Withdrawals *services.WithdrawalService
	Logger      *slog.Logger
}

// Get handles GET /api/v1/wallet. Freelancer roles only; clients have no
// earnings ledger.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	if !ident.IsFreelancer() {
		writeError(w, http.StatusForbidden, "freelancer role required")
		return
	}
	wallet, err := h.Wallets.GetOrCreate(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("get wallet", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

type withdrawalRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// RequestWithdrawal handles POST /api/v1/withdrawals.
func (h *WalletHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	if !ident.IsFreelancer() {
		writeError(w, http.StatusForbidden, "freelancer role required")
		return
	}
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	wd, err := h.Withdrawals.Request(r.Context(), ident.UserID, req.AmountCents)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, wd)
}

// ListWithdrawals handles GET /api/v1/withdrawals.
func (h *WalletHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	list, err := h.Withdrawals.ListMine(r.Context(), ident.UserID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if list == nil {
		list = []*models.Withdrawal{}
	}
	writeJSON(w, http.StatusOK, list)
}
