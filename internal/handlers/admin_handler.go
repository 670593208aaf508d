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

// AdminSettingsRepo reads and updates the platform commission.
type AdminSettingsRepo interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	UpdateCommission(ctx context.Context, bps int) error
}

// AdminUserRepo suspends and reinstates accounts.
type AdminUserRepo interface {
	SetSuspended(ctx context.Context, userID uuid.UUID, suspended bool) error
}

// AdminProfileRepo controls moderation flags.
type AdminProfileRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SetModeration(ctx context.Context, userID uuid.UUID, verified, featured bool) error
}

// AdminStatsRepo aggregates the dashboard snapshot.
type AdminStatsRepo interface {
	Snapshot(ctx context.Context) (*models.PlatformStats, error)
}

// AdminHandler serves /api/v1/admin. The router mounts it behind the admin
// role guard.
type AdminHandler struct {
	Withdrawals *services.WithdrawalService
	Disputes    *services.DisputeService
	Settings    AdminSettingsRepo
	Users       AdminUserRepo
	Profiles    AdminProfileRepo
	Stats       AdminStatsRepo
	Logger      *slog.Logger
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Snapshot(r.Context())
	if err != nil {
		h.Logger.Error("stats snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListWithdrawals handles GET /api/v1/admin/withdrawals?status=pending.
func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.WithdrawalStatusPending
	}
	list, err := h.Withdrawals.ListByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if list == nil {
		list = []*models.Withdrawal{}
	}
	writeJSON(w, http.StatusOK, list)
}

func withdrawalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid withdrawal id")
		return uuid.Nil, false
	}
	return id, true
}

// ApproveWithdrawal handles POST /api/v1/admin/withdrawals/{id}/approve.
func (h *AdminHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := withdrawalID(w, r)
	if !ok {
		return
	}
	if err := h.Withdrawals.Approve(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.WithdrawalDecisions.WithLabelValues("approved").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// RejectWithdrawal handles POST /api/v1/admin/withdrawals/{id}/reject.
func (h *AdminHandler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := withdrawalID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	if err := h.Withdrawals.Reject(r.Context(), id, req.Reason); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.WithdrawalDecisions.WithLabelValues("rejected").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// ProcessWithdrawal handles POST /api/v1/admin/withdrawals/{id}/process.
func (h *AdminHandler) ProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := withdrawalID(w, r)
	if !ok {
		return
	}
	if err := h.Withdrawals.MarkProcessed(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.WithdrawalDecisions.WithLabelValues("processed").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// ListOpenDisputes handles GET /api/v1/admin/disputes.
func (h *AdminHandler) ListOpenDisputes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Disputes.ListOpen(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if list == nil {
		list = []*models.Dispute{}
	}
	writeJSON(w, http.StatusOK, list)
}

type resolveDisputeRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes"`
}

// ResolveDispute handles POST /api/v1/admin/disputes/{id}/resolve.
func (h *AdminHandler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dispute id")
		return
	}
	var req resolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	d, err := h.Disputes.Resolve(r.Context(), id, req.Resolution, req.Notes)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	metrics.DisputesResolved.WithLabelValues(req.Resolution).Inc()
	writeJSON(w, http.StatusOK, d)
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.Get(r.Context())
	if err != nil {
		h.Logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type updateCommissionRequest struct {
	CommissionBps int `json:"commission_bps"`
}

// UpdateCommission handles PATCH /api/v1/admin/settings. Existing contracts
// keep the fee fixed at their acceptance; only future acceptances see the
// new rate.
func (h *AdminHandler) UpdateCommission(w http.ResponseWriter, r *http.Request) {
	var req updateCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CommissionBps < 0 || req.CommissionBps > 10000 {
		writeError(w, http.StatusBadRequest, "commission_bps must be between 0 and 10000")
		return
	}
	if err := h.Settings.UpdateCommission(r.Context(), req.CommissionBps); err != nil {
		h.Logger.Error("update commission", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s, _ := h.Settings.Get(r.Context())
	writeJSON(w, http.StatusOK, s)
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

// SuspendUser handles POST /api/v1/admin/users/{id}/suspend.
func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req suspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.Users.SetSuspended(r.Context(), userID, req.Suspended); err != nil {
		h.Logger.Error("suspend user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moderateProfileRequest struct {
	Verified bool `json:"verified"`
	Featured bool `json:"featured"`
}

// ModerateProfile handles POST /api/v1/admin/profiles/{id}/moderate.
func (h *AdminHandler) ModerateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req moderateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.Profiles.SetModeration(r.Context(), userID, req.Verified, req.Featured); err != nil {
		h.Logger.Error("moderate profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	p, err := h.Profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
