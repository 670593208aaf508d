package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/notify"
)

// ReviewRepoForHandler is the review surface the handler needs.
type ReviewRepoForHandler interface {
	Create(ctx context.Context, rev *models.Review) error
	Exists(ctx context.Context, contractID, reviewerID uuid.UUID) (bool, error)
	ListByTarget(ctx context.Context, targetID uuid.UUID) ([]*models.Review, error)
}

// ReviewHandler serves reviews. Reviews open up once a contract completes
// and each party may leave exactly one about the other.
type ReviewHandler struct {
	Repo      ReviewRepoForHandler
	Contracts ContractLookup
	Notify    notify.InsertFunc
	Logger    *slog.Logger
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create handles POST /api/v1/contracts/{id}/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	contractID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	c, err := h.Contracts.GetByID(r.Context(), contractID)
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.Logger.Error("load contract", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if c.ClientID != ident.UserID && c.FreelancerID != ident.UserID {
		writeError(w, http.StatusForbidden, "not a contract party")
		return
	}
	if c.Status != models.ContractStatusCompleted {
		writeError(w, http.StatusConflict, "reviews open after the contract completes")
		return
	}
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	exists, err := h.Repo.Exists(r.Context(), contractID, ident.UserID)
	if err != nil {
		h.Logger.Error("check review", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "you already reviewed this contract")
		return
	}
	target := c.FreelancerID
	if ident.UserID == c.FreelancerID {
		target = c.ClientID
	}
	rev := &models.Review{
		ID:         uuid.New(),
		ContractID: contractID,
		ReviewerID: ident.UserID,
		TargetID:   target,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := h.Repo.Create(r.Context(), rev); err != nil {
		h.Logger.Error("create review", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.Notify != nil {
		ref := rev.ID
		err := h.Notify(r.Context(), notify.DeliverJobArgs{
			UserID: target, Type: models.NotifyReviewReceived,
			Title: "New review", Message: "You received a review on a completed contract.",
			ReferenceID: &ref,
		})
		if err != nil {
			h.Logger.Error("enqueue review notification", "review_id", rev.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, rev)
}

// ListByUser handles GET /api/v1/users/{id}/reviews — public reputation.
func (h *ReviewHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	reviews, err := h.Repo.ListByTarget(r.Context(), targetID)
	if err != nil {
		h.Logger.Error("list reviews", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}
