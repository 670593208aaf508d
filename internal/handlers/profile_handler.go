package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
	"github.com/admarket/backend/internal/storage"
)

// ProfileRepoForHandler is the profile surface the handler needs.
type ProfileRepoForHandler interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	ListFeatured(ctx context.Context) ([]*models.Profile, error)
}

// ProfileHandler serves /api/v1/profiles.
type ProfileHandler struct {
	Repo    ProfileRepoForHandler
	Storage *storage.Client
	Logger  *slog.Logger
}

// GetMine handles GET /api/v1/profiles/me.
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	p, err := h.Repo.GetByUserID(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Get handles GET /api/v1/profiles/{id} — public view by user id.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	p, err := h.Repo.GetByUserID(r.Context(), userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.Logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateProfileRequest struct {
	FullName  string   `json:"full_name"`
	Bio       string   `json:"bio"`
	AvatarURL string   `json:"avatar_url"`
	Skills    []string `json:"skills"`
	Platforms []string `json:"platforms"`
}

// Update handles PATCH /api/v1/profiles/me. Verification and featuring are
// admin-only and ignored here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := h.Repo.GetByUserID(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if req.FullName != "" {
		p.FullName = req.FullName
	}
	p.Bio = req.Bio
	if req.AvatarURL != "" {
		p.AvatarURL = req.AvatarURL
	}
	if req.Skills != nil {
		p.Skills = req.Skills
	}
	if req.Platforms != nil {
		p.Platforms = req.Platforms
	}
	if err := h.Repo.Update(r.Context(), p); err != nil {
		h.Logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListFeatured handles GET /api/v1/profiles/featured — public.
func (h *ProfileHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Repo.ListFeatured(r.Context())
	if err != nil {
		h.Logger.Error("list featured profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// AvatarUploadURL handles POST /api/v1/profiles/me/avatar-upload, returning
// a presigned PUT URL for the avatar image.
func (h *ProfileHandler) AvatarUploadURL(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	if h.Storage == nil {
		writeError(w, http.StatusServiceUnavailable, "uploads are not enabled")
		return
	}
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/png"
	}
	key := storage.AvatarKey(ident.UserID, req.Filename)
	url, err := h.Storage.PresignUpload(key, req.ContentType)
	if err != nil {
		h.Logger.Error("presign avatar upload", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"upload_url": url, "key": key})
}
