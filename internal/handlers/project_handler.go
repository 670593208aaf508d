package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/admarket/backend/internal/models"
)

// ProjectRepoForHandler is the subset of the project repository the handler needs.
type ProjectRepoForHandler interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListOpen(ctx context.Context, skill string) ([]*models.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Project, error)
	SetStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) (bool, error)
}

// ProjectHandler serves /api/v1/projects.
type ProjectHandler struct {
	Repo   ProjectRepoForHandler
	Logger *slog.Logger
}

type createProjectRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ServiceType    string     `json:"service_type"`
	RequiredSkills []string   `json:"required_skills"`
	BudgetCents    int64      `json:"budget_cents"`
	Deadline       *time.Time `json:"deadline"`
	Draft          bool       `json:"draft"`
}

// Create handles POST /api/v1/projects. Client role only.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	if !ident.HasRole(models.RoleClient) {
		writeError(w, http.StatusForbidden, "client role required")
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !models.ValidServiceType(req.ServiceType) {
		writeError(w, http.StatusBadRequest, "unknown service_type")
		return
	}
	if req.BudgetCents <= 0 {
		writeError(w, http.StatusBadRequest, "budget_cents must be > 0")
		return
	}
	status := models.ProjectStatusOpen
	if req.Draft {
		status = models.ProjectStatusDraft
	}
	p := &models.Project{
		ID:             uuid.New(),
		ClientID:       ident.UserID,
		Title:          req.Title,
		Description:    req.Description,
		ServiceType:    req.ServiceType,
		RequiredSkills: req.RequiredSkills,
		BudgetCents:    req.BudgetCents,
		Deadline:       req.Deadline,
		Status:         status,
	}
	if err := h.Repo.Create(r.Context(), p); err != nil {
		h.Logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListOpen handles GET /api/v1/projects?skill=... — the freelancer-facing feed.
func (h *ProjectHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Repo.ListOpen(r.Context(), r.URL.Query().Get("skill"))
	if err != nil {
		h.Logger.Error("list open projects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// ListMine handles GET /api/v1/projects/mine for clients.
func (h *ProjectHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	projects, err := h.Repo.ListByClient(r.Context(), ident.UserID)
	if err != nil {
		h.Logger.Error("list client projects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/v1/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.Logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Publish handles POST /api/v1/projects/{id}/publish, moving a draft to open.
func (h *ProjectHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if p.ClientID != ident.UserID {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}
	okSet, err := h.Repo.SetStatus(r.Context(), id, models.ProjectStatusDraft, models.ProjectStatusOpen)
	if err != nil {
		h.Logger.Error("publish project", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !okSet {
		writeError(w, http.StatusConflict, "project is not a draft")
		return
	}
	p, _ = h.Repo.GetByID(r.Context(), id)
	writeJSON(w, http.StatusOK, p)
}

// Cancel handles POST /api/v1/projects/{id}/cancel for open or draft projects
// with no contract yet. Contracted projects are cancelled through dispute
// resolution.
func (h *ProjectHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if p.ClientID != ident.UserID {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}
	if p.Status != models.ProjectStatusOpen && p.Status != models.ProjectStatusDraft {
		writeError(w, http.StatusConflict, "only open or draft projects can be cancelled directly")
		return
	}
	okSet, err := h.Repo.SetStatus(r.Context(), id, p.Status, models.ProjectStatusCancelled)
	if err != nil {
		h.Logger.Error("cancel project", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !okSet {
		writeError(w, http.StatusConflict, "project status changed concurrently")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
