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
	"github.com/admarket/backend/internal/storage"
)

// MessageRepoForHandler is the message repository surface the handler needs.
type MessageRepoForHandler interface {
	Create(ctx context.Context, m *models.Message) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Message, error)
	MarkRead(ctx context.Context, contractID, readerID uuid.UUID) error
}

// ContractLookup resolves the contract for the party check.
type ContractLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

// MessageHandler serves the per-contract message thread. Attachments live in
// S3; the handler only stores object keys and presigns URLs on demand.
type MessageHandler struct {
	Repo      MessageRepoForHandler
	Contracts ContractLookup
	Storage   *storage.Client
	Notify    notify.InsertFunc
	Logger    *slog.Logger
}

func (h *MessageHandler) party(w http.ResponseWriter, r *http.Request, callerID uuid.UUID) (*models.Contract, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return nil, false
	}
	c, err := h.Contracts.GetByID(r.Context(), id)
	if err != nil {
		if err == pgx.ErrNoRows {
			writeError(w, http.StatusNotFound, "not found")
			return nil, false
		}
		h.Logger.Error("load contract", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if c.ClientID != callerID && c.FreelancerID != callerID {
		writeError(w, http.StatusForbidden, "not a contract party")
		return nil, false
	}
	return c, true
}

type sendMessageRequest struct {
	Content       string `json:"content"`
	AttachmentKey string `json:"attachment_key"`
}

// Send handles POST /api/v1/contracts/{id}/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	c, ok := h.party(w, r, ident.UserID)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Content == "" && req.AttachmentKey == "" {
		writeError(w, http.StatusBadRequest, "content or attachment_key is required")
		return
	}
	m := &models.Message{
		ID:            uuid.New(),
		ContractID:    c.ID,
		SenderID:      ident.UserID,
		Content:       req.Content,
		AttachmentKey: req.AttachmentKey,
	}
	if err := h.Repo.Create(r.Context(), m); err != nil {
		h.Logger.Error("create message", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.Notify != nil {
		other := c.FreelancerID
		if ident.UserID == c.FreelancerID {
			other = c.ClientID
		}
		ref := c.ID
		err := h.Notify(r.Context(), notify.DeliverJobArgs{
			UserID: other, Type: models.NotifyMessageReceived,
			Title: "New message", Message: "You received a new message on a contract.",
			ReferenceID: &ref,
		})
		if err != nil {
			h.Logger.Error("enqueue message notification", "contract_id", c.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, m)
}

type messageResponse struct {
	*models.Message
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// List handles GET /api/v1/contracts/{id}/messages. Reading the thread marks
// the counterpart's messages read.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	c, ok := h.party(w, r, ident.UserID)
	if !ok {
		return
	}
	messages, err := h.Repo.ListByContract(r.Context(), c.ID)
	if err != nil {
		h.Logger.Error("list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.Repo.MarkRead(r.Context(), c.ID, ident.UserID); err != nil {
		h.Logger.Error("mark messages read", "contract_id", c.ID, "error", err)
	}
	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		resp := messageResponse{Message: m}
		if m.AttachmentKey != "" && h.Storage != nil {
			url, err := h.Storage.PresignDownload(m.AttachmentKey)
			if err != nil {
				h.Logger.Error("presign attachment", "key", m.AttachmentKey, "error", err)
			} else {
				resp.AttachmentURL = url
			}
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// AttachmentUploadURL handles POST /api/v1/contracts/{id}/attachments,
// returning a presigned PUT URL and the key to reference in a later message.
func (h *MessageHandler) AttachmentUploadURL(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity(w, r)
	if !ok {
		return
	}
	c, ok := h.party(w, r, ident.UserID)
	if !ok {
		return
	}
	if h.Storage == nil {
		writeError(w, http.StatusServiceUnavailable, "attachments are not enabled")
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
		req.ContentType = "application/octet-stream"
	}
	key := storage.AttachmentKey(c.ID, req.Filename)
	url, err := h.Storage.PresignUpload(key, req.ContentType)
	if err != nil {
		h.Logger.Error("presign upload", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"upload_url": url, "key": key})
}
