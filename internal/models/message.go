package models

import (
	"time"

	"github.com/google/uuid"
)

// Message belongs to exactly one contract and is append-only.
// AttachmentKey is an S3 object key; download URLs are presigned on read.
type Message struct {
	ID            uuid.UUID `json:"id"`
	ContractID    uuid.UUID `json:"contract_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	Content       string    `json:"content"`
	AttachmentKey string    `json:"attachment_key,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}
