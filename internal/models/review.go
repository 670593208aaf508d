package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is left by one contract participant about the other after the
// contract completes. One review per (contract, reviewer).
type Review struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	TargetID   uuid.UUID `json:"target_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
