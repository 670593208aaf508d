package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal status enum. accepted, rejected and withdrawn are terminal.
const (
	ProposalStatusPending   = "pending"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
	ProposalStatusWithdrawn = "withdrawn"
)

// Proposal is a freelancer's bid on an open project. At most one pending
// proposal per (freelancer, project); an accepted proposal backs exactly
// one contract.
type Proposal struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	PriceCents   int64     `json:"price_cents"`
	DeliveryDays int       `json:"delivery_days"`
	Message      string    `json:"message,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
