package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract status enum. completed and cancelled are terminal; completed is
// reachable only from approved (settlement) and cancelled only through
// dispute resolution.
const (
	ContractStatusInProgress    = "in_progress"
	ContractStatusSubmitted     = "submitted"
	ContractStatusNeedsRevision = "needs_revision"
	ContractStatusApproved      = "approved"
	ContractStatusUnderReview   = "under_review"
	ContractStatusCompleted     = "completed"
	ContractStatusCancelled     = "cancelled"
)

// ContractTerminal reports whether no further transitions are allowed.
func ContractTerminal(status string) bool {
	return status == ContractStatusCompleted || status == ContractStatusCancelled
}

// Contract binds a client and a freelancer to an accepted proposal.
// AmountCents is fixed at acceptance from the proposal price;
// PlatformFeeCents is derived from the configured commission rate.
type Contract struct {
	ID               uuid.UUID  `json:"id"`
	ProjectID        uuid.UUID  `json:"project_id"`
	ProposalID       *uuid.UUID `json:"proposal_id,omitempty"`
	ClientID         uuid.UUID  `json:"client_id"`
	FreelancerID     uuid.UUID  `json:"freelancer_id"`
	AmountCents      int64      `json:"amount_cents"`
	PlatformFeeCents int64      `json:"platform_fee_cents"`
	Status           string     `json:"status"`
	RevisionCount    int        `json:"revision_count"`
	StartDate        time.Time  `json:"start_date"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NetEarningsCents is the amount the freelancer receives at settlement.
func (c *Contract) NetEarningsCents() int64 {
	return c.AmountCents - c.PlatformFeeCents
}
