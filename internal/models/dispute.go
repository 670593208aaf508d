package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute status enum.
const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
)

// Admin resolutions. refund cancels the contract, release settles it in the
// freelancer's favour, none records the outcome without touching funds.
const (
	DisputeResolutionRefund  = "refund"
	DisputeResolutionRelease = "release"
	DisputeResolutionNone    = "none"
)

// ValidDisputeResolution reports whether r is an accepted resolution.
func ValidDisputeResolution(r string) bool {
	return r == DisputeResolutionRefund || r == DisputeResolutionRelease || r == DisputeResolutionNone
}

type Dispute struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	ReportedBy uuid.UUID `json:"reported_by"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	Resolution string    `json:"resolution,omitempty"`
	AdminNotes string    `json:"admin_notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
