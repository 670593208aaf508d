package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotifyNewProposal        = "new_proposal"
	NotifyProposalAccepted   = "proposal_accepted"
	NotifyProposalRejected   = "proposal_rejected"
	NotifyMessageReceived    = "message_received"
	NotifyPaymentReleased    = "payment_released"
	NotifyReviewReceived     = "review_received"
	NotifyContractCreated    = "contract_created"
	NotifyWorkSubmitted      = "work_submitted"
	NotifyRevisionRequested  = "revision_requested"
	NotifyWorkApproved       = "work_approved"
	NotifyDisputeOpened      = "dispute_opened"
	NotifyDisputeResolved    = "dispute_resolved"
	NotifyWithdrawalApproved = "withdrawal_approved"
	NotifyWithdrawalRejected = "withdrawal_rejected"
)

type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message,omitempty"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}
