package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal status enum. Funds are reserved (debited) when the request is
// created; rejection refunds them, processed marks the external transfer.
// rejected and processed are terminal.
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusProcessed = "processed"
)

// Wallet holds a freelancer's settled earnings. BalanceCents never goes
// negative; TotalEarnedCents only grows (settlement credits).
type Wallet struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	BalanceCents     int64     `json:"balance_cents"`
	TotalEarnedCents int64     `json:"total_earned_cents"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Withdrawal struct {
	ID          uuid.UUID `json:"id"`
	WalletID    uuid.UUID `json:"wallet_id"`
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
