package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment status enum.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusReleased = "released"
	PaymentStatusRefunded = "refunded"
)

// Payment records an escrow settlement against a contract.
type Payment struct {
	ID               uuid.UUID `json:"id"`
	ContractID       uuid.UUID `json:"contract_id"`
	PayerID          uuid.UUID `json:"payer_id"`
	AmountCents      int64     `json:"amount_cents"`
	PlatformFeeCents int64     `json:"platform_fee_cents"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
