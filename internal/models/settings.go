package models

import "time"

// DefaultCommissionBps is the platform commission in basis points (10%).
// The live value comes from platform_settings; this seeds it.
const DefaultCommissionBps = 1000

// PlatformSettings is a single-row table read by proposal acceptance and
// escrow settlement so the commission rate has one source of truth.
type PlatformSettings struct {
	CommissionBps int       `json:"commission_bps"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PlatformFeeCents computes the commission on amount, rounded half-up to
// the nearest cent.
func PlatformFeeCents(amountCents int64, rateBps int) int64 {
	return (amountCents*int64(rateBps) + 5000) / 10000
}

// PlatformStats is the admin dashboard snapshot.
type PlatformStats struct {
	Users               int64 `json:"users"`
	Projects            int64 `json:"projects"`
	Contracts           int64 `json:"contracts"`
	CompletedContracts  int64 `json:"completed_contracts"`
	OpenDisputes        int64 `json:"open_disputes"`
	PendingWithdrawals  int64 `json:"pending_withdrawals"`
	ReleasedVolumeCents int64 `json:"released_volume_cents"`
	PlatformFeesCents   int64 `json:"platform_fees_cents"`
}
