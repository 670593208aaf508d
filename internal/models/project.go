package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status enum. A project leaves "open" when a proposal is accepted
// and reaches "completed" only through its contract's settlement.
const (
	ProjectStatusDraft       = "draft"
	ProjectStatusOpen        = "open"
	ProjectStatusInProgress  = "in_progress"
	ProjectStatusUnderReview = "under_review"
	ProjectStatusCompleted   = "completed"
	ProjectStatusCancelled   = "cancelled"
)

// Service types offered on the platform.
const (
	ServiceTypeDesign      = "design"
	ServiceTypeCampaign    = "campaign"
	ServiceTypeFullPackage = "full_package"
)

// ValidServiceType reports whether t is a known service type.
func ValidServiceType(t string) bool {
	return t == ServiceTypeDesign || t == ServiceTypeCampaign || t == ServiceTypeFullPackage
}

// Project is a client's job posting. BudgetCents is the advertised budget;
// the contract amount comes from the accepted proposal, not from here.
type Project struct {
	ID             uuid.UUID  `json:"id"`
	ClientID       uuid.UUID  `json:"client_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ServiceType    string     `json:"service_type"`
	RequiredSkills []string   `json:"required_skills,omitempty"`
	BudgetCents    int64      `json:"budget_cents"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
