package models

import (
	"time"

	"github.com/google/uuid"
)

// Marketplace roles. Designers and media buyers are the freelancer side;
// clients post projects. Admin is assigned out of band (see cmd/adminutil).
const (
	RoleClient     = "client"
	RoleDesigner   = "designer"
	RoleMediaBuyer = "media_buyer"
	RoleAdmin      = "admin"
)

// IsFreelancerRole reports whether the role may submit proposals and hold a wallet.
func IsFreelancerRole(role string) bool {
	return role == RoleDesigner || role == RoleMediaBuyer
}

// ValidSignupRole reports whether the role may be chosen at registration.
func ValidSignupRole(role string) bool {
	return role == RoleClient || role == RoleDesigner || role == RoleMediaBuyer
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuspended  bool      `json:"is_suspended"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Profile struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Bio        string    `json:"bio,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Platforms  []string  `json:"platforms,omitempty"`
	IsVerified bool      `json:"is_verified"`
	IsFeatured bool      `json:"is_featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
