package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := &service{secret: []byte("test-secret")}
	userID := uuid.New()
	roles := []string{models.RoleDesigner, models.RoleMediaBuyer}

	token, err := svc.issueToken(userID, roles)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	ident, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if ident.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, ident.UserID)
	}
	if len(ident.Roles) != 2 || ident.Roles[0] != models.RoleDesigner {
		t.Errorf("unexpected roles: %v", ident.Roles)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := &service{secret: []byte("secret-a")}
	verifier := &service{secret: []byte("secret-b")}

	token, err := issuer.issueToken(uuid.New(), []string{models.RoleClient})
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if _, err := verifier.ValidateToken(context.Background(), token); err == nil {
		t.Fatal("expected validation to fail with wrong secret")
	}
}

func TestRegisterRejectsInvalidRole(t *testing.T) {
	svc := &service{secret: []byte("test-secret")}
	if _, err := svc.Register(context.Background(), "a@b.c", "longenough", "A", models.RoleAdmin); err == nil {
		t.Fatal("expected admin signup to be rejected")
	}
	if _, err := svc.Register(context.Background(), "a@b.c", "longenough", "A", "plumber"); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := &service{secret: []byte("test-secret")}
	if _, err := svc.Register(context.Background(), "a@b.c", "short", "A", models.RoleClient); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestIdentityHasRole(t *testing.T) {
	ident := Identity{UserID: uuid.New(), Roles: []string{models.RoleClient, models.RoleDesigner}}
	if !ident.HasRole(models.RoleClient) {
		t.Error("expected client role")
	}
	if ident.HasRole(models.RoleAdmin) {
		t.Error("did not expect admin role")
	}
	if !ident.IsFreelancer() {
		t.Error("designer should count as freelancer")
	}
}
