package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/admarket/backend/internal/auth"
	"github.com/admarket/backend/internal/models"
)

type fakeAuthService struct {
	ident auth.Identity
	err   error
}

func (f *fakeAuthService) Register(ctx context.Context, email, password, fullName, role string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAuthService) ValidateToken(ctx context.Context, token string) (auth.Identity, error) {
	if f.err != nil {
		return auth.Identity{}, f.err
	}
	return f.ident, nil
}

func (f *fakeAuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, []string, error) {
	return nil, nil, errors.New("not implemented")
}

func okHandler(captured *auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			if ident, ok := auth.IdentityFromCtx(r.Context()); ok {
				*captured = ident
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthMissingHeader(t *testing.T) {
	h := JWTAuth(&fakeAuthService{})(okHandler(nil))
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestJWTAuthInvalidToken(t *testing.T) {
	h := JWTAuth(&fakeAuthService{err: errors.New("expired")})(okHandler(nil))
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	want := auth.Identity{UserID: uuid.New(), Roles: []string{models.RoleDesigner}}
	var got auth.Identity
	h := JWTAuth(&fakeAuthService{ident: want})(okHandler(&got))
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.UserID != want.UserID {
		t.Fatalf("expected identity %s in context, got %s", want.UserID, got.UserID)
	}
}

func TestAdminOnlyRejectsNonAdmin(t *testing.T) {
	h := AdminOnly(okHandler(nil))
	ident := auth.Identity{UserID: uuid.New(), Roles: []string{models.RoleClient}}
	req := httptest.NewRequest(http.MethodGet, "/admin/withdrawals", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), ident))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAdminOnlyAllowsAdmin(t *testing.T) {
	h := AdminOnly(okHandler(nil))
	ident := auth.Identity{UserID: uuid.New(), Roles: []string{models.RoleClient, models.RoleAdmin}}
	req := httptest.NewRequest(http.MethodGet, "/admin/withdrawals", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), ident))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
