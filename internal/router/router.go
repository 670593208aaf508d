package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/admarket/backend/internal/auth"
	"github.com/admarket/backend/internal/handlers"
	"github.com/admarket/backend/internal/metrics"
	"github.com/admarket/backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *auth.Handler
	Profiles      *handlers.ProfileHandler
	Projects      *handlers.ProjectHandler
	Proposals     *handlers.ProposalHandler
	Contracts     *handlers.ContractHandler
	Messages      *handlers.MessageHandler
	Wallet        *handlers.WalletHandler
	Reviews       *handlers.ReviewHandler
	Notifications *handlers.NotificationHandler
	Admin         *handlers.AdminHandler
}

// New returns an http.Handler serving the API under /api/v1.
func New(authSvc auth.Service, h Handlers) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.JWTAuth(authSvc)
	protected := func(hf http.HandlerFunc) http.Handler { return requireAuth(hf) }
	admin := func(hf http.HandlerFunc) http.Handler { return requireAuth(middleware.AdminOnly(hf)) }

	base := "/api/v1"

	// public
	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)
	mux.HandleFunc("GET "+base+"/profiles/featured", h.Profiles.ListFeatured)
	mux.HandleFunc("GET "+base+"/profiles/{id}", h.Profiles.Get)
	mux.HandleFunc("GET "+base+"/users/{id}/reviews", h.Reviews.ListByUser)

	// account
	mux.Handle("GET "+base+"/auth/me", protected(h.Auth.Me))
	mux.Handle("GET "+base+"/profiles/me", protected(h.Profiles.GetMine))
	mux.Handle("PATCH "+base+"/profiles/me", protected(h.Profiles.Update))
	mux.Handle("POST "+base+"/profiles/me/avatar-upload", protected(h.Profiles.AvatarUploadURL))

	// projects
	mux.Handle("POST "+base+"/projects", protected(h.Projects.Create))
	mux.Handle("GET "+base+"/projects", protected(h.Projects.ListOpen))
	mux.Handle("GET "+base+"/projects/mine", protected(h.Projects.ListMine))
	mux.Handle("GET "+base+"/projects/{id}", protected(h.Projects.Get))
	mux.Handle("POST "+base+"/projects/{id}/publish", protected(h.Projects.Publish))
	mux.Handle("POST "+base+"/projects/{id}/cancel", protected(h.Projects.Cancel))
	mux.Handle("GET "+base+"/projects/{id}/proposals", protected(h.Proposals.ListByProject))

	// proposals
	mux.Handle("POST "+base+"/proposals", protected(h.Proposals.Create))
	mux.Handle("GET "+base+"/proposals/mine", protected(h.Proposals.ListMine))
	mux.Handle("GET "+base+"/proposals/incoming", protected(h.Proposals.ListIncoming))
	mux.Handle("POST "+base+"/proposals/{id}/accept", protected(h.Proposals.Accept))
	mux.Handle("POST "+base+"/proposals/{id}/reject", protected(h.Proposals.Reject))
	mux.Handle("POST "+base+"/proposals/{id}/withdraw", protected(h.Proposals.Withdraw))

	// contracts
	mux.Handle("GET "+base+"/contracts", protected(h.Contracts.List))
	mux.Handle("GET "+base+"/contracts/{id}", protected(h.Contracts.Get))
	mux.Handle("GET "+base+"/contracts/{id}/payments", protected(h.Contracts.ListPayments))
	mux.Handle("POST "+base+"/contracts/{id}/submit", protected(h.Contracts.Submit))
	mux.Handle("POST "+base+"/contracts/{id}/request-revision", protected(h.Contracts.RequestRevision))
	mux.Handle("POST "+base+"/contracts/{id}/approve", protected(h.Contracts.Approve))
	mux.Handle("POST "+base+"/contracts/{id}/release", protected(h.Contracts.Release))
	mux.Handle("POST "+base+"/contracts/{id}/disputes", protected(h.Contracts.OpenDispute))
	mux.Handle("GET "+base+"/contracts/{id}/disputes", protected(h.Contracts.ListDisputes))

	// messaging
	mux.Handle("POST "+base+"/contracts/{id}/messages", protected(h.Messages.Send))
	mux.Handle("GET "+base+"/contracts/{id}/messages", protected(h.Messages.List))
	mux.Handle("POST "+base+"/contracts/{id}/attachments", protected(h.Messages.AttachmentUploadURL))

	// reviews
	mux.Handle("POST "+base+"/contracts/{id}/reviews", protected(h.Reviews.Create))

	// wallet
	mux.Handle("GET "+base+"/wallet", protected(h.Wallet.Get))
	mux.Handle("POST "+base+"/withdrawals", protected(h.Wallet.RequestWithdrawal))
	mux.Handle("GET "+base+"/withdrawals", protected(h.Wallet.ListWithdrawals))

	// notifications
	mux.Handle("GET "+base+"/notifications", protected(h.Notifications.List))
	mux.Handle("POST "+base+"/notifications/{id}/read", protected(h.Notifications.MarkRead))

	// admin
	mux.Handle("GET "+base+"/admin/withdrawals", admin(h.Admin.ListWithdrawals))
	mux.Handle("POST "+base+"/admin/withdrawals/{id}/approve", admin(h.Admin.ApproveWithdrawal))
	mux.Handle("POST "+base+"/admin/withdrawals/{id}/reject", admin(h.Admin.RejectWithdrawal))
	mux.Handle("POST "+base+"/admin/withdrawals/{id}/process", admin(h.Admin.ProcessWithdrawal))
	mux.Handle("GET "+base+"/admin/disputes", admin(h.Admin.ListOpenDisputes))
	mux.Handle("POST "+base+"/admin/disputes/{id}/resolve", admin(h.Admin.ResolveDispute))
	mux.Handle("GET "+base+"/admin/stats", admin(h.Admin.GetStats))
	mux.Handle("GET "+base+"/admin/settings", admin(h.Admin.GetSettings))
	mux.Handle("PATCH "+base+"/admin/settings", admin(h.Admin.UpdateCommission))
	mux.Handle("POST "+base+"/admin/users/{id}/suspend", admin(h.Admin.SuspendUser))
	mux.Handle("POST "+base+"/admin/profiles/{id}/moderate", admin(h.Admin.ModerateProfile))

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return withMetrics(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics records request durations labeled by the route pattern, so
// path parameters do not blow up label cardinality.
func withMetrics(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(r.Method, pattern, strconv.Itoa(rec.status), time.Since(start))
	})
}
