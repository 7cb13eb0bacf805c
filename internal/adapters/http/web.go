package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/metrics"
	accountStore "gymportal/internal/adapters/storage/account"
	attendanceStore "gymportal/internal/adapters/storage/attendance"
	auditStore "gymportal/internal/adapters/storage/audit"
	branchStore "gymportal/internal/adapters/storage/branch"
	classStore "gymportal/internal/adapters/storage/class"
	membershipStore "gymportal/internal/adapters/storage/membership"
	outboxStore "gymportal/internal/adapters/storage/outbox"
	passwordResetStore "gymportal/internal/adapters/storage/passwordreset"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
)

// Stores holds all storage dependencies.
type Stores struct {
	Admins      accountStore.Store
	Customers   accountStore.Store
	Branches    branchStore.Store
	Resets      passwordResetStore.Store
	Outbox      outboxStore.Store
	Audit       auditStore.Store
	Memberships membershipStore.Store
	Attendance  attendanceStore.Store
	Classes     classStore.Store
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// OutboxRetrier delivers one outbox entry immediately.
type OutboxRetrier interface {
	ProcessSingle(ctx context.Context, entryID string) error
}

// Deps is everything the HTTP layer needs. Zero values get sensible defaults
// except Stores, Sessions and Remember, which are required.
type Deps struct {
	Stores   Stores
	Sessions middleware.SessionStore
	Remember *middleware.RememberCookies
	Metrics  *metrics.Metrics
	DB       Pinger
	// Outbox retries a single entry on demand from /admin/outbox; optional.
	Outbox OutboxRetrier

	BaseURL     string
	CSRFKey     []byte
	Secure      bool
	RateLimit   int // POST requests per minute per IP; <= 0 disables
	SlowRequest time.Duration

	Now        func() time.Time
	GenerateID func() string
}

// Server holds the wired dependencies behind the handlers.
type Server struct {
	Deps
	recorder *orchestrators.Recorder
	pages    map[string]*template.Template
}

// NewServer validates deps and parses the page templates.
func NewServer(deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.Remember == nil {
		return nil, fmt.Errorf("web: sessions and remember cookies are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = func() string { return uuid.New().String() }
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		Deps:     deps,
		recorder: &orchestrators.Recorder{Audit: deps.Stores.Audit, Metrics: deps.Metrics},
		pages:    pages,
	}, nil
}

// NewMux wires HTTP handlers for the portal.
func NewMux(deps Deps) (http.Handler, error) {
	s, err := NewServer(deps)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler returns the routed handler wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	csrfKey := s.CSRFKey
	if len(csrfKey) != 32 {
		csrfKey = securecookie.GenerateRandomKey(32)
	}
	limiter := middleware.NewRateLimiter(s.RateLimit, time.Minute)

	// Outermost last: Timing -> SecurityHeaders -> CSRF -> RequestInfo -> Auth -> RememberMe -> RateLimit -> mux
	return middleware.Chain(mux,
		middleware.RateLimit(limiter),
		middleware.RememberMe(s.Sessions, s.Remember, s.rememberLogin),
		middleware.Auth(s.Sessions),
		middleware.RequestInfo,
		middleware.CSRF(csrfKey, s.Secure, nil),
		middleware.SecurityHeaders,
		middleware.Timing(s.Metrics, s.SlowRequest, middleware.MuxRoute(mux)),
	)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	customer := middleware.RequireKind(account.KindCustomer, "/login")
	admin := middleware.RequireKind(account.KindAdmin, "/admin/login")

	mux.HandleFunc("GET /{$}", s.handleHome)

	mux.HandleFunc("GET /login", s.handleLoginForm(account.KindCustomer))
	mux.HandleFunc("POST /login", s.handleLogin(account.KindCustomer))
	mux.HandleFunc("POST /logout", s.handleLogout(account.KindCustomer))
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /forgot-password", s.handleForgotPasswordForm(account.KindCustomer))
	mux.HandleFunc("POST /forgot-password", s.handleForgotPassword(account.KindCustomer))
	mux.HandleFunc("GET /reset-password", s.handleResetPasswordForm(account.KindCustomer))
	mux.HandleFunc("POST /reset-password", s.handleResetPassword(account.KindCustomer))
	mux.Handle("GET /change-password", customer(s.handleChangePasswordForm(account.KindCustomer)))
	mux.Handle("POST /change-password", customer(s.handleChangePassword(account.KindCustomer)))
	mux.Handle("GET /dashboard", customer(http.HandlerFunc(s.handleCustomerDashboard)))

	mux.HandleFunc("GET /admin/login", s.handleLoginForm(account.KindAdmin))
	mux.HandleFunc("POST /admin/login", s.handleLogin(account.KindAdmin))
	mux.HandleFunc("POST /admin/logout", s.handleLogout(account.KindAdmin))
	mux.HandleFunc("GET /admin/forgot-password", s.handleForgotPasswordForm(account.KindAdmin))
	mux.HandleFunc("POST /admin/forgot-password", s.handleForgotPassword(account.KindAdmin))
	mux.HandleFunc("GET /admin/reset-password", s.handleResetPasswordForm(account.KindAdmin))
	mux.HandleFunc("POST /admin/reset-password", s.handleResetPassword(account.KindAdmin))
	mux.Handle("GET /admin/change-password", admin(s.handleChangePasswordForm(account.KindAdmin)))
	mux.Handle("POST /admin/change-password", admin(s.handleChangePassword(account.KindAdmin)))
	mux.Handle("GET /admin/dashboard", admin(http.HandlerFunc(s.handleAdminDashboard)))
	mux.Handle("GET /admin/audit", admin(http.HandlerFunc(s.handleAdminAuditTrail)))
	mux.Handle("GET /admin/outbox", admin(http.HandlerFunc(s.handleAdminOutbox)))
	mux.Handle("POST /admin/outbox/{id}/retry", admin(http.HandlerFunc(s.handleAdminOutboxRetry)))

	mux.Handle("GET /metrics", s.Metrics.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// accounts returns the credential store for kind.
func (s *Server) accounts(kind account.Kind) accountStore.Store {
	if kind == account.KindAdmin {
		return s.Stores.Admins
	}
	return s.Stores.Customers
}

// paths groups the URLs that differ between the two account kinds.
type paths struct {
	Login, Logout, Dashboard, Forgot, Reset, Change string
}

func pathsFor(kind account.Kind) paths {
	if kind == account.KindAdmin {
		return paths{
			Login:     "/admin/login",
			Logout:    "/admin/logout",
			Dashboard: "/admin/dashboard",
			Forgot:    "/admin/forgot-password",
			Reset:     "/admin/reset-password",
			Change:    "/admin/change-password",
		}
	}
	return paths{
		Login:     "/login",
		Logout:    "/logout",
		Dashboard: "/dashboard",
		Forgot:    "/forgot-password",
		Reset:     "/reset-password",
		Change:    "/change-password",
	}
}
