package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/projections"
)

// handleCustomerDashboard serves GET /dashboard.
func (s *Server) handleCustomerDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	dash, err := projections.QueryGetCustomerDashboard(r.Context(),
		projections.GetCustomerDashboardQuery{CustomerID: sess.AccountID},
		projections.GetCustomerDashboardDeps{
			Customers:   s.Stores.Customers,
			Memberships: s.Stores.Memberships,
			Attendance:  s.Stores.Attendance,
			Classes:     s.Stores.Classes,
		},
		s.Now(),
	)
	if err != nil {
		internalError(w, err)
		return
	}
	s.render(w, r, "dashboard_customer.html", "Dashboard", dash)
}

// handleAdminDashboard serves GET /admin/dashboard for the branch chosen at login.
func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	dash, err := projections.QueryGetAdminDashboard(r.Context(),
		projections.GetAdminDashboardQuery{Branch: sess.Branch},
		projections.GetAdminDashboardDeps{
			Customers:  s.Stores.Customers,
			Attendance: s.Stores.Attendance,
			Classes:    s.Stores.Classes,
		},
		s.Now(),
	)
	if err != nil {
		internalError(w, err)
		return
	}
	s.render(w, r, "dashboard_admin.html", "Staff dashboard", dash)
}

// handleHealthz reports liveness and database reachability as JSON.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			slog.Error("healthz_db_unreachable", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
