package web

import (
	"net/http"
	"strconv"

	"gymportal/internal/adapters/http/middleware"
	auditStore "gymportal/internal/adapters/storage/audit"
	"gymportal/internal/domain/account"
	auditDomain "gymportal/internal/domain/audit"
)

type auditPage struct {
	Events []auditDomain.Event
	Filter auditStore.Filter
	Limit  int
}

// handleAdminAuditTrail renders the security event log (GET /admin/audit).
// PRE: User must be authenticated as admin
// POST: Renders audit trail with optional filters
func (s *Server) handleAdminAuditTrail(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	// Managers run a branch; only admins read the security log.
	if sess.Role != account.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:  auditDomain.Category(q.Get("category")),
		Action:    auditDomain.Action(q.Get("action")),
		AccountID: q.Get("account_id"),
		Email:     q.Get("email"),
	}

	limit := 100
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	events, err := s.Stores.Audit.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	s.render(w, r, "admin_audit.html", "Audit trail", auditPage{Events: events, Filter: filter, Limit: limit})
}
