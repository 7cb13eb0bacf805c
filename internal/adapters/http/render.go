package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login.html",
	"register.html",
	"forgot_password.html",
	"reset_password.html",
	"change_password.html",
	"dashboard_customer.html",
	"dashboard_admin.html",
	"admin_audit.html",
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 Jan 2006")
	},
	"datetime": func(t time.Time) string { return t.Format("2 Jan 2006 15:04") },
}

// parsePages builds one template set per page, each joined with the layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

// page is the data every template receives.
type page struct {
	Title     string
	Session   middleware.Session
	Flashes   []middleware.Flash
	CSRFField template.HTML
	Data      any
}

// render pops the visitor's flashes and executes the named page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	tpl, ok := s.pages[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", name))
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	p := page{
		Title:     title,
		Session:   sess,
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	}
	if sess.Token != "" {
		p.Flashes = s.Sessions.PopFlashes(sess.Token)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := tpl.Execute(w, p); err != nil {
		slog.Error("render_failed", "template", name, "error", err)
	}
}

// flash queues messages for the visitor's next page, creating an anonymous
// session to carry them when the visitor has none.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, level string, messages ...string) {
	token := s.sessionToken(w, r)
	if token == "" {
		return
	}
	for _, m := range messages {
		s.Sessions.AddFlash(token, middleware.Flash{Level: level, Message: m})
	}
}

func (s *Server) sessionToken(w http.ResponseWriter, r *http.Request) string {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		return sess.Token
	}
	sess, err := s.Sessions.Create(middleware.Session{})
	if err != nil {
		slog.Error("session_create_failed", "error", err)
		return ""
	}
	middleware.SetSessionCookie(w, sess.Token, s.Secure)
	return sess.Token
}

// flashError turns an orchestrator error into the messages shown to the visitor.
// It returns false when the error is not one a visitor can act on.
func (s *Server) flashError(w http.ResponseWriter, r *http.Request, err error) bool {
	var verrs orchestrators.ValidationErrors
	if errors.As(err, &verrs) {
		s.flash(w, r, middleware.FlashError, verrs.Messages()...)
		return true
	}
	if errors.Is(err, orchestrators.ErrPersistence) {
		return false
	}
	if msg := userMessage(err); msg != "" {
		s.flash(w, r, middleware.FlashError, msg)
		return true
	}
	return false
}

// userMessage maps known errors to visitor-facing text. Unknown email and wrong
// password share one message so the login form does not reveal which emails exist.
func userMessage(err error) string {
	switch {
	case errors.Is(err, orchestrators.ErrEmailNotFound),
		errors.Is(err, orchestrators.ErrInvalidPassword):
		return "Invalid email or password"
	case errors.Is(err, orchestrators.ErrBranchMismatch):
		return "Your account is registered at a different branch"
	case errors.Is(err, orchestrators.ErrResetTokenUsed):
		return "This reset link has already been used. Request a new one."
	case errors.Is(err, orchestrators.ErrResetTokenExpired):
		return "This reset link has expired. Request a new one."
	case errors.Is(err, orchestrators.ErrResetTokenInvalid):
		return "This reset link is not valid. Request a new one."
	case errors.Is(err, orchestrators.ErrAccountNotFound):
		return "Your account could not be found"
	}
	return ""
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
