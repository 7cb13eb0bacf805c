package web

import (
	"context"
	"log/slog"
	"net/http"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/branch"
)

// loginPage is the data behind login.html.
type loginPage struct {
	Kind     account.Kind
	Paths    paths
	Branches []branch.Branch
}

func (p loginPage) IsAdmin() bool { return p.Kind == account.KindAdmin }

// handleHome sends visitors to the page that fits their session.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if sess.IsAuthenticated() {
		redirect(w, r, pathsFor(sess.Kind).Dashboard)
		return
	}
	redirect(w, r, "/login")
}

// handleLoginForm serves GET /login and GET /admin/login.
func (s *Server) handleLoginForm(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, _ := middleware.GetSessionFromContext(r.Context()); sess.IsAuthenticated() && sess.Kind == kind {
			redirect(w, r, pathsFor(kind).Dashboard)
			return
		}
		branches, err := s.Stores.Branches.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		title := "Member login"
		if kind == account.KindAdmin {
			title = "Staff login"
		}
		s.render(w, r, "login.html", title, loginPage{Kind: kind, Paths: pathsFor(kind), Branches: branches})
	}
}

// handleLogin serves POST /login and POST /admin/login.
func (s *Server) handleLogin(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		p := pathsFor(kind)

		input := orchestrators.LoginInput{
			Kind:     kind,
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Branch:   r.PostFormValue("branch"),
			Remember: r.PostFormValue("remember") != "",
		}
		deps := orchestrators.LoginDeps{
			Accounts: s.accounts(kind),
			Recorder: s.recorder,
			Now:      s.Now,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			if !s.flashError(w, r, err) {
				internalError(w, err)
				return
			}
			redirect(w, r, p.Login)
			return
		}

		if result.Remember != nil {
			if err := s.Remember.Set(w, *result.Remember); err != nil {
				slog.Error("remember_cookie_failed", "account_id", result.AccountID, "error", err)
			}
		}
		if _, err := s.startSession(w, r, result); err != nil {
			internalError(w, err)
			return
		}
		redirect(w, r, p.Dashboard)
	}
}

// startSession replaces whatever session the visitor had with a fresh one
// for result, so a session token is never carried across a login.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, result orchestrators.LoginResult) (middleware.Session, error) {
	if old, ok := middleware.GetSessionFromContext(r.Context()); ok {
		s.Sessions.Delete(old.Token)
	}
	sess, err := s.Sessions.Create(sessionFrom(result))
	if err != nil {
		return middleware.Session{}, err
	}
	middleware.SetSessionCookie(w, sess.Token, s.Secure)
	return sess, nil
}

func sessionFrom(result orchestrators.LoginResult) middleware.Session {
	return middleware.Session{
		AccountID: result.AccountID,
		Kind:      result.Kind,
		Name:      result.Name,
		Email:     result.Email,
		Role:      result.Role,
		Branch:    result.Branch,
	}
}

// rememberLogin is the RememberMe middleware's authenticator.
func (s *Server) rememberLogin(ctx context.Context, kind account.Kind, accountID, token string) (middleware.Session, error) {
	result, err := orchestrators.ExecuteRememberLogin(ctx,
		orchestrators.RememberLoginInput{Kind: kind, AccountID: accountID, Token: token},
		orchestrators.RememberDeps{Accounts: s.accounts(kind), Recorder: s.recorder, Now: s.Now},
	)
	if err != nil {
		return middleware.Session{}, err
	}
	return sessionFrom(result), nil
}

// handleLogout serves POST /logout and POST /admin/logout. It revokes the
// remember token server-side, destroys the session and clears every cookie.
func (s *Server) handleLogout(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
			if sess.IsAuthenticated() && sess.Kind == kind {
				err := orchestrators.ExecuteLogout(r.Context(),
					orchestrators.RememberInput{Kind: kind, AccountID: sess.AccountID},
					orchestrators.RememberDeps{Accounts: s.accounts(kind), Recorder: s.recorder, Now: s.Now},
				)
				if err != nil {
					slog.Error("logout_revoke_failed", "account_id", sess.AccountID, "error", err)
				}
			}
			s.Sessions.Delete(sess.Token)
		}
		middleware.ClearSessionCookie(w, s.Secure)
		s.Remember.Clear(w, kind)
		redirect(w, r, pathsFor(kind).Login)
	}
}
