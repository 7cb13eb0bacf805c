package web

import (
	"errors"
	"net/http"
	"net/url"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
)

// resetSentMessage is shown whether or not the address is registered.
const resetSentMessage = "If that email is registered, a reset link is on its way. It is valid for one hour."

// passwordPage is the data behind the forgot, reset and change password pages.
type passwordPage struct {
	Paths paths
	Token string
	Email string
}

// handleForgotPasswordForm serves GET /forgot-password and its admin twin.
func (s *Server) handleForgotPasswordForm(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "forgot_password.html", "Forgot password", passwordPage{Paths: pathsFor(kind)})
	}
}

// handleForgotPassword queues a reset email. Unknown addresses get the same
// answer as known ones.
func (s *Server) handleForgotPassword(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		p := pathsFor(kind)

		_, err := orchestrators.ExecuteRequestPasswordReset(r.Context(),
			orchestrators.RequestResetInput{Kind: kind, Email: r.PostFormValue("email")},
			orchestrators.RequestResetDeps{
				Admins:     s.Stores.Admins,
				Customers:  s.Stores.Customers,
				Resets:     s.Stores.Resets,
				Outbox:     s.Stores.Outbox,
				BaseURL:    s.BaseURL,
				Recorder:   s.recorder,
				Now:        s.Now,
				GenerateID: s.GenerateID,
			},
		)
		switch {
		case err == nil, errors.Is(err, orchestrators.ErrEmailNotFound):
			s.flash(w, r, middleware.FlashSuccess, resetSentMessage)
			redirect(w, r, p.Login)
		case errors.Is(err, orchestrators.ErrValidation):
			s.flashError(w, r, err)
			redirect(w, r, p.Forgot)
		default:
			internalError(w, err)
		}
	}
}

// handleResetPasswordForm serves the page the emailed link points at.
func (s *Server) handleResetPasswordForm(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := pathsFor(kind)
		token, email := r.URL.Query().Get("token"), r.URL.Query().Get("email")
		if token == "" || email == "" {
			s.flash(w, r, middleware.FlashError, userMessage(orchestrators.ErrResetTokenInvalid))
			redirect(w, r, p.Forgot)
			return
		}
		s.render(w, r, "reset_password.html", "Choose a new password", passwordPage{Paths: p, Token: token, Email: email})
	}
}

// handleResetPassword redeems the token and sets the new password.
func (s *Server) handleResetPassword(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		p := pathsFor(kind)
		token, email := r.PostFormValue("token"), r.PostFormValue("email")

		res, err := orchestrators.ExecuteResetPassword(r.Context(),
			orchestrators.ResetPasswordInput{
				Token:           token,
				Email:           email,
				NewPassword:     r.PostFormValue("new_password"),
				ConfirmPassword: r.PostFormValue("confirm_password"),
			},
			orchestrators.ResetPasswordDeps{
				Admins:    s.Stores.Admins,
				Customers: s.Stores.Customers,
				Resets:    s.Stores.Resets,
				Recorder:  s.recorder,
				Now:       s.Now,
			},
		)
		switch {
		case err == nil:
			// The token decides whose password changed, not the route it came in on.
			s.Remember.Clear(w, res.Kind)
			s.flash(w, r, middleware.FlashSuccess, "Your password has been reset. Log in with your new password.")
			redirect(w, r, pathsFor(res.Kind).Login)
		case errors.Is(err, orchestrators.ErrValidation):
			s.flashError(w, r, err)
			q := url.Values{}
			q.Set("token", token)
			q.Set("email", email)
			redirect(w, r, p.Reset+"?"+q.Encode())
		case s.flashError(w, r, err):
			redirect(w, r, p.Forgot)
		default:
			internalError(w, err)
		}
	}
}

// handleChangePasswordForm serves GET /change-password and its admin twin.
func (s *Server) handleChangePasswordForm(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "change_password.html", "Change password", passwordPage{Paths: pathsFor(kind)})
	}
}

// handleChangePassword replaces the logged-in account's password.
// PRE: RequireKind has admitted an authenticated session of kind
func (s *Server) handleChangePassword(kind account.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		sess, _ := middleware.GetSessionFromContext(r.Context())
		p := pathsFor(kind)

		err := orchestrators.ExecuteChangePassword(r.Context(),
			orchestrators.ChangePasswordInput{
				Kind:            kind,
				AccountID:       sess.AccountID,
				CurrentPassword: r.PostFormValue("current_password"),
				NewPassword:     r.PostFormValue("new_password"),
				ConfirmPassword: r.PostFormValue("confirm_password"),
			},
			orchestrators.ChangePasswordDeps{Accounts: s.accounts(kind), Recorder: s.recorder, Now: s.Now},
		)
		if err != nil {
			if !s.flashError(w, r, err) {
				internalError(w, err)
				return
			}
			redirect(w, r, p.Change)
			return
		}
		// The stored remember token was cleared; drop the now useless cookies.
		s.Remember.Clear(w, kind)
		s.flash(w, r, middleware.FlashSuccess, "Your password has been changed")
		redirect(w, r, p.Dashboard)
	}
}
