package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"gymportal/internal/domain/account"
)

type rememberNames struct{ user, token string }

var rememberCookieNames = map[account.Kind]rememberNames{
	account.KindAdmin:    {user: "remember_user", token: "remember_token"},
	account.KindCustomer: {user: "customer_remember", token: "customer_token"},
}

// RememberCookies writes and reads the two remember-me cookies of each account kind.
// Values are signed and encrypted with securecookie, so the account id cannot be forged.
type RememberCookies struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewRememberCookies creates the cookie codec.
// PRE: hashKey is 32 or 64 bytes; blockKey is 16, 24 or 32 bytes
func NewRememberCookies(hashKey, blockKey []byte, secure bool) *RememberCookies {
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(account.RememberTokenTTL / time.Second))
	return &RememberCookies{codec: codec, secure: secure}
}

// Set writes both cookies for t, expiring with the token.
func (rc *RememberCookies) Set(w http.ResponseWriter, t account.RememberToken) error {
	names, ok := rememberCookieNames[t.Kind]
	if !ok {
		return account.ErrInvalidKind
	}
	for name, value := range map[string]string{names.user: t.AccountID, names.token: t.Token} {
		encoded, err := rc.codec.Encode(name, value)
		if err != nil {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    encoded,
			Path:     "/",
			Expires:  t.ExpiresAt,
			MaxAge:   int(time.Until(t.ExpiresAt) / time.Second),
			HttpOnly: true,
			Secure:   rc.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}

// Read returns the account id and token carried by the cookies of kind.
// ok is false when either cookie is missing or fails verification.
func (rc *RememberCookies) Read(r *http.Request, kind account.Kind) (accountID, token string, ok bool) {
	names, known := rememberCookieNames[kind]
	if !known {
		return "", "", false
	}
	if accountID, ok = rc.decode(r, names.user); !ok {
		return "", "", false
	}
	if token, ok = rc.decode(r, names.token); !ok {
		return "", "", false
	}
	return accountID, token, true
}

func (rc *RememberCookies) decode(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	var value string
	if err := rc.codec.Decode(name, c.Value, &value); err != nil {
		slog.Warn("remember_cookie_rejected", "cookie", name, "error", err)
		return "", false
	}
	return value, value != ""
}

// Clear expires both cookies of kind.
func (rc *RememberCookies) Clear(w http.ResponseWriter, kind account.Kind) {
	names, ok := rememberCookieNames[kind]
	if !ok {
		return
	}
	for _, name := range []string{names.user, names.token} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   rc.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// RememberAuthenticator turns a verified (kind, account id, token) triple into
// a session identity. It returns an error when the token is not accepted.
type RememberAuthenticator func(ctx context.Context, kind account.Kind, accountID, token string) (Session, error)

// RememberMe returns middleware that signs a visitor in from their remember
// cookies when they have no authenticated session. Rejected cookies are cleared.
// It must run inside Auth.
func RememberMe(sessions SessionStore, cookies *RememberCookies, authenticate RememberAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, hasSession := GetSessionFromContext(r.Context())
			if hasSession && current.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}
			for _, kind := range []account.Kind{account.KindAdmin, account.KindCustomer} {
				accountID, token, ok := cookies.Read(r, kind)
				if !ok {
					continue
				}
				identity, err := authenticate(r.Context(), kind, accountID, token)
				if err != nil {
					slog.Info("remember_login_rejected", "kind", string(kind), "account_id", accountID, "error", err)
					cookies.Clear(w, kind)
					continue
				}
				if hasSession {
					// Keep messages queued for the visitor before they were recognised.
					identity.Flashes = sessions.PopFlashes(current.Token)
				}
				s, err := sessions.Create(identity)
				if err != nil {
					slog.Error("session_create_failed", "error", err)
					break
				}
				if hasSession {
					sessions.Delete(current.Token)
				}
				SetSessionCookie(w, s.Token, cookies.secure)
				r = r.WithContext(ContextWithSession(r.Context(), s))
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}
