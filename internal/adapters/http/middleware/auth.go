package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gymportal/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL bounds the lifetime of a server-side session.
const SessionTTL = 24 * time.Hour

// AnonymousSessionTTL bounds sessions that only carry flashes for visitors
// who are not logged in.
const AnonymousSessionTTL = time.Hour

// Flash levels.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a message shown on exactly one subsequent render.
type Flash struct {
	Level   string
	Message string
}

// Session is the server-side state behind the session cookie.
// An anonymous session (empty AccountID) exists only to carry flashes.
type Session struct {
	Token     string
	AccountID string
	Kind      account.Kind
	Name      string
	Email     string
	Role      string
	Branch    string
	CreatedAt time.Time
	Flashes   []Flash
}

// IsAuthenticated reports whether the session belongs to a logged-in account.
func (s Session) IsAuthenticated() bool {
	return s.AccountID != ""
}

// SessionStore maps session tokens to session records.
type SessionStore interface {
	// Create stores s under a fresh token and returns the stored session.
	Create(s Session) (Session, error)
	Get(token string) (Session, bool)
	// Update replaces the identity fields of an existing session, keeping its flashes.
	Update(s Session) bool
	Delete(token string)
	// AddFlash queues a message on an existing session.
	AddFlash(token string, f Flash) bool
	// PopFlashes returns and clears the queued messages.
	PopFlashes(token string) []Flash
}

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create stores a new session and returns it with its token set.
// POST: Get(result.Token) succeeds until its TTL elapses or Delete is called
func (ss *MemorySessionStore) Create(s Session) (Session, error) {
	token, err := account.GenerateToken()
	if err != nil {
		return Session{}, err
	}
	s.Token = token
	s.CreatedAt = ss.now()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = s
	return s, nil
}

// Get retrieves a live session by token.
func (ss *MemorySessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	s, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if s.expired(ss.now()) {
		ss.Delete(token)
		return Session{}, false
	}
	return s, true
}

func (s Session) expired(now time.Time) bool {
	ttl := SessionTTL
	if !s.IsAuthenticated() {
		ttl = AnonymousSessionTTL
	}
	return now.Sub(s.CreatedAt) > ttl
}

// Sweep drops every expired session and returns how many it removed.
// Sessions are otherwise only dropped when looked up again.
func (ss *MemorySessionStore) Sweep() int {
	now := ss.now()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	n := 0
	for token, s := range ss.sessions {
		if s.expired(now) {
			delete(ss.sessions, token)
			n++
		}
	}
	return n
}

// Len reports how many sessions are held, live or not yet swept.
func (ss *MemorySessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Update replaces the session identity in place.
// PRE: s.Token exists in the store
func (ss *MemorySessionStore) Update(s Session) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	old, ok := ss.sessions[s.Token]
	if !ok {
		return false
	}
	s.CreatedAt = old.CreatedAt
	s.Flashes = old.Flashes
	ss.sessions[s.Token] = s
	return true
}

// Delete removes a session by token.
func (ss *MemorySessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// AddFlash appends f to the session's queue.
func (ss *MemorySessionStore) AddFlash(token string, f Flash) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.sessions[token]
	if !ok {
		return false
	}
	s.Flashes = append(s.Flashes, f)
	ss.sessions[token] = s
	return true
}

// PopFlashes drains the session's queue.
// POST: A second call returns nothing until AddFlash is called again
func (ss *MemorySessionStore) PopFlashes(token string) []Flash {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.sessions[token]
	if !ok || len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.Flashes
	s.Flashes = nil
	ss.sessions[token] = s
	return flashes
}

// SessionCookieName names the cookie carrying the session token.
const SessionCookieName = "gym_session"

// Auth returns middleware that loads the session named by the cookie into the context.
// It does NOT block unauthenticated requests; use RequireKind for that.
func Auth(sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if s, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireKind blocks requests without an authenticated session of kind,
// redirecting them to loginPath.
func RequireKind(kind account.Kind, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSessionFromContext(r.Context())
			if !ok || !s.IsAuthenticated() || s.Kind != kind {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}

// ContextWithSession returns a context carrying s.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
