package orchestrators

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"gymportal/internal/domain/account"
	"gymportal/internal/domain/audit"
	"gymportal/internal/domain/branch"
	"gymportal/internal/domain/outbox"
	"gymportal/internal/domain/passwordreset"
)

// --- Account store ---

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]account.Account
	saveErr  error
	// createErr is returned by Create before any uniqueness check.
	createErr error
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	s := &mockAccountStore{accounts: map[string]account.Account{}}
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, sql.ErrNoRows
}

func (s *mockAccountStore) Create(_ context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return account.ErrEmailTaken
		}
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *mockAccountStore) Save(_ context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if _, ok := s.accounts[a.ID]; !ok {
		return sql.ErrNoRows
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *mockAccountStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts), nil
}

func (s *mockAccountStore) get(id string) account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id]
}

// --- Branch store ---

type mockBranchStore struct {
	branches map[string]branch.Branch
}

func newMockBranchStore(names ...string) *mockBranchStore {
	s := &mockBranchStore{branches: map[string]branch.Branch{}}
	for _, n := range names {
		s.branches[n] = branch.Branch{Name: n}
	}
	return s
}

func (s *mockBranchStore) GetByName(_ context.Context, name string) (branch.Branch, error) {
	b, ok := s.branches[name]
	if !ok {
		return branch.Branch{}, sql.ErrNoRows
	}
	return b, nil
}

func (s *mockBranchStore) Count(_ context.Context) (int, error) { return len(s.branches), nil }

func (s *mockBranchStore) Save(_ context.Context, b branch.Branch) error {
	s.branches[b.Name] = b
	return nil
}

// --- Password reset store ---

type mockResetStore struct {
	mu       sync.Mutex
	requests map[string]passwordreset.Request
}

func newMockResetStore() *mockResetStore {
	return &mockResetStore{requests: map[string]passwordreset.Request{}}
}

func (s *mockResetStore) Save(_ context.Context, r passwordreset.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = r
	return nil
}

func (s *mockResetStore) GetByTokenHash(_ context.Context, hash string) (passwordreset.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.TokenHash == hash {
			return r, nil
		}
	}
	return passwordreset.Request{}, sql.ErrNoRows
}

func (s *mockResetStore) Consume(_ context.Context, id string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.IsUsed() {
		return false, nil
	}
	r.UsedAt = now
	s.requests[id] = r
	return true, nil
}

func (s *mockResetStore) InvalidateForEmail(_ context.Context, kind account.Kind, email string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.requests {
		if r.Kind == kind && strings.EqualFold(r.Email, email) && !r.IsUsed() {
			r.UsedAt = now
			s.requests[id] = r
			n++
		}
	}
	return n, nil
}

func (s *mockResetStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.requests {
		if r.ExpiresAt.Before(cutoff) {
			delete(s.requests, id)
			n++
		}
	}
	return n, nil
}

func (s *mockResetStore) unused() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if !r.IsUsed() {
			n++
		}
	}
	return n
}

// --- Outbox store ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	order   []string
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: map[string]outbox.Entry{}}
}

func (s *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return outbox.Entry{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.entries[e.ID] = e
	return nil
}

func (s *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []outbox.Entry
	for _, id := range s.order {
		e := s.entries[id]
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *mockOutboxStore) all() []outbox.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]outbox.Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// --- Audit + metrics ---

type mockAuditStore struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *mockAuditStore) Save(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *mockAuditStore) actions() []audit.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Action, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}

type mockMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *mockMetrics) AuthEvent(kind, event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[kind+"/"+event]++
}

func (m *mockMetrics) OutboxResult(action, status string) {
	m.AuthEvent(action, status)
}

func (m *mockMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

// --- Helpers ---

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// mustCustomer builds a stored customer with a real bcrypt hash.
func mustCustomer(id, email, password, branchName string) account.Account {
	a := account.Account{
		ID:        id,
		Kind:      account.KindCustomer,
		Email:     email,
		Role:      account.RoleCustomer,
		Branch:    branchName,
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     "555-1111",
		CreatedAt: testNow.Add(-24 * time.Hour),
	}
	if err := a.SetPassword(password); err != nil {
		panic(err)
	}
	return a
}

func mustAdmin(id, email, password, branchName string) account.Account {
	a := account.Account{
		ID:        id,
		Kind:      account.KindAdmin,
		Email:     email,
		Role:      account.RoleAdmin,
		Branch:    branchName,
		Name:      "Pat Admin",
		CreatedAt: testNow.Add(-24 * time.Hour),
	}
	if err := a.SetPassword(password); err != nil {
		panic(err)
	}
	return a
}
