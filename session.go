package authclient

import (
	"time"
)

const (
	storeKeyToken = "auth.token"
	storeKeyEmail = "auth.email"
	storeKeyRole  = "auth.role"
)

// Manager is the sole authority over the three session attributes: token,
// email, and role. All reads and writes go through it; no other component
// touches the backing store directly.
type Manager struct {
	store  SessionStore
	events *eventBroadcaster
	logger Logger
	now    func() time.Time
}

// ManagerOption customizes Manager construction.
type ManagerOption func(*Manager)

// WithManagerLogger overrides the default logger.
func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerClock injects a custom clock (useful for tests).
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// NewManager returns a Manager over the given store. A nil store gets a
// fresh MemoryStore.
func NewManager(store SessionStore, opts ...ManagerOption) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}

	m := &Manager{
		store:  store,
		events: newEventBroadcaster(),
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// SetToken stores the bearer token as-is. No validation is performed;
// callers must supply a well-formed token.
func (m *Manager) SetToken(token string) {
	m.store.Set(storeKeyToken, token)
}

// Token returns the stored token, or the empty string when no session
// exists.
func (m *Manager) Token() string {
	token, _ := m.store.Get(storeKeyToken)
	return token
}

func (m *Manager) SetEmail(email string) {
	m.store.Set(storeKeyEmail, email)
}

// Email is only meaningful while a token is present.
func (m *Manager) Email() string {
	email, _ := m.store.Get(storeKeyEmail)
	return email
}

func (m *Manager) SetRole(role Role) {
	m.store.Set(storeKeyRole, string(role))
}

// Role returns the stored role; RoleNone when absent or unknown.
func (m *Manager) Role() Role {
	raw, ok := m.store.Get(storeKeyRole)
	if !ok {
		return RoleNone
	}
	if role, valid := ParseRole(raw); valid {
		return role
	}
	return RoleNone
}

// IsAuthenticated is a presence check only: true iff a non-empty token is
// stored. It does not check expiry; that is the monitor's job.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// ClearAuth removes all three session keys atomically. Idempotent; safe to
// call when no session exists. Emits nothing; use Logout for the
// broadcasting variant.
func (m *Manager) ClearAuth() {
	m.store.Delete(storeKeyToken, storeKeyEmail, storeKeyRole)
}

// Commit populates the session from fresh credentials and broadcasts a
// login event.
func (m *Manager) Commit(creds Credentials) {
	m.SetToken(creds.Token)
	m.SetEmail(creds.Email)
	m.SetRole(creds.Role)

	m.logger.Debug("session committed for %s as %s", creds.Email, creds.Role)
	m.events.emit(SessionEvent{
		Type:       SessionEventLogin,
		Email:      creds.Email,
		Role:       creds.Role,
		OccurredAt: m.now(),
	})
}

// Logout clears the session and broadcasts a logout event, but only when a
// session actually existed, so forced logout paths fire exactly once.
func (m *Manager) Logout(reason string) {
	had := m.IsAuthenticated()
	email := m.Email()
	role := m.Role()

	m.ClearAuth()

	if !had {
		return
	}

	m.logger.Info("session ended for %s: %s", email, reason)

	var meta map[string]any
	if reason != "" {
		meta = map[string]any{"reason": reason}
	}
	m.events.emit(SessionEvent{
		Type:       SessionEventLogout,
		Email:      email,
		Role:       role,
		OccurredAt: m.now(),
		Metadata:   meta,
	})
}

// Subscribe registers a listener for session events and returns its
// teardown function.
func (m *Manager) Subscribe(l SessionListener) func() {
	return m.events.subscribe(l)
}

// warnExpiry broadcasts a non-destructive expiry warning. The session is
// left untouched.
func (m *Manager) warnExpiry(expiresAt time.Time) {
	m.events.emit(SessionEvent{
		Type:       SessionEventExpiryWarning,
		Email:      m.Email(),
		Role:       m.Role(),
		OccurredAt: m.now(),
		Metadata:   map[string]any{"expires_at": expiresAt},
	})
}
