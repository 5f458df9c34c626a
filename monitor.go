package authclient

import (
	"context"
	"sync"
	"time"
)

// Monitor periodically checks the session token while a session is active.
// An expired token forces a logout (broadcast exactly once) and navigates
// to the site root; a token inside the warning window emits a
// non-destructive expiry warning. The first check runs synchronously on
// Start.
type Monitor struct {
	session       *Manager
	interval      time.Duration
	warnThreshold time.Duration
	navigate      func(path string)
	logger        Logger
	now           func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
}

// MonitorOption customizes Monitor construction.
type MonitorOption func(*Monitor)

// WithMonitorClock injects a custom clock (useful for tests).
func WithMonitorClock(clock func() time.Time) MonitorOption {
	return func(m *Monitor) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithMonitorLogger overrides the default logger.
func WithMonitorLogger(logger Logger) MonitorOption {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMonitorNavigator sets the callback invoked with the site root after a
// forced logout.
func WithMonitorNavigator(navigate func(path string)) MonitorOption {
	return func(m *Monitor) {
		if navigate != nil {
			m.navigate = navigate
		}
	}
}

// NewMonitor builds a monitor over the session. Interval and warning
// threshold come from cfg (minutes); zero values fall back to 2 and 30.
func NewMonitor(session *Manager, cfg Config, opts ...MonitorOption) *Monitor {
	interval := 2 * time.Minute
	if cfg != nil && cfg.GetMonitorInterval() > 0 {
		interval = time.Duration(cfg.GetMonitorInterval()) * time.Minute
	}

	warnThreshold := 30 * time.Minute
	if cfg != nil && cfg.GetExpiryWarningThreshold() > 0 {
		warnThreshold = time.Duration(cfg.GetExpiryWarningThreshold()) * time.Minute
	}

	m := &Monitor{
		session:       session,
		interval:      interval,
		warnThreshold: warnThreshold,
		navigate:      func(string) {},
		logger:        defLogger{},
		now:           time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Start activates the monitor: one immediate check, then one per interval.
// Starting an already-running monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	if !m.check() {
		m.Stop()
		return
	}

	go m.run(ctx)
}

// Stop deactivates the monitor. Idempotent; the periodic goroutine and its
// ticker are torn down, so repeated Start/Stop cycles leak nothing.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Bind subscribes the monitor to session events: it starts on login and
// stops on logout. Returns the subscription teardown.
func (m *Monitor) Bind() func() {
	return m.session.Subscribe(SessionListenerFunc(func(event SessionEvent) {
		switch event.Type {
		case SessionEventLogin:
			m.Start()
		case SessionEventLogout:
			m.Stop()
		}
	}))
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.check() {
				m.Stop()
				return
			}
		}
	}
}

// check inspects the current token. It returns false once the session is no
// longer active and the monitor should stand down.
func (m *Monitor) check() bool {
	token := m.session.Token()
	if token == "" {
		return false
	}

	now := m.now()

	if IsExpiredAt(token, now) {
		m.logger.Info("session token expired for %s, signing out", m.session.Email())
		m.session.Logout("token expired")
		m.navigate("/")
		return false
	}

	if IsExpiringSoonAt(token, m.warnThreshold, now) {
		var expiresAt time.Time
		if claims, err := DecodeToken(token); err == nil {
			expiresAt = claims.Expires()
		}
		m.session.warnExpiry(expiresAt)
	}

	return true
}
