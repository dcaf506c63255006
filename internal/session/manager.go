// Package session owns the client-side authentication state: a tri-state
// status plus the admin identity, driven by the API client and consumed by
// the route guard and the console pages. The server session cookie is the
// only source of truth; nothing is persisted locally.
package session

import (
	"context"
	"log/slog"
	"sync"

	"propadmin/internal/api"
)

//go:generate mockgen -source=manager.go -destination=mocks/mocks.go -package=mocks AdminAPI,Notifier

// Status is the authentication state. Exactly one value holds at any time;
// it is the single source of truth for rendering decisions.
type Status int

const (
	// StatusLoading means the initial (or a re-issued) server check has not
	// settled yet. The route guard renders a waiting indicator for exactly
	// this window.
	StatusLoading Status = iota
	// StatusAuthenticated means the server confirmed the session cookie and
	// the manager holds the admin identity.
	StatusAuthenticated
	// StatusUnauthenticated means there is no trusted session. Partial
	// sessions (MFA or enrollment pending) stay in this state.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AdminAPI is the slice of the API client the manager depends on.
type AdminAPI interface {
	CheckAuth(ctx context.Context) (*api.Admin, bool)
	Logout(ctx context.Context) error
	SetAuthErrorHandler(api.AuthErrorHandler)
}

// Notifier surfaces user-visible notices outside the normal page flow,
// the console's equivalent of the SPA's toasts.
type Notifier interface {
	Error(msg string)
	Info(msg string)
}

type noopNotifier struct{}

func (noopNotifier) Error(string) {}
func (noopNotifier) Info(string)  {}

// Snapshot is an immutable view of the session state. The admin pointer is
// replaced wholesale on every transition, never field-mutated, so handing
// it out is safe.
type Snapshot struct {
	Status Status
	Admin  *api.Admin
}

// IsLoading reports whether the state has not settled yet.
func (s Snapshot) IsLoading() bool { return s.Status == StatusLoading }

// IsAuthenticated reports whether a full session is established.
func (s Snapshot) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

// RoleName returns the admin's role name, or "" when unauthenticated.
func (s Snapshot) RoleName() string {
	if s.Admin == nil {
		return ""
	}
	return s.Admin.Role.Name
}

// RoleLevel returns the admin's numeric role level, or 0 when unauthenticated.
func (s Snapshot) RoleLevel() int {
	if s.Admin == nil {
		return 0
	}
	return s.Admin.Role.Level
}

// Permissions returns the additional discrete permissions, never nil.
func (s Snapshot) Permissions() []string {
	if s.Admin == nil {
		return []string{}
	}
	perms := s.Admin.AdditionalPermissions
	if perms == nil {
		return []string{}
	}
	return perms
}

// Manager is the session state machine. Transitions:
//
//	Loading → {Authenticated, Unauthenticated}   (check settles)
//	Authenticated → Unauthenticated              (logout, injected 401)
//	Unauthenticated → Loading                    (explicit re-check)
//
// All methods are safe for concurrent use.
type Manager struct {
	api      AdminAPI
	logger   *slog.Logger
	notifier Notifier

	mu         sync.Mutex
	status     Status
	admin      *api.Admin
	generation uint64
	onChange   func(Snapshot)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNotifier sets the user-visible notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// New creates a Manager in the Loading state. Call Start to register the
// auth-error handler and issue the first check.
func New(client AdminAPI, opts ...Option) *Manager {
	m := &Manager{
		api:      client,
		logger:   slog.New(slog.DiscardHandler),
		notifier: noopNotifier{},
		status:   StatusLoading,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start registers the manager as the API client's auth-error consumer and
// runs the initial CheckAuth. The cookie is the only trusted credential, so
// the first network call is always this check.
func (m *Manager) Start(ctx context.Context) bool {
	m.api.SetAuthErrorHandler(m.HandleAuthError)
	return m.CheckAuth(ctx)
}

// Close unregisters the auth-error handler so the client holds no dangling
// reference to the manager.
func (m *Manager) Close() {
	m.api.SetAuthErrorHandler(nil)
}

/// CheckAuth verifies the session with the server. It never returns an error:
// the boolean says whether the server confirmed a session. Each call bumps a
// generation counter; a response that was superseded by a newer check (or by
// a login/logout transition) is discarded instead of racing.
func (m *Manager) CheckAuth(ctx context.Context) bool {
	m.mu.Lock()
	m.status = StatusLoading
	m.admin = nil
	m.generation++
	gen := m.generation
	m.mu.Unlock()
	m.notifyChange()

	admin, ok := m.api.CheckAuth(ctx)

	m.mu.Lock()
	if gen != m.generation {
		// A newer transition already owns the state.
		m.mu.Unlock()
		return ok
	}
	if ok && admin != nil {
		m.status = StatusAuthenticated
		m.admin = admin
	} else {
		ok = false
		m.status = StatusUnauthenticated
		m.admin = nil
	}
	m.mu.Unlock()
	m.notifyChange()

	m.logger.DebugContext(ctx, "auth check settled", "authenticated", ok)
	return ok
}

// Login commits full authentication. With an identity supplied (the normal
/// path: the login or MFA verify response already carried the profile) the
// session is committed directly without another round trip. With nil it
// delegates to CheckAuth.
//
/// Hard precondition on callers: never call Login while the login outcome is
// OutcomeMFARequired or OutcomeMFASetupRequired. A partial session must not
// be marked fully trusted.
func (m *Manager) Login(ctx context.Context, admin *api.Admin) bool {
	if admin == nil {
		return m.CheckAuth(ctx)
	}

	m.mu.Lock()
	m.generation++
	m.status = StatusAuthenticated
	m.admin = admin
	m.mu.Unlock()
	m.notifyChange()
	return true
}

/// Logout drops the session. The server call is best-effort: its failure is
// logged, never surfaced, and local state clears unconditionally.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.WarnContext(ctx, "server logout failed, clearing local session anyway", "error", err)
	}

	m.mu.Lock()
	m.generation++
	m.status = StatusUnauthenticated
	m.admin = nil
	m.mu.Unlock()
	m.notifyChange()
}

// HandleAuthError is the registered consumer for the API client's 401/403
// dispatches. Unauthorized invalidates the whole session; Forbidden means
// one action lacked privilege and the session stays valid.
func (m *Manager) HandleAuthError(authErr api.AuthError) {
	switch authErr.Kind {
	case api.AuthErrorUnauthorized:
		m.mu.Lock()
		m.generation++
		m.status = StatusUnauthenticated
		m.admin = nil
		m.mu.Unlock()
		m.notifyChange()
		m.notifier.Error(authErr.Message)

	case api.AuthErrorForbidden:
		m.notifier.Error(authErr.Message)
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Status: m.status, Admin: m.admin}
}

// IsLoading reports whether the state has not settled yet.
func (m *Manager) IsLoading() bool { return m.Snapshot().IsLoading() }

// IsAuthenticated reports whether a full session is established.
func (m *Manager) IsAuthenticated() bool { return m.Snapshot().IsAuthenticated() }

// Admin returns the authenticated identity, nil otherwise.
func (m *Manager) Admin() *api.Admin { return m.Snapshot().Admin }

// OnChange registers the state-change listener. One listener is supported
// (the console root model); registering again replaces it, nil clears it.
func (m *Manager) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Manager) notifyChange() {
	m.mu.Lock()
	fn := m.onChange
	snap := Snapshot{Status: m.status, Admin: m.admin}
	m.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
