package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/internal/config"
	"github.com/eventhub/admin-console/internal/errors"
	"github.com/eventhub/admin-console/session"
)

func errNilDep(name string) error {
	return errors.Wrapf(errors.ErrInternal, "auth manager: nil dependency %s", name)
}

// State is a snapshot of the console's authentication state.
// IsAuthenticated holds exactly when User is non-nil. IsLoading is true only
// during initialization or an in-flight login, refresh or logout.
type State struct {
	User                 *session.User
	IsAuthenticated      bool
	IsLoading            bool
	AccessTokenExpiresAt time.Time
}

// LoginResult is the typed outcome of a login attempt. Expected failures
// (rejected credentials, unreachable backend) are values, never errors.
type LoginResult struct {
	Success bool
	Error   string
}

// Deps holds the manager's collaborators, all constructed by the
// composition root.
type Deps struct {
	Store       session.Store
	API         BackendAPI
	Coordinator *Coordinator
	Events      *Broadcaster
}

// Manager owns the process-wide authentication state and the login, logout,
// refresh and initialization operations around it. It is the single writer
// of the state; UI handlers only read snapshots.
type Manager struct {
	deps   Deps
	logger zerolog.Logger

	mode     config.AuthMode
	leadTime time.Duration
	nowFunc  func() time.Time

	mu    sync.RWMutex
	state State

	unsubscribe func()
}

type ManagerOption func(*Manager)

// WithManagerCookieMode restores identity via GET /me instead of the local
// session store.
func WithManagerCookieMode() ManagerOption {
	return func(m *Manager) {
		m.mode = config.AuthModeCookie
	}
}

// WithRefreshLeadTime sets how close to expiry a restored token is still
// trusted without a proactive refresh.
func WithRefreshLeadTime(lead time.Duration) ManagerOption {
	return func(m *Manager) {
		m.leadTime = lead
	}
}

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// NewManager validates dependencies, subscribes to session-expiry broadcasts
// and returns a manager whose state starts as loading until Initialize runs.
func NewManager(deps Deps, logger zerolog.Logger, options ...ManagerOption) (*Manager, error) {
	if deps.Store == nil {
		return nil, errNilDep("Store")
	}
	if deps.API == nil {
		return nil, errNilDep("API")
	}
	if deps.Coordinator == nil {
		return nil, errNilDep("Coordinator")
	}
	if deps.Events == nil {
		return nil, errNilDep("Events")
	}

	m := &Manager{
		deps:     deps,
		logger:   logger.With().Str("component", "auth-manager").Logger(),
		mode:     config.AuthModeBearer,
		leadTime: 5 * time.Minute,
		nowFunc:  time.Now,
		state:    State{IsLoading: true},
	}
	for _, opt := range options {
		opt(m)
	}

	m.unsubscribe = deps.Events.Subscribe(m.handleSessionExpired)
	return m, nil
}

// Close detaches the manager from the broadcaster.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// State returns a copy of the current authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.state
	if m.state.User != nil {
		user := *m.state.User
		s.User = &user
	}
	return s
}

// Login authenticates the operator. Credential rejections and transport
// failures come back as a failed LoginResult with a presentable message;
// state is only touched on success.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	m.setLoading(true)
	defer m.setLoading(false)

	m.logger.Info().Str("email", email).Msg("login attempt")

	sess, err := m.deps.API.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", email).Msg("login failed")
		return LoginResult{Success: false, Error: aggregator.ErrorMessage(err, "Login failed. Check your credentials.")}
	}

	if err := m.deps.Store.Save(ctx, sess); err != nil {
		// The backend session exists; treat persistence loss as survivable
		// and keep the in-memory session for this run.
		m.logger.Error().Err(err).Msg("failed to persist session")
	}

	m.deps.Events.Reset()
	m.setAuthenticated(sess.User, sess.AccessTokenExpiresAt)

	m.logger.Info().Str("email", email).Msg("login successful")
	return LoginResult{Success: true}
}

// Logout invalidates the session server-side, then clears local state
// unconditionally. The returned error reports only the backend call; from
// the operator's point of view logout always succeeds.
func (m *Manager) Logout(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	var sessionID string
	if sess, err := m.deps.Store.Load(ctx); err == nil && sess != nil {
		sessionID = sess.ID
	}

	err := m.deps.API.Logout(ctx, sessionID)
	if err != nil {
		m.logger.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}

	if clearErr := m.deps.Store.Clear(ctx); clearErr != nil {
		m.logger.Error().Err(clearErr).Msg("failed to clear session store")
	}
	m.setUnauthenticated()

	m.logger.Info().Msg("logged out")
	return err
}

// Refresh obtains a fresh access token via the coordinator and syncs state
// with whatever the coordinator left in the store. An absent session only
// clears state after a failed refresh: in cookie mode a successful refresh
// leaves no tokens for the store to read back, and the identity stands.
func (m *Manager) Refresh(ctx context.Context) error {
	err := m.deps.Coordinator.Refresh(ctx)
	if err != nil {
		if sess, loadErr := m.deps.Store.Load(ctx); loadErr == nil && sess == nil {
			// Torn down by the coordinator, or never present.
			m.setUnauthenticated()
		}
		return err
	}

	sess, loadErr := m.deps.Store.Load(ctx)
	if loadErr != nil {
		m.logger.Error().Err(loadErr).Msg("failed to reload session after refresh")
		return nil
	}
	if sess != nil {
		m.mu.Lock()
		m.state.AccessTokenExpiresAt = sess.AccessTokenExpiresAt
		m.mu.Unlock()
	}
	return nil
}

// Initialize restores a previously saved session, refreshing proactively
// when the access token is expired or expiring within the lead time. Any
// restore failure degrades to the unauthenticated state; it never returns
// an error because a fresh login is always available.
func (m *Manager) Initialize(ctx context.Context) {
	defer m.setLoading(false)

	m.logger.Info().Msg("initializing authentication state")

	if m.mode == config.AuthModeCookie {
		m.initializeFromBackend(ctx)
		return
	}

	sess, err := m.deps.Store.Load(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load stored session")
		m.setUnauthenticated()
		return
	}
	if sess == nil {
		m.logger.Info().Msg("no stored session, starting unauthenticated")
		m.setUnauthenticated()
		return
	}

	if err := ValidateTokenFormat(sess.AccessToken); err != nil {
		m.logger.Warn().Err(err).Msg("stored access token is malformed, discarding session")
		if clearErr := m.deps.Store.Clear(ctx); clearErr != nil {
			m.logger.Error().Err(clearErr).Msg("failed to clear session store")
		}
		m.setUnauthenticated()
		return
	}

	m.logger.Info().Str("email", sess.User.Email).Msg("session restored from store")
	m.setAuthenticated(sess.User, sess.AccessTokenExpiresAt)

	if sess.ExpiresWithin(m.leadTime, m.nowFunc()) {
		m.logger.Info().Msg("access token expired or expiring soon, refreshing")
		if err := m.Refresh(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("token refresh failed during initialization")
			if clearErr := m.deps.Store.Clear(ctx); clearErr != nil {
				m.logger.Error().Err(clearErr).Msg("failed to clear session store")
			}
			m.setUnauthenticated()
		}
	}
}

// initializeFromBackend asks the auth service who the current cookies belong
// to; the client cannot read identity out of httpOnly cookies itself.
func (m *Manager) initializeFromBackend(ctx context.Context) {
	me, err := m.deps.API.Me(ctx)
	if err != nil {
		m.logger.Info().Err(err).Msg("no server-side session")
		m.setUnauthenticated()
		return
	}

	m.setAuthenticated(me.User, me.AccessTokenExpiresAt)

	sess := &session.Session{User: me.User, AccessTokenExpiresAt: me.AccessTokenExpiresAt}
	if m.nowFunc().Add(m.leadTime).After(me.AccessTokenExpiresAt) {
		m.logger.Info().Msg("access token expiring soon, refreshing")
		if err := m.Refresh(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("token refresh failed during initialization")
			m.setUnauthenticated()
			return
		}
		return
	}
	if err := m.deps.Store.Save(ctx, sess); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist session snapshot")
	}
}

// handleSessionExpired reacts to a broadcast from the coordinator or
// transport. Teardown of the store already happened at the emitter; only
// the in-memory state is cleared here.
func (m *Manager) handleSessionExpired(reason Reason) {
	m.logger.Warn().Str("reason", string(reason)).Msg("session expired")
	m.setUnauthenticated()
}

func (m *Manager) setAuthenticated(user session.User, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user
	m.state.User = &u
	m.state.IsAuthenticated = true
	m.state.AccessTokenExpiresAt = expiresAt
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = nil
	m.state.IsAuthenticated = false
	m.state.AccessTokenExpiresAt = time.Time{}
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsLoading = loading
}
