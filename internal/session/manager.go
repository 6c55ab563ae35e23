// Package session implements the client-side session lifecycle: login,
// registration, logout, profile updates, and startup restoration, with a
// snapshot subscription for UI layers and consumption of the
// session-invalidated broadcast published by the refresh coordinator.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/careconnect/careconnect-go/internal/api"
	"github.com/careconnect/careconnect-go/internal/broadcast"
	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/errors"
	"github.com/careconnect/careconnect-go/internal/observability/statsd"
	"github.com/careconnect/careconnect-go/internal/ports"
)

// State is the lifecycle phase of the session.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Snapshot is the observable session state delivered on every mutation.
// User is a copy; receivers may hold it without locking.
type Snapshot struct {
	State State
	User  *domainauth.UserRecord
	Demo  bool
}

// APIClient is the slice of the HTTP client the manager needs.
type APIClient interface {
	Request(ctx context.Context, method, path string, body any) (*api.Envelope, error)
}

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	profilePath  = "/users/me"
)

// ErrNotAuthenticated is returned by operations that require a live session.
var ErrNotAuthenticated = errors.AuthRejected("no active session")

// authResponse is the payload under data on login and register.
type authResponse struct {
	Token        string                `json:"token"`
	RefreshToken string                `json:"refreshToken"`
	User         domainauth.UserRecord `json:"user"`
}

// Options groups dependencies for Manager.
type Options struct {
	Store  ports.CredentialStore
	Client APIClient

	// Bus carries the session-invalidated signal from the refresh
	// coordinator. Optional; without it invalidations are not consumed.
	Bus *broadcast.Bus

	Logger  *slog.Logger
	Metrics statsd.Sink
}

// Manager owns the in-memory session state. Construct one per process with
// NewManager and share it; all methods are safe for concurrent use.
type Manager struct {
	store   ports.CredentialStore
	client  APIClient
	bus     *broadcast.Bus
	logger  *slog.Logger
	metrics statsd.Sink

	mu    sync.Mutex
	state State
	user  *domainauth.UserRecord
	demo  bool

	subs   map[int]chan Snapshot
	nextID int

	unsubscribe func()
	closeOnce   sync.Once
	done        chan struct{}
}

// NewManager constructs a Manager in the Uninitialized state.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.Internal("credential store is required")
	}
	if opts.Client == nil {
		return nil, errors.Internal("api client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var metrics statsd.Sink = opts.Metrics
	if metrics == nil {
		metrics = (*statsd.Client)(nil)
	}

	m := &Manager{
		store:   opts.Store,
		client:  opts.Client,
		bus:     opts.Bus,
		logger:  logger,
		metrics: metrics,
		state:   StateUninitialized,
		subs:    make(map[int]chan Snapshot),
		done:    make(chan struct{}),
	}
	if m.bus != nil {
		ch, unsub := m.bus.Subscribe()
		m.unsubscribe = unsub
		go m.consumeInvalidations(ch)
	}
	return m, nil
}

// Init restores the session from the credential store: a stored complete
// token pair with a parseable user snapshot yields Authenticated, anything
// else clears the store and yields Unauthenticated. Safe to call again after
// logout; each call re-reads the store.
func (m *Manager) Init(ctx context.Context) (Snapshot, error) {
	m.setLoading()

	creds, err := m.store.Get(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "credential store read failed during init", "error", err)
		return m.commit(StateUnauthenticated, nil, false), nil
	}

	if !creds.Authenticated() {
		// Partial or absent credentials are not a session. Clearing keeps
		// the store and memory telling the same story.
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.WarnContext(ctx, "clear partial credentials during init", "error", clearErr)
		}
		return m.commit(StateUnauthenticated, nil, false), nil
	}

	m.metrics.Count("session.restored", 1, map[string]string{"demo": boolTag(creds.DemoSession())})
	return m.commit(StateAuthenticated, creds.User, creds.DemoSession()), nil
}

// Login authenticates with email and password. A demo identity paired with
// the demo password is synthesized locally and never touches the network;
// everything else goes to the backend. Concurrent logins are last-writer-wins.
func (m *Manager) Login(ctx context.Context, email, password string) (*domainauth.UserRecord, error) {
	if user, ok := domainauth.LookupDemoIdentity(email); ok && password == domainauth.DemoPassword {
		return m.loginDemo(ctx, user)
	}

	env, err := m.client.Request(ctx, http.MethodPost, loginPath, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		if errors.IsNetwork(err) {
			return nil, errors.Network("backend unreachable")
		}
		if errors.IsAuthRejected(err) {
			return nil, errors.AuthRejected(envMessage(env, "invalid credentials"))
		}
		return nil, err
	}

	return m.adoptAuthResponse(ctx, env, false, "login")
}

func (m *Manager) loginDemo(ctx context.Context, user domainauth.UserRecord) (*domainauth.UserRecord, error) {
	tokens, err := domainauth.IssueDemoTokens(user, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "issue demo tokens")
	}
	if err := m.store.Set(ctx, domainauth.Credentials{
		Tokens: &tokens,
		User:   &user,
		Demo:   true,
	}); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "persist demo session")
	}

	m.metrics.Count("session.login", 1, map[string]string{"demo": "true"})
	m.logger.InfoContext(ctx, "demo session started", "email", user.Email, "role", string(user.Role))
	m.commit(StateAuthenticated, &user, true)
	out := user
	return &out, nil
}

// Register creates a backend account and adopts the returned session. Demo
// mode has no registration; the call always goes to the network.
func (m *Manager) Register(ctx context.Context, name, email, password string, role domainauth.Role) (*domainauth.UserRecord, error) {
	if !role.Valid() {
		return nil, errors.ValidationField("role", "unknown role")
	}

	env, err := m.client.Request(ctx, http.MethodPost, registerPath, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	})
	if err != nil {
		if errors.IsNetwork(err) {
			return nil, errors.Network("backend unreachable")
		}
		return nil, err
	}

	return m.adoptAuthResponse(ctx, env, false, "register")
}

// adoptAuthResponse persists and commits the session carried by a successful
// login/register envelope.
func (m *Manager) adoptAuthResponse(ctx context.Context, env *api.Envelope, demo bool, op string) (*domainauth.UserRecord, error) {
	var payload authResponse
	if err := env.DecodeData(&payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServer, "malformed auth response")
	}
	pair := domainauth.TokenPair{AccessToken: payload.Token, RefreshToken: payload.RefreshToken}
	if !pair.Complete() {
		return nil, errors.Server("auth response missing tokens")
	}
	if err := payload.User.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServer, "auth response user invalid")
	}

	user := payload.User
	if err := m.store.Set(ctx, domainauth.Credentials{
		Tokens: &pair,
		User:   &user,
		Demo:   demo,
	}); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "persist session")
	}

	m.metrics.Count("session."+op, 1, map[string]string{"demo": boolTag(demo)})
	m.logger.InfoContext(ctx, "session established", "op", op, "user_id", user.ID, "role", string(user.Role))
	m.commit(StateAuthenticated, &user, demo)
	out := user
	return &out, nil
}

// Logout clears the credential store and drops the in-memory session.
// Idempotent; logging out twice is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "clear credentials")
	}
	m.metrics.Count("session.logout", 1, nil)
	m.commit(StateUnauthenticated, nil, false)
	return nil
}

// UpdateUserInfo merges the non-nil fields of the update into the current
// user's profile, persists the result, and commits it. Returns
// ErrNotAuthenticated without a live session. An empty update returns the
// current user unchanged.
func (m *Manager) UpdateUserInfo(ctx context.Context, upd domainauth.UserUpdate) (*domainauth.UserRecord, error) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil {
		m.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	current := *m.user
	m.mu.Unlock()

	if upd.Empty() {
		out := current
		return &out, nil
	}

	env, err := m.client.Request(ctx, http.MethodPut, profilePath, upd)
	if err != nil {
		if errors.IsNetwork(err) {
			return nil, errors.Network("backend unreachable")
		}
		return nil, err
	}
	_ = env // merged record below is authoritative for local state

	merged := current.Merge(upd)

	creds, err := m.store.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "read credentials for profile update")
	}
	if creds.Tokens == nil {
		// Logged out between the guard and here.
		return nil, ErrNotAuthenticated
	}
	if creds.User == nil || creds.User.ID != current.ID {
		// The store holds a different session now; the merge belongs to the
		// one that ended mid-flight and must not overwrite it.
		return nil, ErrNotAuthenticated
	}
	creds.User = &merged
	if err := m.store.Set(ctx, creds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "persist profile update")
	}

	// Re-check under the lock at the apply point: a concurrent logout or a
	// different login must not be overwritten by a stale merge.
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil || m.user.ID != current.ID {
		m.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	m.user = &merged
	m.notifyLocked()
	m.mu.Unlock()

	m.metrics.Count("session.profile_updated", 1, nil)
	out := merged
	return &out, nil
}

// Current returns the latest snapshot.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Changed subscribes to session snapshots. The channel is buffered and
// coalescing: a slow receiver sees the latest snapshot, not every
// intermediate one. The returned function unsubscribes.
func (m *Manager) Changed() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Snapshot, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			drainAndClose(ch)
		})
	}
}

// Close tears down the invalidation subscription and all snapshot
// subscribers. The manager is unusable afterwards.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.mu.Lock()
		for id, ch := range m.subs {
			delete(m.subs, id)
			drainAndClose(ch)
		}
		m.mu.Unlock()
	})
}

// consumeInvalidations resets the in-memory session when the refresh
// coordinator invalidates it. The coordinator already cleared the store;
// re-clearing here would race a login that happened in between.
func (m *Manager) consumeInvalidations(ch <-chan struct{}) {
	for {
		select {
		case <-m.done:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			m.mu.Lock()
			if m.state == StateAuthenticated {
				m.state = StateUnauthenticated
				m.user = nil
				m.demo = false
				m.notifyLocked()
				m.metrics.Count("session.invalidation_consumed", 1, nil)
				m.logger.Info("session invalidated, state reset")
			}
			m.mu.Unlock()
		}
	}
}

func (m *Manager) setLoading() {
	m.mu.Lock()
	m.state = StateLoading
	m.notifyLocked()
	m.mu.Unlock()
}

// commit replaces the in-memory session and notifies subscribers.
func (m *Manager) commit(state State, user *domainauth.UserRecord, demo bool) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
	m.demo = demo
	m.notifyLocked()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state, Demo: m.demo}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// notifyLocked fans the current snapshot out to subscribers without
// blocking: stale undelivered snapshots are replaced by the newest one.
func (m *Manager) notifyLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func drainAndClose(ch chan Snapshot) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}

func envMessage(env *api.Envelope, fallback string) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	return fallback
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
