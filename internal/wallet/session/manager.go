package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/keys"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const defaultTeardownTimeout = 10 * time.Second

var (
	ErrNilSession       = errors.New("session is nil")
	ErrUnexpectedSecret = errors.New("only local-secret sessions carry a secret")
	ErrIdentityMismatch = walleterrors.New(walleterrors.CodeInvalidIdentity, "identity does not match the secret")
	ErrNotLocalSession  = walleterrors.New(walleterrors.CodeUnsupportedBackend, "active session is not a local-secret session")
	ErrAccountIndex     = errors.New("account index is only valid for non-negative extension-bridge accounts")
	errMissingIdentity  = walleterrors.New(walleterrors.CodeInvalidIdentity, "session has no identity")
)

// Option configures a Manager.
type Option func(*manager)

// WithTeardown sets the backend released on disconnect of a remote-pairing session.
func WithTeardown(t Teardown) Option {
	return func(m *manager) {
		m.teardown = t
	}
}

// WithTeardownTimeout bounds the detached teardown call.
func WithTeardownTimeout(d time.Duration) Option {
	return func(m *manager) {
		if d > 0 {
			m.teardownTimeout = d
		}
	}
}

type manager struct {
	store           Store
	teardown        Teardown
	teardownTimeout time.Duration

	mu        sync.RWMutex
	active    *Session
	connected atomic.Bool
	teardowns sync.WaitGroup

	listenersMu sync.RWMutex
	listeners   []func(connected bool)
}

// NewManager creates a new session Manager backed by store
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager(store Store, opts ...Option) Manager {
	m := &manager{
		store:           store,
		teardownTimeout: defaultTeardownTimeout,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *manager) Connect(ctx context.Context, sess *Session) error {
	log := util.LogFromContext(ctx)

	next, err := validate(sess)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if err := m.store.Save(ctx, next.Record()); err != nil {
		m.mu.Unlock()
		return errors.Wrap(err, "failed to persist session")
	}
	prev := m.active
	m.active = next
	m.mu.Unlock()

	if prev != nil {
		m.release(ctx, prev, next)
	}

	log.Info().
		Str("backend", next.Backend.String()).
		Str("identity", next.Identity.String()).
		Msg("Session connected")

	m.setConnected(true)
	return nil
}

func validate(sess *Session) (*Session, error) {
	if sess == nil {
		return nil, ErrNilSession
	}

	if !sess.Backend.Valid() {
		_, err := ParseBackend(string(sess.Backend))
		return nil, err
	}

	if sess.AccountIndex < 0 || (sess.AccountIndex != 0 && sess.Backend != BackendExtensionBridge) {
		return nil, ErrAccountIndex
	}

	next := *sess

	if sess.Backend != BackendLocalSecret {
		if sess.Secret != nil {
			return nil, ErrUnexpectedSecret
		}
		if sess.Identity.IsZero() {
			return nil, errMissingIdentity
		}
		return &next, nil
	}

	if sess.Secret == nil || sess.Secret.IsCleared() {
		return nil, walleterrors.ErrMissingSecret
	}

	derived, err := deriveIdentity(sess.Secret)
	if err != nil {
		return nil, err
	}

	switch {
	case sess.Identity.IsZero():
		next.Identity = derived
	case !sess.Identity.Equal(derived):
		return nil, ErrIdentityMismatch
	}

	return &next, nil
}

func deriveIdentity(secret *seed.Seed) (identity.Identity, error) {
	kp, err := keys.FromSeed(secret)
	if err != nil {
		return identity.Identity{}, err
	}
	defer kp.Clear()

	return kp.Identity(), nil
}

func (m *manager) Disconnect(ctx context.Context) error {
	log := util.LogFromContext(ctx)

	m.mu.Lock()
	prev := m.active
	m.active = nil
	clearErr := m.store.Clear(ctx)
	m.mu.Unlock()

	m.setConnected(false)

	if prev == nil {
		return errors.Wrap(clearErr, "failed to clear session record")
	}

	m.release(ctx, prev, nil)

	log.Info().
		Str("backend", prev.Backend.String()).
		Str("identity", prev.Identity.String()).
		Msg("Session disconnected")

	return errors.Wrap(clearErr, "failed to clear session record")
}

// release wipes the secret of a session that is no longer active and tears
// down its pairing, unless next keeps using them.
func (m *manager) release(ctx context.Context, prev *Session, next *Session) {
	if prev.Secret != nil && (next == nil || next.Secret != prev.Secret) {
		prev.Secret.Clear()
	}

	// a new remote-pairing session already owns the relay topic
	if prev.Backend == BackendRemotePairing && m.teardown != nil && (next == nil || next.Backend != BackendRemotePairing) {
		m.startTeardown(ctx, prev.Identity)
	}
}

// startTeardown releases the relay pairing in the background; failures are logged only.
func (m *manager) startTeardown(ctx context.Context, id identity.Identity) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.teardownTimeout)
	log := util.LogFromContext(ctx).With().Str("identity", id.String()).Logger()

	m.teardowns.Add(1)
	go func() {
		defer m.teardowns.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Pairing teardown panicked")
			}
		}()

		if err := m.teardown.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to tear down pairing, ignoring")
			return
		}

		log.Debug().Msg("Pairing torn down")
	}()
}

func (m *manager) Restore(ctx context.Context) (*Session, error) {
	log := util.LogFromContext(ctx)

	record, err := m.store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable session record")
		return nil, m.discard(ctx)
	}

	if record == nil {
		return nil, nil //nolint:nilnil // no persisted session
	}

	backend, err := ParseBackend(record.ConnectType)
	if err != nil {
		log.Warn().Err(err).Str("connectType", record.ConnectType).Msg("Discarding session record with unknown backend")
		return nil, m.discard(ctx)
	}

	id, err := identity.Parse(record.PublicKey)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding session record with malformed identity")
		return nil, m.discard(ctx)
	}

	sess := &Session{
		Backend:  backend,
		Identity: id,
		Alias:    record.Alias,
	}
	if backend == BackendExtensionBridge && record.AccountIndex > 0 {
		sess.AccountIndex = record.AccountIndex
	}

	m.mu.Lock()
	m.active = sess
	m.mu.Unlock()

	m.setConnected(true)

	log.Info().
		Str("backend", backend.String()).
		Str("identity", id.String()).
		Bool("locked", sess.Locked()).
		Msg("Session restored")

	copied := *sess
	return &copied, nil
}

func (m *manager) discard(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return errors.Wrap(err, "failed to clear invalid session record")
	}

	return nil
}

func (m *manager) Unlock(ctx context.Context, secret *seed.Seed) error {
	if secret == nil || secret.IsCleared() {
		return walleterrors.ErrMissingSecret
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return walleterrors.ErrNotConnected
	}

	if m.active.Backend != BackendLocalSecret {
		return ErrNotLocalSession
	}

	derived, err := deriveIdentity(secret)
	if err != nil {
		return err
	}

	if !derived.Equal(m.active.Identity) {
		return ErrIdentityMismatch
	}

	unlocked := *m.active
	unlocked.Secret = secret
	m.active = &unlocked

	util.LogFromContext(ctx).Info().Str("identity", derived.String()).Msg("Session unlocked")

	return nil
}

func (m *manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.teardowns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "pairing teardown still running")
	}
}

func (m *manager) Active() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == nil {
		return nil
	}

	copied := *m.active
	return &copied
}

func (m *manager) Connected() bool {
	return m.connected.Load()
}

func (m *manager) OnChange(fn func(connected bool)) {
	if fn == nil {
		return
	}

	m.listenersMu.Lock()
	m.listeners = append(m.listeners, fn)
	m.listenersMu.Unlock()
}

func (m *manager) setConnected(connected bool) {
	m.connected.Store(connected)

	m.listenersMu.RLock()
	listeners := append([]func(bool){}, m.listeners...)
	m.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(connected)
	}

	log.Debug().Bool("connected", connected).Msg("Connected flag updated")
}
