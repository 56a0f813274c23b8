package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const (
	identityA = "BZBQFLLBNCXEMGLOBHUVFTLUPLVCPQUASSILFABOFFBCADQSSUPNWLZBQEXK"
	identityB = "DJZMUACQMTYFSEJEYLDBWIGELSFCBMBLPCMBBYFXJHLTGWKHTRRJXTDEHTFL"
)

type teardownFunc func(ctx context.Context) error

func (f teardownFunc) Disconnect(ctx context.Context) error {
	return f(ctx)
}

type failingStore struct {
	session.MemoryStore
}

func (s *failingStore) Save(_ context.Context, _ *session.Record) error {
	return errors.New("disk full")
}

func seedOf(t *testing.T, letter string) *seed.Seed {
	t.Helper()

	s, err := seed.Parse(strings.Repeat(letter, seed.Length))
	require.NoError(t, err)
	return s
}

func TestConnectLocalSecret(t *testing.T) {
	dir := t.TempDir()
	store := session.NewFileStore(dir)
	m := session.NewManager(store)

	err := m.Connect(context.Background(), &session.Session{
		Backend: session.BackendLocalSecret,
		Secret:  seedOf(t, "a"),
		Alias:   "main",
	})
	require.NoError(t, err)

	assert.True(t, m.Connected())
	active := m.Active()
	require.NotNil(t, active)
	assert.Equal(t, identityA, active.Identity.String())
	assert.False(t, active.Locked())

	raw, err := os.ReadFile(filepath.Join(dir, session.RecordFilename))
	require.NoError(t, err)
	assert.JSONEq(t, `{"connectType":"local-secret","publicKey":"`+identityA+`","alias":"main"}`, string(raw))
	assert.NotContains(t, string(raw), strings.Repeat("a", 20))
}

func TestConnectRejectsInvalidSessions(t *testing.T) {
	cases := map[string]struct {
		sess *session.Session
		want error
	}{
		"nil session": {
			sess: nil,
			want: session.ErrNilSession,
		},
		"unknown backend": {
			sess: &session.Session{Backend: "hardware", Identity: identity.MustParse(identityA)},
			want: walleterrors.ErrUnsupportedBackend,
		},
		"local without secret": {
			sess: &session.Session{Backend: session.BackendLocalSecret, Identity: identity.MustParse(identityA)},
			want: walleterrors.ErrMissingSecret,
		},
		"local with foreign identity": {
			sess: &session.Session{Backend: session.BackendLocalSecret, Identity: identity.MustParse(identityB), Secret: seedOf(t, "a")},
			want: session.ErrIdentityMismatch,
		},
		"bridge with secret": {
			sess: &session.Session{Backend: session.BackendExtensionBridge, Identity: identity.MustParse(identityA), Secret: seedOf(t, "a")},
			want: session.ErrUnexpectedSecret,
		},
		"pairing without identity": {
			sess: &session.Session{Backend: session.BackendRemotePairing},
			want: walleterrors.ErrInvalidIdentity,
		},
		"account index on pairing": {
			sess: &session.Session{Backend: session.BackendRemotePairing, Identity: identity.MustParse(identityA), AccountIndex: 1},
			want: session.ErrAccountIndex,
		},
		"negative account index": {
			sess: &session.Session{Backend: session.BackendExtensionBridge, Identity: identity.MustParse(identityA), AccountIndex: -1},
			want: session.ErrAccountIndex,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := session.NewMemoryStore()
			m := session.NewManager(store)

			err := m.Connect(context.Background(), tc.sess)
			require.ErrorIs(t, err, tc.want)

			assert.False(t, m.Connected())
			assert.Nil(t, m.Active())

			record, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, record)
		})
	}
}

func TestConnectFailedPersistKeepsPreviousSession(t *testing.T) {
	m := session.NewManager(&failingStore{})

	err := m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendExtensionBridge,
		Identity: identity.MustParse(identityB),
	})
	require.Error(t, err)
	assert.False(t, m.Connected())
	assert.Nil(t, m.Active())
}

func TestRestoreRoundTrip(t *testing.T) {
	for _, backend := range session.Backends {
		t.Run(backend.String(), func(t *testing.T) {
			dir := t.TempDir()

			sess := &session.Session{
				Backend:  backend,
				Identity: identity.MustParse(identityA),
				Alias:    "restored",
			}
			wantIndex := 0
			switch backend {
			case session.BackendLocalSecret:
				sess.Secret = seedOf(t, "a")
			case session.BackendExtensionBridge:
				sess.AccountIndex = 2
				wantIndex = 2
			}

			require.NoError(t, session.NewManager(session.NewFileStore(dir)).Connect(context.Background(), sess))

			// a fresh manager simulates a process restart
			m := session.NewManager(session.NewFileStore(dir))
			assert.False(t, m.Connected())

			restored, err := m.Restore(context.Background())
			require.NoError(t, err)
			require.NotNil(t, restored)

			assert.Equal(t, backend, restored.Backend)
			assert.Equal(t, identityA, restored.Identity.String())
			assert.Equal(t, "restored", restored.Alias)
			assert.Equal(t, wantIndex, restored.AccountIndex)
			assert.Nil(t, restored.Secret)
			assert.Equal(t, backend == session.BackendLocalSecret, restored.Locked())
			assert.True(t, m.Connected())
		})
	}
}

func TestRestoreWithoutRecord(t *testing.T) {
	m := session.NewManager(session.NewFileStore(t.TempDir()))

	restored, err := m.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, restored)
	assert.False(t, m.Connected())
}

func TestRestoreDiscardsInvalidRecords(t *testing.T) {
	cases := map[string]string{
		"unknown backend":    `{"connectType":"ledger-usb","publicKey":"` + identityA + `"}`,
		"malformed identity": `{"connectType":"extension-bridge","publicKey":"NOTANIDENTITY"}`,
		"bad checksum":       `{"connectType":"remote-pairing","publicKey":"` + identityA[:59] + `A"}`,
		"corrupt json":       `{"connectType":`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, session.RecordFilename)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			m := session.NewManager(session.NewFileStore(dir))
			restored, err := m.Restore(context.Background())
			require.NoError(t, err)
			assert.Nil(t, restored)
			assert.False(t, m.Connected())

			_, err = os.Stat(path)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestDisconnectSurvivesTeardownFailure(t *testing.T) {
	dir := t.TempDir()
	called := make(chan struct{})

	m := session.NewManager(session.NewFileStore(dir), session.WithTeardown(teardownFunc(func(context.Context) error {
		close(called)
		return errors.New("relay unreachable")
	})))

	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendRemotePairing,
		Identity: identity.MustParse(identityB),
	}))

	require.NoError(t, m.Disconnect(context.Background()))

	assert.False(t, m.Connected())
	assert.Nil(t, m.Active())
	_, err := os.Stat(filepath.Join(dir, session.RecordFilename))
	assert.ErrorIs(t, err, os.ErrNotExist)

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("teardown was never attempted")
	}
}

func TestDisconnectDoesNotAwaitTeardown(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	m := session.NewManager(session.NewMemoryStore(), session.WithTeardown(teardownFunc(func(ctx context.Context) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return ctx.Err()
	})))

	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendRemotePairing,
		Identity: identity.MustParse(identityB),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Disconnect(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("disconnect blocked on teardown")
	}

	// cancelling the caller context must not matter for the detached teardown
	cancel()
	assert.False(t, m.Connected())
}

func TestDisconnectSkipsTeardownForOtherBackends(t *testing.T) {
	called := false
	m := session.NewManager(session.NewMemoryStore(), session.WithTeardown(teardownFunc(func(context.Context) error {
		called = true
		return nil
	})))

	secret := seedOf(t, "a")
	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend: session.BackendLocalSecret,
		Secret:  secret,
	}))
	require.NoError(t, m.Disconnect(context.Background()))

	assert.False(t, called)
	assert.True(t, secret.IsCleared())
}

func TestDisconnectWithoutSession(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	require.NoError(t, m.Disconnect(context.Background()))
	assert.False(t, m.Connected())
}

func TestUnlock(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, session.NewManager(session.NewFileStore(dir)).Connect(context.Background(), &session.Session{
		Backend: session.BackendLocalSecret,
		Secret:  seedOf(t, "a"),
	}))

	m := session.NewManager(session.NewFileStore(dir))
	_, err := m.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, m.Active().Locked())

	err = m.Unlock(context.Background(), seedOf(t, "b"))
	require.ErrorIs(t, err, session.ErrIdentityMismatch)
	assert.True(t, m.Active().Locked())

	require.NoError(t, m.Unlock(context.Background(), seedOf(t, "a")))
	assert.False(t, m.Active().Locked())
}

func TestUnlockRequiresLocalSession(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	require.ErrorIs(t, m.Unlock(context.Background(), seedOf(t, "a")), walleterrors.ErrNotConnected)

	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendExtensionBridge,
		Identity: identity.MustParse(identityA),
	}))
	require.ErrorIs(t, m.Unlock(context.Background(), seedOf(t, "a")), session.ErrNotLocalSession)
}

func TestOnChange(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())

	var events []bool
	m.OnChange(func(connected bool) { events = append(events, connected) })

	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendExtensionBridge,
		Identity: identity.MustParse(identityA),
	}))
	require.NoError(t, m.Disconnect(context.Background()))

	assert.Equal(t, []bool{true, false}, events)
}

func TestActiveReturnsCopy(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendExtensionBridge,
		Identity: identity.MustParse(identityA),
		Alias:    "original",
	}))

	m.Active().Alias = "changed"
	assert.Equal(t, "original", m.Active().Alias)
}

func TestConnectReplacingPairingTearsItDown(t *testing.T) {
	calls := make(chan struct{}, 2)
	m := session.NewManager(session.NewMemoryStore(), session.WithTeardown(teardownFunc(func(context.Context) error {
		calls <- struct{}{}
		return nil
	})))

	pairingSession := func() *session.Session {
		return &session.Session{Backend: session.BackendRemotePairing, Identity: identity.MustParse(identityB)}
	}

	require.NoError(t, m.Connect(context.Background(), pairingSession()))

	// the new pairing session owns the relay topic
	require.NoError(t, m.Connect(context.Background(), pairingSession()))
	require.NoError(t, m.Wait(context.Background()))
	assert.Empty(t, calls)

	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendExtensionBridge,
		Identity: identity.MustParse(identityA),
	}))
	require.NoError(t, m.Wait(context.Background()))
	assert.Len(t, calls, 1)
	assert.Equal(t, session.BackendExtensionBridge, m.Active().Backend)
}

func TestConnectReplacingLocalSessionClearsSecret(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())

	old := seedOf(t, "a")
	require.NoError(t, m.Connect(context.Background(), &session.Session{Backend: session.BackendLocalSecret, Secret: old}))

	// reconnecting with the same secret keeps it
	require.NoError(t, m.Connect(context.Background(), &session.Session{Backend: session.BackendLocalSecret, Secret: old, Alias: "again"}))
	assert.False(t, old.IsCleared())

	next := seedOf(t, "b")
	require.NoError(t, m.Connect(context.Background(), &session.Session{Backend: session.BackendLocalSecret, Secret: next}))
	assert.True(t, old.IsCleared())
	assert.False(t, next.IsCleared())
	assert.False(t, m.Active().Locked())
}

func TestWaitDrainsTeardown(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})

	m := session.NewManager(session.NewMemoryStore(), session.WithTeardown(teardownFunc(func(ctx context.Context) error {
		defer close(finished)
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})))

	require.NoError(t, m.Connect(context.Background(), &session.Session{
		Backend:  session.BackendRemotePairing,
		Identity: identity.MustParse(identityB),
	}))
	require.NoError(t, m.Disconnect(context.Background()))

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, m.Wait(short))

	close(release)
	require.NoError(t, m.Wait(context.Background()))

	select {
	case <-finished:
	default:
		t.Fatal("Wait returned before the teardown finished")
	}
}

func TestDisconnectWipesSecretOfHeldSession(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore())
	require.NoError(t, m.Connect(context.Background(), &session.Session{Backend: session.BackendLocalSecret, Secret: seedOf(t, "a")}))

	held := m.Active()
	require.False(t, held.Locked())

	require.NoError(t, m.Disconnect(context.Background()))
	assert.True(t, held.Locked())
}
