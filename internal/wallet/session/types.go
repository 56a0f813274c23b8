package session

import (
	"context"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// Backend is the mechanism that carries out signing for a session.
type Backend string

const (
	BackendLocalSecret     Backend = "local-secret"
	BackendExtensionBridge Backend = "extension-bridge"
	BackendRemotePairing   Backend = "remote-pairing"
)

// Backends lists every recognized backend.
var Backends = []Backend{BackendLocalSecret, BackendExtensionBridge, BackendRemotePairing}

func (b Backend) Valid() bool {
	switch b {
	case BackendLocalSecret, BackendExtensionBridge, BackendRemotePairing:
		return true
	default:
		return false
	}
}

func (b Backend) String() string {
	return string(b)
}

// ParseBackend accepts the persisted connect type tags.
func ParseBackend(s string) (Backend, error) {
	b := Backend(s)
	if !b.Valid() {
		return "", walleterrors.Wrap(errors.Errorf("backend %q", s), walleterrors.CodeUnsupportedBackend, "unsupported signing backend")
	}

	return b, nil
}

// Session is the single active identity of the process. Secret is set only
// for BackendLocalSecret, and may be missing after a restore until Unlock.
type Session struct {
	Backend  Backend
	Identity identity.Identity
	Secret   *seed.Seed
	Alias    string

	// AccountIndex is the extension account Identity was read from. Only
	// meaningful for BackendExtensionBridge.
	AccountIndex int
}

// Locked reports whether a local-secret session is waiting for its secret.
func (s *Session) Locked() bool {
	return s.Backend == BackendLocalSecret && (s.Secret == nil || s.Secret.IsCleared())
}

// Record is the persisted form of a session. It never carries the secret.
type Record struct {
	ConnectType  string `json:"connectType"`
	PublicKey    string `json:"publicKey"`
	Alias        string `json:"alias,omitempty"`
	AccountIndex int    `json:"accountIndex,omitempty"`
}

func (s *Session) Record() *Record {
	return &Record{
		ConnectType:  string(s.Backend),
		PublicKey:    s.Identity.String(),
		Alias:        s.Alias,
		AccountIndex: s.AccountIndex,
	}
}

// Store persists the session record.
type Store interface {
	// Load returns nil without error when nothing is stored.
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
	Clear(ctx context.Context) error
}

// Teardown releases backend resources held for a session, such as a relay pairing.
type Teardown interface {
	Disconnect(ctx context.Context) error
}

// Manager owns the single active session.
type Manager interface {
	// Connect validates and activates sess, then persists its record. A
	// replaced session is released like on Disconnect.
	Connect(ctx context.Context, sess *Session) error

	// Disconnect clears the active session and its record. The secret of a
	// local-secret session is wiped, so signing still in flight with it fails
	// with MissingSecret. A remote pairing is torn down in the background.
	Disconnect(ctx context.Context) error

	// Wait blocks until background pairing teardowns have finished or ctx ends.
	Wait(ctx context.Context) error

	// Restore reactivates a persisted session at startup. Invalid records are discarded.
	Restore(ctx context.Context) (*Session, error)

	// Unlock supplies the secret of a restored local-secret session.
	Unlock(ctx context.Context, secret *seed.Seed) error

	// Active returns a copy of the active session or nil. The copy shares
	// the manager's Secret.
	Active() *Session

	// Connected reports whether a session is active.
	Connected() bool

	// OnChange registers a listener for the connected flag.
	OnChange(fn func(connected bool))
}
