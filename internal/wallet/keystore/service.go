// Package keystore keeps a passphrase-encrypted copy of the local seed on disk.
package keystore

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/keys"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// Filename is the keystore file inside the data directory.
const Filename = "keystore.json"

var (
	ErrKeystoreExists    = errors.New("keystore already exists")
	ErrNoKeystore        = errors.New("no keystore")
	ErrInvalidPassphrase = walleterrors.New(walleterrors.CodeMalformedSecret, "invalid passphrase")
)

// Service provides keystore encryption and decryption functionality
type Service interface {
	// Create encrypts secret under passphrase and writes the keystore.
	Create(ctx context.Context, secret *seed.Seed, passphrase string) (*Keystore, error)

	// Unlock decrypts the stored seed.
	Unlock(ctx context.Context, passphrase string) (*seed.Seed, error)

	// Get reads the keystore without decrypting it.
	Get(ctx context.Context) (*Keystore, error)

	// Exists checks if a keystore exists
	Exists(ctx context.Context) (bool, error)

	// Remove deletes the keystore file.
	Remove(ctx context.Context) error
}

type service struct {
	path   string
	params *ScryptParams

	mu sync.Mutex
}

// NewService creates a keystore service rooted at dir. params nil means DefaultScryptParams.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(dir string, params *ScryptParams) Service {
	if params == nil {
		params = DefaultScryptParams()
	}

	return &service{
		path:   filepath.Join(dir, Filename),
		params: params,
	}
}

func (s *service) Create(ctx context.Context, secret *seed.Seed, passphrase string) (*Keystore, error) {
	log := util.LogFromContext(ctx)

	if passphrase == "" {
		return nil, errors.New("passphrase must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}
	if exists {
		return nil, ErrKeystoreExists
	}

	kp, err := keys.FromSeed(secret)
	if err != nil {
		return nil, err
	}
	id := kp.Identity()
	kp.Clear()

	letters := []byte(secret.Reveal())
	defer wipe(letters)

	keystoreJSON, err := encryptSeed(letters, passphrase, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt seed")
		return nil, errors.Wrap(err, "failed to encrypt seed")
	}
	keystoreJSON.Address = id.String()

	if err := util.WriteJSON(s.path, keystoreJSON, 0o600); err != nil {
		log.Error().Err(err).Msg("Failed to write keystore")
		return nil, errors.Wrap(err, "failed to write keystore")
	}

	log.Info().Str("identity", id.String()).Msg("Keystore created")

	return &Keystore{Identity: id.String(), JSON: keystoreJSON}, nil
}

func (s *service) Unlock(ctx context.Context, passphrase string) (*seed.Seed, error) {
	ks, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	letters, err := decryptSeed(ks.JSON, passphrase)
	if err != nil {
		if errors.Is(err, ErrInvalidPassphrase) {
			return nil, ErrInvalidPassphrase
		}
		util.LogFromContext(ctx).Error().Err(err).Msg("Failed to decrypt keystore")
		return nil, errors.Wrap(err, "failed to decrypt keystore")
	}
	defer wipe(letters)

	secret, err := seed.Parse(string(letters))
	if err != nil {
		return nil, errors.Wrap(err, "keystore holds an invalid seed")
	}

	return secret, nil
}

func (s *service) Get(_ context.Context) (*Keystore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keystoreJSON KeystoreJSON
	found, err := util.ReadJSON(s.path, &keystoreJSON)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keystore")
	}
	if !found {
		return nil, ErrNoKeystore
	}

	return &Keystore{Identity: keystoreJSON.Address, JSON: &keystoreJSON}, nil
}

func (s *service) Exists(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exists()
}

func (s *service) exists() (bool, error) {
	var probe struct{}
	return util.ReadJSON(s.path, &probe)
}

func (s *service) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return util.RemoveFile(s.path)
}
