package wallet

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/keys"
	"github/qdoge/go-wallet/internal/wallet/keystore"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const minPassphraseLength = 8

var ErrPassphraseMismatch = errors.New("passphrases do not match")

// ConnectLocal activates a local-secret session for secret. With a non-empty
// passphrase the seed is also written to the keystore so the session can be
// unlocked after a restart. The keystore is settled before the session is
// switched, so a failure leaves the previous session in place.
func ConnectLocal(ctx context.Context, manager session.Manager, ks keystore.Service, secret *seed.Seed, alias string, passphrase string) (*session.Session, error) {
	log := util.LogFromContext(ctx)

	created := false
	if passphrase != "" && ks != nil {
		var err error
		created, err = ensureKeystore(ctx, ks, secret, passphrase)
		if err != nil {
			return nil, err
		}
	}

	sess := &session.Session{
		Backend: session.BackendLocalSecret,
		Secret:  secret,
		Alias:   alias,
	}

	if err := manager.Connect(ctx, sess); err != nil {
		if created {
			if removeErr := ks.Remove(ctx); removeErr != nil {
				log.Warn().Err(removeErr).Msg("Failed to remove keystore of rejected session")
			}
		}
		return nil, err
	}

	active := manager.Active()
	if active == nil {
		return nil, errors.New("session was not activated")
	}

	return active, nil
}

// ensureKeystore writes secret to the keystore, or accepts an existing
// keystore of the same identity. It reports whether a keystore was created.
func ensureKeystore(ctx context.Context, ks keystore.Service, secret *seed.Seed, passphrase string) (bool, error) {
	kp, err := keys.FromSeed(secret)
	if err != nil {
		return false, err
	}
	id := kp.Identity()
	kp.Clear()

	_, err = ks.Create(ctx, secret, passphrase)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, keystore.ErrKeystoreExists) {
		return false, errors.Wrap(err, "failed to create keystore")
	}

	existing, getErr := ks.Get(ctx)
	if getErr != nil {
		return false, errors.Wrap(getErr, "failed to read keystore")
	}
	if !identity.EqualString(existing.Identity, id.String()) {
		return false, errors.Wrap(err, "keystore holds another identity")
	}

	util.LogFromContext(ctx).Debug().Msg("Keystore already holds this identity")

	return false, nil
}

// UnlockFromKeystore decrypts the keystore with passphrase and hands the seed
// to the locked active session. The keystore must belong to the session identity.
func UnlockFromKeystore(ctx context.Context, manager session.Manager, ks keystore.Service, passphrase string) error {
	active := manager.Active()
	if active == nil {
		return walleterrors.ErrNotConnected
	}
	if active.Backend != session.BackendLocalSecret {
		return session.ErrNotLocalSession
	}

	stored, err := ks.Get(ctx)
	if err != nil {
		return err
	}
	if !identity.EqualString(stored.Identity, active.Identity.String()) {
		return errors.Wrap(session.ErrIdentityMismatch, "keystore belongs to another identity")
	}

	secret, err := ks.Unlock(ctx, passphrase)
	if err != nil {
		return err
	}

	if err := manager.Unlock(ctx, secret); err != nil {
		secret.Clear()
		return err
	}

	return nil
}

// PromptPassphrase reads a passphrase from the terminal without echo.
//
//nolint:forbidigo // Password input requires direct terminal I/O
func PromptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := readPassword()
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase from terminal")
	}

	fmt.Fprintln(os.Stderr)

	return string(passwordBytes), nil
}

// PromptNewPassphrase asks for a new keystore passphrase twice.
func PromptNewPassphrase() (string, error) {
	passphrase, err := PromptPassphrase(fmt.Sprintf("Enter keystore passphrase (min %d characters): ", minPassphraseLength))
	if err != nil {
		return "", err
	}

	if len(passphrase) < minPassphraseLength {
		return "", errors.Errorf("passphrase must be at least %d characters", minPassphraseLength)
	}

	confirm, err := PromptPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase confirmation")
	}

	if passphrase != confirm {
		return "", ErrPassphraseMismatch
	}

	return passphrase, nil
}
