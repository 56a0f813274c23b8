package signer

import (
	"context"

	"github/qdoge/go-wallet/internal/wallet/keys"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/tx"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// LocalSigner signs in process with the key derived from the session secret.
type LocalSigner struct{}

func NewLocalSigner() *LocalSigner {
	return &LocalSigner{}
}

func (*LocalSigner) Sign(_ context.Context, sess *session.Session, unsigned []byte) ([]byte, error) {
	if sess.Secret == nil {
		return nil, walleterrors.ErrMissingSecret
	}

	offset, err := tx.SignatureOffset(unsigned)
	if err != nil {
		return nil, err
	}

	kp, err := keys.FromSeed(sess.Secret)
	if err != nil {
		return nil, err
	}
	defer kp.Clear()

	digest, err := tx.UnsignedDigest(unsigned)
	if err != nil {
		return nil, err
	}

	sig := kp.Sign(digest)

	out := make([]byte, offset+tx.SignatureSize)
	copy(out, unsigned[:offset])
	copy(out[offset:], sig[:])

	return out, nil
}
