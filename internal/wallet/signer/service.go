// Package signer signs encoded transactions with the backend of the active session.
package signer

import (
	"context"
	"time"

	"github/qdoge/go-wallet/internal/metrics"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/walleterrors"
)

type service struct {
	variants Variants
	metrics  *metrics.Service
}

// NewService creates the signing dispatcher. m may be nil.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(variants Variants, m *metrics.Service) Service {
	return &service{
		variants: variants,
		metrics:  m,
	}
}

// Sign dispatches on the session backend. Errors from the backend signer are
// returned unchanged.
func (s *service) Sign(ctx context.Context, sess *session.Session, unsigned []byte) (signed []byte, err error) {
	if sess == nil {
		return nil, walleterrors.ErrNotConnected
	}

	log := util.LogFromContext(ctx).With().
		Str("backend", sess.Backend.String()).
		Str("identity", sess.Identity.String()).
		Logger()

	started := time.Now()
	defer func() {
		s.metrics.ObserveSign(sess.Backend.String(), started, err)
		if err != nil {
			log.Warn().Err(err).Msg("Signing failed")
			return
		}
		log.Debug().Dur("took", time.Since(started)).Msg("Transaction signed")
	}()

	var delegate Signer
	switch sess.Backend {
	case session.BackendLocalSecret:
		delegate = s.variants.Local
	case session.BackendExtensionBridge:
		delegate = s.variants.Bridge
	case session.BackendRemotePairing:
		delegate = s.variants.Pairing
	default:
		return nil, walleterrors.ErrUnsupportedBackend
	}

	if delegate == nil {
		return nil, walleterrors.ErrUnsupportedBackend
	}

	return delegate.Sign(ctx, sess, unsigned)
}
