package signer

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/tx"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// BridgeSigner asks the browser extension to sign with the session's account
// and splices the returned signature into the signature region.
type BridgeSigner struct {
	bridge BridgeClient
}

func NewBridgeSigner(bridge BridgeClient) *BridgeSigner {
	return &BridgeSigner{bridge: bridge}
}

func (s *BridgeSigner) Sign(ctx context.Context, sess *session.Session, unsigned []byte) ([]byte, error) {
	if sess == nil {
		return nil, walleterrors.ErrNotConnected
	}
	if s.bridge == nil || !s.bridge.Available() {
		return nil, walleterrors.ErrExtensionUnavailable
	}

	offset, err := tx.SignatureOffset(unsigned)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(unsigned[:offset])

	util.LogFromContext(ctx).Debug().
		Int("offset", offset).
		Int("accountIdx", sess.AccountIndex).
		Msg("Requesting signature from extension")

	res, err := s.bridge.SignTransaction(ctx, encoded, sess.AccountIndex, offset)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(res)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode extension response")
	}

	// The extension answers either with the bare signature or with the whole
	// signed buffer.
	var sig []byte
	switch len(raw) {
	case tx.SignatureSize:
		sig = raw
	case offset + tx.SignatureSize:
		sig = raw[offset:]
	default:
		return nil, errors.Errorf("extension returned %d bytes, expected %d or %d", len(raw), tx.SignatureSize, offset+tx.SignatureSize)
	}

	out := make([]byte, offset+tx.SignatureSize)
	copy(out, unsigned[:offset])
	copy(out[offset:], sig)

	return out, nil
}
