package signer

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/pairing"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/tx"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// PairingSigner sends the transaction fields to a paired device and returns
// the signed buffer the device produced.
type PairingSigner struct {
	relay RelayClient
}

func NewPairingSigner(relay RelayClient) *PairingSigner {
	return &PairingSigner{relay: relay}
}

func (s *PairingSigner) Sign(ctx context.Context, _ *session.Session, unsigned []byte) ([]byte, error) {
	if s.relay == nil {
		return nil, walleterrors.ErrPairingLost
	}

	t, err := tx.Decode(unsigned)
	if err != nil {
		return nil, err
	}

	res, err := s.relay.SignTransaction(ctx, ParamsFromTransaction(t))
	if err != nil {
		return nil, err
	}

	signed, err := base64.StdEncoding.DecodeString(res.SignedTransaction)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode signed transaction from paired device")
	}

	return signed, nil
}

// ParamsFromTransaction renders t in the field form the paired device approves.
func ParamsFromTransaction(t *tx.Transaction) pairing.SignTransactionParams {
	params := pairing.SignTransactionParams{
		From:      t.Source.String(),
		To:        t.Destination.String(),
		Amount:    t.Amount,
		Tick:      t.Tick,
		InputType: uint16(t.InputType),
	}

	if len(t.Payload) > 0 {
		payload := base64.StdEncoding.EncodeToString(t.Payload)
		params.Payload = &payload
	}

	return params
}
