package signer

import (
	"context"

	"github/qdoge/go-wallet/internal/pairing"
	"github/qdoge/go-wallet/internal/wallet/session"
)

// Signer turns encoded unsigned transaction bytes into signed bytes.
type Signer interface {
	Sign(ctx context.Context, sess *session.Session, unsigned []byte) ([]byte, error)
}

// Service routes signing requests to the signer of the session's backend.
type Service interface {
	Signer
}

// Variants holds one signer per backend.
type Variants struct {
	Local   Signer
	Bridge  Signer
	Pairing Signer
}

// BridgeClient is the extension bridge surface the bridge signer needs.
type BridgeClient interface {
	Available() bool
	SignTransaction(ctx context.Context, base64Tx string, accountIdx int, offset int) (string, error)
}

// RelayClient is the pairing relay surface the pairing signer needs.
type RelayClient interface {
	SignTransaction(ctx context.Context, params pairing.SignTransactionParams) (*pairing.SignTransactionResult, error)
}
