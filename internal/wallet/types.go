package wallet

import (
	"context"

	"github/qdoge/go-wallet/internal/backend"
	"github/qdoge/go-wallet/internal/ledger"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/tx"
)

// Service carries out the wallet use cases for an explicit session.
type Service interface {
	// Send transfers amount QU from the session identity to to.
	Send(ctx context.Context, sess *session.Session, to identity.Identity, amount uint64) (*TransferResult, error)

	// SendAsset transfers units of assetName to to through the QX contract.
	SendAsset(ctx context.Context, sess *session.Session, to identity.Identity, assetName string, units uint64) (*TransferResult, error)

	// Register pays the registration fee and confirms it with the backend.
	Register(ctx context.Context, sess *session.Session) (*TransferResult, error)

	// Fund sends amount QU to the funding address and confirms it with the backend.
	Fund(ctx context.Context, sess *session.Session, amount uint64) (*TransferResult, error)

	// TradeIn burns units of the trade-in asset and confirms it with the backend.
	TradeIn(ctx context.Context, sess *session.Session, units uint64) (*TradeInResult, error)

	Balance(ctx context.Context, id identity.Identity) (uint64, error)
	OwnedAssets(ctx context.Context, id identity.Identity) ([]ledger.OwnedAsset, error)
}

// Builder is the transaction builder surface the service uses.
type Builder interface {
	BuildNativeTransfer(ctx context.Context, from identity.Identity, to identity.Identity, amount uint64) (*tx.Unsigned, error)
	BuildAssetTransfer(ctx context.Context, from identity.Identity, to identity.Identity, units uint64, assetName string) (*tx.Unsigned, error)
	AssetTransferFee() uint64
}

// Config holds the product addresses and amounts.
type Config struct {
	RegistrationAddress identity.Identity
	RegistrationAmount  uint64
	FundingAddress      identity.Identity
	BurnAddress         identity.Identity
	TradeInAsset        string

	// RecordTransactions logs every broadcast with the backend's admin log.
	RecordTransactions bool
}

// TransferResult describes a broadcast transaction.
type TransferResult struct {
	ID          string `json:"transactionId"`
	Tick        uint32 `json:"tick"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
	Asset       string `json:"asset,omitempty"`
	Units       uint64 `json:"units,omitempty"`
	Encoded     string `json:"encodedTransaction"`
}

type TradeInResult struct {
	*TransferResult
	Confirmation *backend.TradeInResponse `json:"confirmation,omitempty"`
}
