// Package wallet implements the transfer use cases: validate, build, sign, broadcast.
package wallet

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/backend"
	"github/qdoge/go-wallet/internal/ledger"
	"github/qdoge/go-wallet/internal/metrics"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/payload"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/signer"
	"github/qdoge/go-wallet/internal/wallet/tx"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const (
	kindTransfer      = "transfer"
	kindAssetTransfer = "asset-transfer"
)

// ErrSignatureInvalid is returned when a signer hands back bytes that do not
// verify against the session identity. Such bytes are never broadcast.
var ErrSignatureInvalid = errors.New("signed transaction failed verification")

type service struct {
	cfg     Config
	builder Builder
	signer  signer.Service
	ledger  ledger.Client
	backend backend.Client
	metrics *metrics.Service
}

// NewService creates the wallet use-case service. backendClient and m may be nil.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(
	cfg Config,
	builder Builder,
	signerService signer.Service,
	ledgerClient ledger.Client,
	backendClient backend.Client,
	m *metrics.Service,
) Service {
	return &service{
		cfg:     cfg,
		builder: builder,
		signer:  signerService,
		ledger:  ledgerClient,
		backend: backendClient,
		metrics: m,
	}
}

func (s *service) Send(ctx context.Context, sess *session.Session, to identity.Identity, amount uint64) (*TransferResult, error) {
	if sess == nil {
		return nil, walleterrors.ErrNotConnected
	}
	if amount == 0 {
		return nil, walleterrors.ErrInvalidAmount
	}

	log := util.LogFromContext(ctx).With().
		Str("from", sess.Identity.String()).
		Str("to", to.String()).
		Uint64("amount", amount).
		Logger()

	balance, err := s.ledger.Balance(ctx, sess.Identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check balance")
	}
	if balance < amount {
		log.Debug().Uint64("balance", balance).Msg("Insufficient balance for transfer")
		return nil, walleterrors.ErrInsufficientBalance
	}

	unsigned, err := s.builder.BuildNativeTransfer(ctx, sess.Identity, to, amount)
	if err != nil {
		return nil, err
	}

	res, err := s.signAndBroadcast(ctx, sess, unsigned, kindTransfer)
	if err != nil {
		return nil, err
	}

	log.Info().Str("tx_id", res.ID).Uint32("tick", res.Tick).Msg("Transfer broadcast")

	s.record(ctx, sess, res, backend.TransactionTypeQubic, amount)

	return res, nil
}

func (s *service) SendAsset(ctx context.Context, sess *session.Session, to identity.Identity, assetName string, units uint64) (*TransferResult, error) {
	if sess == nil {
		return nil, walleterrors.ErrNotConnected
	}
	if units == 0 {
		return nil, walleterrors.ErrInvalidAmount
	}

	name, err := payload.NormalizeAssetName(assetName)
	if err != nil {
		return nil, walleterrors.Wrap(err, walleterrors.CodeUnknownAsset, "unknown asset")
	}

	log := util.LogFromContext(ctx).With().
		Str("from", sess.Identity.String()).
		Str("to", to.String()).
		Str("asset", name).
		Uint64("units", units).
		Logger()

	owned, err := s.ledger.OwnedAssets(ctx, sess.Identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check owned assets")
	}

	if held := unitsOf(owned, name); held < units {
		log.Debug().Uint64("held", held).Msg("Insufficient asset units")
		return nil, walleterrors.ErrInsufficientBalance
	}

	balance, err := s.ledger.Balance(ctx, sess.Identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check balance")
	}
	if balance < s.builder.AssetTransferFee() {
		log.Debug().Uint64("balance", balance).Msg("Insufficient balance for asset transfer fee")
		return nil, walleterrors.ErrInsufficientBalance
	}

	unsigned, err := s.builder.BuildAssetTransfer(ctx, sess.Identity, to, units, name)
	if err != nil {
		return nil, err
	}

	res, err := s.signAndBroadcast(ctx, sess, unsigned, kindAssetTransfer)
	if err != nil {
		return nil, err
	}
	res.Destination = to.String()
	res.Asset = name
	res.Units = units

	log.Info().Str("tx_id", res.ID).Uint32("tick", res.Tick).Msg("Asset transfer broadcast")

	s.record(ctx, sess, res, assetTransactionType(name), units)

	return res, nil
}

func (s *service) Register(ctx context.Context, sess *session.Session) (*TransferResult, error) {
	if s.cfg.RegistrationAddress.IsZero() {
		return nil, errors.New("registration address is not configured")
	}

	res, err := s.Send(ctx, sess, s.cfg.RegistrationAddress, s.cfg.RegistrationAmount)
	if err != nil {
		return nil, err
	}

	if s.backend != nil {
		err = s.backend.ConfirmRegistration(ctx, backend.ConfirmRequest{WalletID: sess.Identity.String(), TxID: res.ID})
		if err != nil {
			return res, errors.Wrap(err, "transaction broadcast but registration was not confirmed")
		}
	}

	return res, nil
}

func (s *service) Fund(ctx context.Context, sess *session.Session, amount uint64) (*TransferResult, error) {
	address := s.cfg.FundingAddress
	if address.IsZero() {
		address = s.cfg.RegistrationAddress
	}
	if address.IsZero() {
		return nil, errors.New("funding address is not configured")
	}

	res, err := s.Send(ctx, sess, address, amount)
	if err != nil {
		return nil, err
	}

	if s.backend != nil {
		err = s.backend.ConfirmFunding(ctx, backend.ConfirmRequest{WalletID: sess.Identity.String(), TxID: res.ID})
		if err != nil {
			return res, errors.Wrap(err, "transaction broadcast but funding was not confirmed")
		}
	}

	return res, nil
}

func (s *service) TradeIn(ctx context.Context, sess *session.Session, units uint64) (*TradeInResult, error) {
	if s.cfg.BurnAddress.IsZero() || s.cfg.TradeInAsset == "" {
		return nil, errors.New("trade-in is not configured")
	}

	res, err := s.SendAsset(ctx, sess, s.cfg.BurnAddress, s.cfg.TradeInAsset, units)
	if err != nil {
		return nil, err
	}

	out := &TradeInResult{TransferResult: res}
	if s.backend != nil {
		confirmation, err := s.backend.ConfirmTradeIn(ctx, backend.ConfirmRequest{WalletID: sess.Identity.String(), TxID: res.ID})
		if err != nil {
			return out, errors.Wrap(err, "transaction broadcast but trade-in was not confirmed")
		}
		out.Confirmation = confirmation
	}

	return out, nil
}

func (s *service) Balance(ctx context.Context, id identity.Identity) (uint64, error) {
	return s.ledger.Balance(ctx, id)
}

func (s *service) OwnedAssets(ctx context.Context, id identity.Identity) ([]ledger.OwnedAsset, error) {
	return s.ledger.OwnedAssets(ctx, id)
}

// signAndBroadcast signs unsigned with the session backend, checks the result
// and broadcasts it.
func (s *service) signAndBroadcast(ctx context.Context, sess *session.Session, unsigned *tx.Unsigned, kind string) (*TransferResult, error) {
	signedBytes, err := s.signer.Sign(ctx, sess, unsigned.Bytes)
	if err != nil {
		return nil, err
	}

	signed, err := checkSigned(sess, unsigned, signedBytes)
	if err != nil {
		return nil, err
	}

	broadcast, err := s.ledger.Broadcast(ctx, signed)
	s.metrics.ObserveBroadcast(kind, err)
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		ID:          broadcast.TransactionID,
		Tick:        unsigned.Tx.Tick,
		Source:      unsigned.Tx.Source.String(),
		Destination: unsigned.Tx.Destination.String(),
		Amount:      unsigned.Tx.Amount,
		Encoded:     signed.Base64(),
	}, nil
}

// checkSigned makes sure the signed bytes carry the transaction that was built
// and a valid signature of the session identity.
func checkSigned(sess *session.Session, unsigned *tx.Unsigned, signedBytes []byte) (*tx.Signed, error) {
	offset := unsigned.Tx.SignatureOffset()
	if len(signedBytes) != offset+tx.SignatureSize || string(signedBytes[:offset]) != string(unsigned.Bytes[:offset]) {
		return nil, errors.Wrap(ErrSignatureInvalid, "signer changed the transaction")
	}

	if !unsigned.Tx.Source.Equal(sess.Identity) {
		return nil, errors.Wrap(ErrSignatureInvalid, "transaction source is not the session identity")
	}

	ok, err := tx.Verify(signedBytes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSignatureInvalid
	}

	return tx.NewSigned(signedBytes)
}

// record logs the broadcast with the backend. Failures are only logged.
func (s *service) record(ctx context.Context, sess *session.Session, res *TransferResult, kind backend.TransactionType, amount uint64) {
	if !s.cfg.RecordTransactions || s.backend == nil {
		return
	}

	err := s.backend.RecordTransaction(ctx, backend.TransactionLog{
		WalletID: sess.Identity.String(),
		From:     res.Source,
		To:       res.Destination,
		TxID:     res.ID,
		Type:     kind,
		Amount:   amount,
	})
	if err != nil {
		util.LogFromContext(ctx).Warn().Err(err).Str("tx_id", res.ID).Msg("Failed to record transaction with backend")
	}
}

func unitsOf(owned []ledger.OwnedAsset, name string) uint64 {
	var total uint64
	for _, a := range owned {
		if strings.EqualFold(a.Name, name) {
			total += a.Units
		}
	}
	return total
}

func assetTransactionType(name string) backend.TransactionType {
	switch name {
	case "QXMR":
		return backend.TransactionTypeQXMR
	case "QDOGE":
		return backend.TransactionTypeQDOGE
	default:
		return backend.TransactionType(strings.ToLower(name))
	}
}
