// Package builder assembles unsigned transfer transactions against the current ledger tick.
package builder

import (
	"context"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/assets"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/payload"
	"github/qdoge/go-wallet/internal/wallet/tx"
)

const (
	DefaultTickOffset       = 20
	DefaultAssetTransferFee = 100
	qxContractIndex         = 1
)

// TickSource reports the ledger's current tick.
type TickSource interface {
	CurrentTick(ctx context.Context) (uint32, error)
}

// Config holds the read-only builder settings.
type Config struct {
	// TickOffset is added to the current tick to get the expiry tick. Zero
	// means DefaultTickOffset.
	TickOffset uint32
	// AssetTransferFee is the QU amount paid to the asset contract per transfer.
	// Zero means DefaultAssetTransferFee.
	AssetTransferFee uint64
	// QXContract receives asset transfers. Zero means the QX contract address.
	QXContract identity.Identity
}

// Builder produces unsigned transactions ready for the signing dispatcher.
type Builder struct {
	ticks   TickSource
	cfg     Config
	catalog *assets.Catalog
}

func New(ticks TickSource, catalog *assets.Catalog, cfg Config) *Builder {
	if cfg.TickOffset == 0 {
		cfg.TickOffset = DefaultTickOffset
	}
	if cfg.AssetTransferFee == 0 {
		cfg.AssetTransferFee = DefaultAssetTransferFee
	}
	if cfg.QXContract.IsZero() {
		cfg.QXContract = identity.FromContractIndex(qxContractIndex)
	}
	if catalog == nil {
		catalog = assets.New()
	}

	return &Builder{ticks: ticks, cfg: cfg, catalog: catalog}
}

// ExpiryTick reads the current tick and adds the configured offset.
func (b *Builder) ExpiryTick(ctx context.Context) (uint32, error) {
	tick, err := b.ticks.CurrentTick(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to fetch current tick")
	}

	return tick + b.cfg.TickOffset, nil
}

// BuildNativeTransfer builds a plain QU transfer. Amount validation belongs to
// the caller.
func (b *Builder) BuildNativeTransfer(ctx context.Context, from identity.Identity, to identity.Identity, amount uint64) (*tx.Unsigned, error) {
	expiry, err := b.ExpiryTick(ctx)
	if err != nil {
		return nil, err
	}

	unsigned, err := (&tx.Transaction{
		Source:      from,
		Destination: to,
		Amount:      amount,
		Tick:        expiry,
		InputType:   tx.InputTypeTransfer,
	}).Build()
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Uint64("amount", amount).
		Uint32("tick", expiry).
		Msg("Built native transfer")

	return unsigned, nil
}

// BuildAssetTransfer builds a QX share transfer of units of assetName to the
// new owner. The transaction amount is the asset transfer fee; the units
// travel in the payload.
func (b *Builder) BuildAssetTransfer(ctx context.Context, from identity.Identity, to identity.Identity, units uint64, assetName string) (*tx.Unsigned, error) {
	issuer, err := b.catalog.Issuer(assetName)
	if err != nil {
		return nil, err
	}

	expiry, err := b.ExpiryTick(ctx)
	if err != nil {
		return nil, err
	}

	p := &payload.AssetTransfer{
		Issuer:    issuer,
		NewOwner:  to,
		AssetName: assetName,
		Units:     units,
	}
	encoded, err := p.Encode()
	if err != nil {
		return nil, err
	}

	unsigned, err := (&tx.Transaction{
		Source:      from,
		Destination: b.cfg.QXContract,
		Amount:      b.cfg.AssetTransferFee,
		Tick:        expiry,
		InputType:   payload.InputTypeAssetTransfer,
		Payload:     encoded,
	}).Build()
	if err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("asset", assetName).
		Uint64("units", units).
		Uint32("tick", expiry).
		Msg("Built asset transfer")

	return unsigned, nil
}

// AssetTransferFee is the QU fee attached to asset transfers.
func (b *Builder) AssetTransferFee() uint64 {
	return b.cfg.AssetTransferFee
}
