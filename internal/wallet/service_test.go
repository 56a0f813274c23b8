package wallet_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/backend"
	"github/qdoge/go-wallet/internal/ledger"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/builder"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/payload"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/signer"
	"github/qdoge/go-wallet/internal/wallet/tx"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const (
	seedA        = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	identityA    = "BZBQFLLBNCXEMGLOBHUVFTLUPLVCPQUASSILFABOFFBCADQSSUPNWLZBQEXK"
	identityB    = "DJZMUACQMTYFSEJEYLDBWIGELSFCBMBLPCMBBYFXJHLTGWKHTRRJXTDEHTFL"
	registration = "QDOGEEESKYPAICECHEAHOXPULEOADTKGEJHAVYPFKHLEWGXXZQUGIGMBUTZE"
	burn         = "BURNQCDXPUVMBGCTKXZMLRCQYUWBPZREUCDIPECZOAYKCQNGTIUSDXLDULQL"
	qxmrIssuer   = "QXMRTKAIIGLUREPIQPCMHCKWSIPDTUYFCFNYXQLTECSUJVYEMMDELBMDOEYB"

	scenarioID = "zmbfebhermdkpbeydejqpguhtnidwblsyzcrlmpeyeeobycbdxpidqoaltpn"
)

type fakeLedger struct {
	mu        sync.Mutex
	tick      uint32
	balance   uint64
	owned     []ledger.OwnedAsset
	broadcast []*tx.Signed
	err       error
}

func (f *fakeLedger) CurrentTick(context.Context) (uint32, error) { return f.tick, nil }

func (f *fakeLedger) Balance(context.Context, identity.Identity) (uint64, error) {
	return f.balance, nil
}

func (f *fakeLedger) OwnedAssets(context.Context, identity.Identity) ([]ledger.OwnedAsset, error) {
	return f.owned, nil
}

func (f *fakeLedger) Broadcast(_ context.Context, signed *tx.Signed) (*ledger.BroadcastResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.broadcast = append(f.broadcast, signed)
	return &ledger.BroadcastResult{TransactionID: signed.ID(), PeersBroadcasted: 3}, nil
}

func (f *fakeLedger) FindTransfer(context.Context, identity.Identity, string, uint32, uint32) (*ledger.Transfer, error) {
	return nil, ledger.ErrTransferNotFound
}

type fakeBackend struct {
	mu            sync.Mutex
	registrations []backend.ConfirmRequest
	fundings      []backend.ConfirmRequest
	tradeIns      []backend.ConfirmRequest
	logs          []backend.TransactionLog
	err           error
}

func (f *fakeBackend) Config(context.Context) (*backend.RemoteConfig, error) {
	return &backend.RemoteConfig{}, nil
}

func (f *fakeBackend) ConfirmRegistration(_ context.Context, req backend.ConfirmRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registrations = append(f.registrations, req)
	return f.err
}

func (f *fakeBackend) ConfirmFunding(_ context.Context, req backend.ConfirmRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fundings = append(f.fundings, req)
	return f.err
}

func (f *fakeBackend) ConfirmTradeIn(_ context.Context, req backend.ConfirmRequest) (*backend.TradeInResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tradeIns = append(f.tradeIns, req)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.TradeInResponse{Success: true, QXMRAmount: 500, QDOGEAmount: 5}, nil
}

func (f *fakeBackend) RecordTransaction(_ context.Context, entry backend.TransactionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entry)
	return f.err
}

// tamperingSigner flips a signature byte so verification fails.
type tamperingSigner struct{}

func (tamperingSigner) Sign(ctx context.Context, sess *session.Session, unsigned []byte) ([]byte, error) {
	signed, err := signer.NewLocalSigner().Sign(ctx, sess, unsigned)
	if err != nil {
		return nil, err
	}
	signed[len(signed)-1] ^= 0xff
	return signed, nil
}

func localSession(t *testing.T) *session.Session {
	t.Helper()

	secret, err := seed.Parse(seedA)
	require.NoError(t, err)

	return &session.Session{
		Backend:  session.BackendLocalSecret,
		Identity: identity.MustParse(identityA),
		Secret:   secret,
	}
}

func newService(t *testing.T, l *fakeLedger, b backend.Client, cfg wallet.Config, local signer.Signer) wallet.Service {
	t.Helper()

	if local == nil {
		local = signer.NewLocalSigner()
	}

	return wallet.NewService(
		cfg,
		builder.New(l, nil, builder.Config{}),
		signer.NewService(signer.Variants{Local: local}, nil),
		l,
		b,
		nil,
	)
}

func defaultConfig() wallet.Config {
	return wallet.Config{
		RegistrationAddress: identity.MustParse(registration),
		RegistrationAmount:  100,
		BurnAddress:         identity.MustParse(burn),
		TradeInAsset:        "QXMR",
	}
}

func TestSend(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 2_000_000}
	svc := newService(t, l, nil, defaultConfig(), nil)

	res, err := svc.Send(context.Background(), localSession(t), identity.MustParse(identityB), 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, scenarioID, res.ID)
	assert.Equal(t, uint32(1020), res.Tick)
	assert.Equal(t, identityA, res.Source)
	assert.Equal(t, identityB, res.Destination)
	assert.Equal(t, uint64(1_000_000), res.Amount)

	require.Len(t, l.broadcast, 1)
	assert.Equal(t, l.broadcast[0].Base64(), res.Encoded)

	ok, err := tx.Verify(l.broadcast[0].Bytes())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSendValidation(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 10}
	svc := newService(t, l, nil, defaultConfig(), nil)

	_, err := svc.Send(context.Background(), nil, identity.MustParse(identityB), 1)
	require.ErrorIs(t, err, walleterrors.ErrNotConnected)

	_, err = svc.Send(context.Background(), localSession(t), identity.MustParse(identityB), 0)
	require.ErrorIs(t, err, walleterrors.ErrInvalidAmount)

	_, err = svc.Send(context.Background(), localSession(t), identity.MustParse(identityB), 11)
	require.ErrorIs(t, err, walleterrors.ErrInsufficientBalance)

	assert.Empty(t, l.broadcast)
}

func TestSendRefusesInvalidSignature(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 2_000_000}
	svc := newService(t, l, nil, defaultConfig(), tamperingSigner{})

	_, err := svc.Send(context.Background(), localSession(t), identity.MustParse(identityB), 1_000_000)
	require.ErrorIs(t, err, wallet.ErrSignatureInvalid)
	assert.Empty(t, l.broadcast)
}

func TestSendLockedSession(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 2_000_000}
	svc := newService(t, l, nil, defaultConfig(), nil)

	sess := localSession(t)
	sess.Secret = nil

	_, err := svc.Send(context.Background(), sess, identity.MustParse(identityB), 1)
	require.ErrorIs(t, err, walleterrors.ErrMissingSecret)
	assert.Empty(t, l.broadcast)
}

func TestSendBroadcastError(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 2_000_000, err: errors.New("all ledger endpoints are unavailable")}
	svc := newService(t, l, nil, defaultConfig(), nil)

	_, err := svc.Send(context.Background(), localSession(t), identity.MustParse(identityB), 1)
	require.Error(t, err)
}

func TestSendRecordsTransaction(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 2_000_000}
	b := &fakeBackend{err: errors.New("backend down")}
	cfg := defaultConfig()
	cfg.RecordTransactions = true
	svc := newService(t, l, b, cfg, nil)

	// recording failures do not fail the transfer
	res, err := svc.Send(context.Background(), localSession(t), identity.MustParse(identityB), 1_000_000)
	require.NoError(t, err)

	require.Len(t, b.logs, 1)
	assert.Equal(t, backend.TransactionLog{
		WalletID: identityA,
		From:     identityA,
		To:       identityB,
		TxID:     res.ID,
		Type:     backend.TransactionTypeQubic,
		Amount:   1_000_000,
	}, b.logs[0])
}

func TestSendAsset(t *testing.T) {
	l := &fakeLedger{
		tick:    1000,
		balance: 100,
		owned: []ledger.OwnedAsset{
			{Name: "QXMR", Issuer: qxmrIssuer, Units: 30},
			{Name: "QXMR", Issuer: qxmrIssuer, Units: 20},
		},
	}
	svc := newService(t, l, nil, defaultConfig(), nil)

	res, err := svc.SendAsset(context.Background(), localSession(t), identity.MustParse(identityB), "qxmr", 50)
	require.NoError(t, err)

	assert.Equal(t, identityB, res.Destination)
	assert.Equal(t, "QXMR", res.Asset)
	assert.Equal(t, uint64(50), res.Units)
	assert.Equal(t, uint64(builder.DefaultAssetTransferFee), res.Amount)

	require.Len(t, l.broadcast, 1)
	decoded, err := tx.Decode(l.broadcast[0].Bytes())
	require.NoError(t, err)
	assert.Equal(t, identity.FromContractIndex(1), decoded.Destination)

	transfer, err := payload.DecodeAssetTransfer(decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), transfer.Units)
	assert.Equal(t, identity.MustParse(identityB), transfer.NewOwner)
}

func TestSendAssetValidation(t *testing.T) {
	l := &fakeLedger{
		tick:    1000,
		balance: 99,
		owned:   []ledger.OwnedAsset{{Name: "QXMR", Issuer: qxmrIssuer, Units: 50}},
	}
	svc := newService(t, l, nil, defaultConfig(), nil)
	sess := localSession(t)
	to := identity.MustParse(identityB)

	_, err := svc.SendAsset(context.Background(), sess, to, "QXMR", 0)
	require.ErrorIs(t, err, walleterrors.ErrInvalidAmount)

	_, err = svc.SendAsset(context.Background(), sess, to, "QXMR", 51)
	require.ErrorIs(t, err, walleterrors.ErrInsufficientBalance)

	// units held, fee not covered
	_, err = svc.SendAsset(context.Background(), sess, to, "QXMR", 50)
	require.ErrorIs(t, err, walleterrors.ErrInsufficientBalance)

	_, err = svc.SendAsset(context.Background(), sess, to, "QDOGE", 1)
	require.ErrorIs(t, err, walleterrors.ErrInsufficientBalance)

	l.owned = append(l.owned, ledger.OwnedAsset{Name: "NOPE", Units: 5})
	l.balance = 1_000
	_, err = svc.SendAsset(context.Background(), sess, to, "NOPE", 1)
	require.ErrorIs(t, err, walleterrors.ErrUnknownAsset)

	assert.Empty(t, l.broadcast)
}

func TestRegister(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 1_000}
	b := &fakeBackend{}
	svc := newService(t, l, b, defaultConfig(), nil)

	res, err := svc.Register(context.Background(), localSession(t))
	require.NoError(t, err)
	assert.Equal(t, registration, res.Destination)
	assert.Equal(t, uint64(100), res.Amount)

	assert.Equal(t, []backend.ConfirmRequest{{WalletID: identityA, TxID: res.ID}}, b.registrations)
}

func TestRegisterConfirmationFailure(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 1_000}
	b := &fakeBackend{err: errors.New("backend down")}
	svc := newService(t, l, b, defaultConfig(), nil)

	// the transaction is out, so the caller still gets it
	res, err := svc.Register(context.Background(), localSession(t))
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Len(t, l.broadcast, 1)
}

func TestFundDefaultsToRegistrationAddress(t *testing.T) {
	l := &fakeLedger{tick: 1000, balance: 1_000}
	b := &fakeBackend{}
	svc := newService(t, l, b, defaultConfig(), nil)

	res, err := svc.Fund(context.Background(), localSession(t), 250)
	require.NoError(t, err)
	assert.Equal(t, registration, res.Destination)
	assert.Equal(t, []backend.ConfirmRequest{{WalletID: identityA, TxID: res.ID}}, b.fundings)
}

func TestTradeIn(t *testing.T) {
	l := &fakeLedger{
		tick:    1000,
		balance: 1_000,
		owned:   []ledger.OwnedAsset{{Name: "QXMR", Issuer: qxmrIssuer, Units: 500}},
	}
	b := &fakeBackend{}
	svc := newService(t, l, b, defaultConfig(), nil)

	res, err := svc.TradeIn(context.Background(), localSession(t), 500)
	require.NoError(t, err)

	assert.Equal(t, burn, res.Destination)
	assert.Equal(t, "QXMR", res.Asset)
	require.NotNil(t, res.Confirmation)
	assert.Equal(t, uint64(5), res.Confirmation.QDOGEAmount)
	assert.Equal(t, []backend.ConfirmRequest{{WalletID: identityA, TxID: res.ID}}, b.tradeIns)
}

func TestTradeInNotConfigured(t *testing.T) {
	svc := newService(t, &fakeLedger{}, nil, wallet.Config{}, nil)

	_, err := svc.TradeIn(context.Background(), localSession(t), 1)
	require.Error(t, err)
}
