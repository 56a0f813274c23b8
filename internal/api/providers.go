package api

import (
	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/backend"
	"github/qdoge/go-wallet/internal/bridge"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/ledger"
	"github/qdoge/go-wallet/internal/metrics"
	"github/qdoge/go-wallet/internal/pairing"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/assets"
	"github/qdoge/go-wallet/internal/wallet/builder"
	"github/qdoge/go-wallet/internal/wallet/keystore"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/signer"
)

// InitNewServer returns a new Server with every component created from cfg.
// The router is not attached; call router.Init(s) afterwards.
func InitNewServer(cfg config.Server) (*Server, error) {
	s := NewServer(cfg)
	s.Metrics = metrics.New()

	if err := initComponents(s); err != nil {
		return nil, err
	}

	return s, nil
}

func initComponents(s *Server) error {
	var err error

	s.Ledger, err = NewLedger(s.Config, s.Metrics)
	if err != nil {
		return err
	}

	s.Assets, err = NewAssets(s.Config)
	if err != nil {
		return err
	}

	s.Bridge = NewBridge(s.Config)
	s.Pairing = NewPairing(s.Config)
	s.Backend = NewBackend(s.Config)
	s.Keystore = NewKeystore(s.Config)
	s.Sessions = NewSessions(s.Config, s.Pairing, s.Metrics)
	s.Signer = NewSigner(s.Config, s.Bridge, s.Pairing, s.Metrics)

	txBuilder, err := NewBuilder(s.Config, s.Ledger, s.Assets)
	if err != nil {
		return err
	}

	s.Wallet, err = NewWallet(s.Config, txBuilder, s.Signer, s.Ledger, s.Backend, s.Metrics)
	if err != nil {
		return err
	}

	return nil
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewLedger(cfg config.Server, m *metrics.Service) (ledger.Client, error) {
	client, err := ledger.NewRPCClient(ledger.Config{
		URLs:       cfg.Ledger.URLs,
		AssetsURLs: cfg.Ledger.AssetsURLs,
		Timeout:    cfg.Ledger.Timeout,
	}, m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ledger client")
	}

	return client, nil
}

func NewAssets(cfg config.Server) (*assets.Catalog, error) {
	if cfg.Wallet.AssetsFile == "" {
		return assets.New(), nil
	}

	catalog, err := assets.Load(cfg.Wallet.AssetsFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load asset catalog")
	}

	return catalog, nil
}

func NewBridge(cfg config.Server) *bridge.Client {
	return bridge.NewClient(cfg.Bridge.URL, cfg.Bridge.SnapID)
}

func NewPairing(cfg config.Server) *pairing.Client {
	return pairing.NewClient(pairing.Config{
		BaseURL:        cfg.Pairing.URL,
		RequestTimeout: cfg.Pairing.RequestTimeout,
		PollInterval:   cfg.Pairing.PollInterval,
		Label:          cfg.Pairing.Label,
	}, pairing.NewTopicStore(cfg.Paths.DataDir))
}

// NewBackend returns nil when no backend URL is configured.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewBackend(cfg config.Server) backend.Client {
	if cfg.Backend.URL == "" {
		return nil
	}

	return backend.NewClient(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKeystore(cfg config.Server) keystore.Service {
	const keyLength = 32

	return keystore.NewService(cfg.Paths.DataDir, &keystore.ScryptParams{
		DKLen: keyLength,
		N:     cfg.Keystore.ScryptN,
		R:     cfg.Keystore.ScryptR,
		P:     cfg.Keystore.ScryptP,
	})
}

// NewSessions creates the session manager. Disconnecting a paired session
// tears the relay pairing down, and the connected gauge follows the session.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSessions(cfg config.Server, p *pairing.Client, m *metrics.Service) session.Manager {
	manager := session.NewManager(session.NewFileStore(cfg.Paths.DataDir), session.WithTeardown(p))
	manager.OnChange(m.SetConnected)

	return manager
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSigner(cfg config.Server, b *bridge.Client, p *pairing.Client, m *metrics.Service) signer.Service {
	return signer.NewService(signer.Variants{
		Local:   signer.NewLocalSigner(),
		Bridge:  signer.NewBridgeSigner(b),
		Pairing: signer.NewPairingSigner(p),
	}, m)
}

func NewBuilder(cfg config.Server, l ledger.Client, catalog *assets.Catalog) (*builder.Builder, error) {
	qx, err := config.Identity(cfg.Wallet.QXContract)
	if err != nil {
		return nil, errors.Wrap(err, "wallet.qx_contract")
	}

	return builder.New(l, catalog, builder.Config{
		TickOffset:       cfg.Wallet.TickOffset,
		AssetTransferFee: cfg.Wallet.AssetTransferFee,
		QXContract:       qx,
	}), nil
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewWallet(
	cfg config.Server,
	txBuilder wallet.Builder,
	signerService signer.Service,
	l ledger.Client,
	b backend.Client,
	m *metrics.Service,
) (wallet.Service, error) {
	walletCfg := wallet.Config{
		RegistrationAmount: cfg.Wallet.RegistrationAmount,
		TradeInAsset:       cfg.Wallet.TradeInAsset,
		RecordTransactions: cfg.Wallet.RecordTransactions,
	}

	var err error
	if walletCfg.RegistrationAddress, err = config.Identity(cfg.Wallet.RegistrationAddress); err != nil {
		return nil, errors.Wrap(err, "wallet.registration_address")
	}
	if walletCfg.FundingAddress, err = config.Identity(cfg.Wallet.FundingAddress); err != nil {
		return nil, errors.Wrap(err, "wallet.funding_address")
	}
	if walletCfg.BurnAddress, err = config.Identity(cfg.Wallet.BurnAddress); err != nil {
		return nil, errors.Wrap(err, "wallet.burn_address")
	}

	return wallet.NewService(walletCfg, txBuilder, signerService, l, b, m), nil
}
