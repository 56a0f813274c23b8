// Package config loads the wallet configuration from defaults, an optional
// config file and QWALLET_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github/qdoge/go-wallet/internal/wallet/builder"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/payload"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. QWALLET_LEDGER_URLS.
	EnvPrefix = "QWALLET"
	// EnvConfigFile points at an optional yaml, toml or json config file.
	EnvConfigFile = "QWALLET_CONFIG_FILE"

	MinTickOffset = 15
	MaxTickOffset = 50
)

type LoggerServer struct {
	Level              string `mapstructure:"level"`
	PrettyPrintConsole bool   `mapstructure:"pretty_print_console"`
	LogRequests        bool   `mapstructure:"log_requests"`
}

type EchoServer struct {
	ListenAddress string `mapstructure:"listen_address"`
	Debug         bool   `mapstructure:"debug"`
}

type Ledger struct {
	URLs       []string      `mapstructure:"urls"`
	AssetsURLs []string      `mapstructure:"assets_urls"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Wallet struct {
	TickOffset       uint32 `mapstructure:"tick_offset"`
	AssetTransferFee uint64 `mapstructure:"asset_transfer_fee"`

	// QXContract overrides the QX contract identity. Empty means contract index 1.
	QXContract          string `mapstructure:"qx_contract"`
	AssetsFile          string `mapstructure:"assets_file"`
	RegistrationAddress string `mapstructure:"registration_address"`
	RegistrationAmount  uint64 `mapstructure:"registration_amount"`
	FundingAddress      string `mapstructure:"funding_address"`
	BurnAddress         string `mapstructure:"burn_address"`
	TradeInAsset        string `mapstructure:"tradein_asset"`
	RecordTransactions  bool   `mapstructure:"record_transactions"`
}

type Bridge struct {
	URL          string `mapstructure:"url"`
	SnapID       string `mapstructure:"snap_id"`
	AccountIndex int    `mapstructure:"account_index"`
}

type Pairing struct {
	URL            string        `mapstructure:"url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	Label          string        `mapstructure:"label"`
}

type Backend struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Keystore holds the scrypt cost of newly written keystores.
type Keystore struct {
	ScryptN int `mapstructure:"scrypt_n"`
	ScryptR int `mapstructure:"scrypt_r"`
	ScryptP int `mapstructure:"scrypt_p"`
}

type Paths struct {
	// DataDir holds session.json, pairing.json and keystore.json.
	DataDir string `mapstructure:"data_dir"`
}

type Server struct {
	Logger   LoggerServer `mapstructure:"logger"`
	Echo     EchoServer   `mapstructure:"echo"`
	Ledger   Ledger       `mapstructure:"ledger"`
	Wallet   Wallet       `mapstructure:"wallet"`
	Bridge   Bridge       `mapstructure:"bridge"`
	Pairing  Pairing      `mapstructure:"pairing"`
	Backend  Backend      `mapstructure:"backend"`
	Keystore Keystore     `mapstructure:"keystore"`
	Paths    Paths        `mapstructure:"paths"`
}

//nolint:gochecknoglobals // .env is applied once per process
var dotEnvOnce sync.Once

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", zerolog.InfoLevel.String())
	v.SetDefault("logger.pretty_print_console", false)
	v.SetDefault("logger.log_requests", true)

	v.SetDefault("echo.listen_address", "127.0.0.1:8080")
	v.SetDefault("echo.debug", false)

	v.SetDefault("ledger.urls", []string{"https://rpc.qubic.org"})
	v.SetDefault("ledger.assets_urls", []string{"https://dev01.qubic.org"})
	v.SetDefault("ledger.timeout", 20*time.Second)

	v.SetDefault("wallet.tick_offset", builder.DefaultTickOffset)
	v.SetDefault("wallet.asset_transfer_fee", builder.DefaultAssetTransferFee)
	v.SetDefault("wallet.qx_contract", "")
	v.SetDefault("wallet.assets_file", "")
	v.SetDefault("wallet.registration_address", "QDOGEEESKYPAICECHEAHOXPULEOADTKGEJHAVYPFKHLEWGXXZQUGIGMBUTZE")
	v.SetDefault("wallet.registration_amount", 100)
	v.SetDefault("wallet.funding_address", "")
	v.SetDefault("wallet.burn_address", "BURNQCDXPUVMBGCTKXZMLRCQYUWBPZREUCDIPECZOAYKCQNGTIUSDXLDULQL")
	v.SetDefault("wallet.tradein_asset", "QXMR")
	v.SetDefault("wallet.record_transactions", false)

	v.SetDefault("bridge.url", "")
	v.SetDefault("bridge.snap_id", "npm:@qubic-lib/qubic-mm-snap")
	v.SetDefault("bridge.account_index", 0)

	v.SetDefault("pairing.url", "")
	v.SetDefault("pairing.request_timeout", 5*time.Minute)
	v.SetDefault("pairing.poll_interval", time.Second)
	v.SetDefault("pairing.label", "QDOGE wallet")

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", 20*time.Second)

	v.SetDefault("keystore.scrypt_n", 262144)
	v.SetDefault("keystore.scrypt_r", 8)
	v.SetDefault("keystore.scrypt_p", 1)

	v.SetDefault("paths.data_dir", defaultDataDir())
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qwallet"
	}
	return filepath.Join(home, ".qwallet")
}

// DefaultServiceConfigFromEnv returns the server config as parsed from
// environment variables, an optional config file and their defaults.
func DefaultServiceConfigFromEnv() Server {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	return cfg
}

// Load reads the configuration. A .env file in the working directory is
// applied once before the environment is read.
func Load() (Server, error) {
	dotEnvOnce.Do(func() {
		DotEnvTryLoad(".env", os.Setenv)
	})

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Server{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return Server{}, errors.Wrap(err, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

// Validate rejects settings the wallet cannot run with.
func (c Server) Validate() error {
	if _, err := zerolog.ParseLevel(c.Logger.Level); err != nil {
		return errors.Wrap(err, "logger.level")
	}

	if len(c.Ledger.URLs) == 0 {
		return errors.New("ledger.urls must not be empty")
	}

	if c.Wallet.TickOffset < MinTickOffset || c.Wallet.TickOffset > MaxTickOffset {
		return errors.Errorf("wallet.tick_offset must be between %d and %d, got %d", MinTickOffset, MaxTickOffset, c.Wallet.TickOffset)
	}

	for key, value := range map[string]string{
		"wallet.qx_contract":          c.Wallet.QXContract,
		"wallet.registration_address": c.Wallet.RegistrationAddress,
		"wallet.funding_address":      c.Wallet.FundingAddress,
		"wallet.burn_address":         c.Wallet.BurnAddress,
	} {
		if value == "" {
			continue
		}
		if _, err := identity.Parse(value); err != nil {
			return errors.Wrap(err, key)
		}
	}

	if c.Wallet.TradeInAsset != "" {
		if _, err := payload.NormalizeAssetName(c.Wallet.TradeInAsset); err != nil {
			return errors.Wrap(err, "wallet.tradein_asset")
		}
	}

	if c.Keystore.ScryptN < 2 || c.Keystore.ScryptN&(c.Keystore.ScryptN-1) != 0 {
		return errors.New("keystore.scrypt_n must be a power of two greater than 1")
	}
	if c.Keystore.ScryptR <= 0 || c.Keystore.ScryptP <= 0 {
		return errors.New("keystore.scrypt_r and keystore.scrypt_p must be positive")
	}

	if c.Pairing.PollInterval <= 0 || c.Pairing.RequestTimeout <= 0 {
		return errors.New("pairing.poll_interval and pairing.request_timeout must be positive")
	}

	return nil
}

// Identity parses an optional identity setting. Empty yields the zero identity.
func Identity(value string) (identity.Identity, error) {
	if value == "" {
		return identity.Identity{}, nil
	}
	return identity.Parse(value)
}
