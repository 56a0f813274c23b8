package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/qdoge/go-wallet/internal/backend"
	"github/qdoge/go-wallet/internal/bridge"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/ledger"
	"github/qdoge/go-wallet/internal/metrics"
	"github/qdoge/go-wallet/internal/pairing"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/assets"
	"github/qdoge/go-wallet/internal/wallet/keystore"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/wallet/signer"
)

type Router struct {
	Routes       []*echo.Route
	Root         *echo.Group
	Management   *echo.Group
	APIV1Session *echo.Group
	APIV1Wallet  *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with InitNewServer, which creates the components in the
// right order. Backend is optional and stays nil when no backend URL is set.
type Server struct {
	// initialized with router.Init(s)
	Echo   *echo.Echo
	Router *Router

	Config   config.Server
	Metrics  *metrics.Service
	Ledger   ledger.Client
	Assets   *assets.Catalog
	Bridge   *bridge.Client
	Pairing  *pairing.Client
	Backend  backend.Client
	Keystore keystore.Service
	Sessions session.Manager
	Signer   signer.Service
	Wallet   wallet.Service
}

func NewServer(config config.Server) *Server {
	s := &Server{
		Config: config,
	}

	return s
}

// Ready reports whether every required component is initialized.
func (s *Server) Ready() bool {
	if err := s.checkInitialized(); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

func (s *Server) checkInitialized() error {
	switch {
	case s.Echo == nil, s.Router == nil:
		return errors.New("router is not initialized")
	case s.Metrics == nil:
		return errors.New("metrics are not initialized")
	case s.Ledger == nil:
		return errors.New("ledger client is not initialized")
	case s.Assets == nil:
		return errors.New("asset catalog is not initialized")
	case s.Bridge == nil, s.Pairing == nil:
		return errors.New("signing transports are not initialized")
	case s.Keystore == nil:
		return errors.New("keystore is not initialized")
	case s.Sessions == nil:
		return errors.New("session manager is not initialized")
	case s.Signer == nil, s.Wallet == nil:
		return errors.New("wallet services are not initialized")
	}

	return nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Bridge != nil {
		log.Debug().Msg("Closing extension bridge connection")
		s.Bridge.Close()
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if s.Sessions != nil {
		log.Debug().Msg("Waiting for pairing teardown")

		if err := s.Sessions.Wait(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to finish pairing teardown")
			errs = append(errs, err)
		}
	}

	return errs
}
