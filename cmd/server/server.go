package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/router"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
)

const (
	unlockFlag string = "unlock"
)

type Flags struct {
	Unlock bool
}

func New() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the local wallet API",
		Long: `Starts the local wallet API the UI talks to.

The persisted session is restored on startup. With --unlock a locked
local-secret session is unlocked from the keystore before serving.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Unlock, unlockFlag, false, "Prompt to unlock a restored local-secret session before serving.")

	return cmd
}

func runServer(ctx context.Context, flags Flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
		if flags.Unlock {
			if err := initializeSession(ctx, s); err != nil {
				return err
			}
		}

		router.Init(s)

		errs := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.Echo.ListenAddress).Msg("Starting server")
			if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
			close(errs)
		}()

		select {
		case err := <-errs:
			return err
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal")
			return nil
		}
	})
}
