package probe

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
)

const probeTimeout = 10 * time.Second

func newReadiness() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `Initializes all components and checks that the ledger RPC
answers with the current tick.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
			defer cancel()

			return command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
				if !s.Ready() {
					return errors.New("server components are not initialized")
				}

				start := time.Now()
				tick, err := s.Ledger.CurrentTick(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Readiness probe failed, ledger is unreachable")
					return err
				}

				if verbose {
					log.Info().
						Uint32("tick", tick).
						Dur("took", time.Since(start)).
						Msg("Readiness probe succeeded")
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, verboseFlag, "v", false, "Show verbose output.")

	return cmd
}
