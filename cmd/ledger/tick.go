package ledger

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/util/command"
)

func newTick() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Prints the current network tick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				tick, err := s.Ledger.CurrentTick(ctx)
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd, &types.TickResponse{Tick: tick})
			})
		},
	}
}
