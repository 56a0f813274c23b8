package ledger

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/util/command"
)

func newBalance() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [identity]",
		Short: "Prints the QU balance of an identity or of the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				id, err := identityOrSession(s, args)
				if err != nil {
					return err
				}

				balance, err := s.Wallet.Balance(ctx, id)
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd, &types.BalanceResponse{Identity: id.String(), Balance: balance})
			})
		},
	}
}
