package transfer

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/wallet/session"
)

func newFund() *cobra.Command {
	return &cobra.Command{
		Use:   "fund <amount>",
		Short: "Sends QU to the funding address and confirms it with the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *api.Server, sess *session.Session) (any, error) {
				res, err := s.Wallet.Fund(ctx, sess, amount)
				if res == nil {
					return nil, err
				}
				return res, err
			})
		},
	}
}
