package transfer

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/wallet/session"
)

func newTradeIn() *cobra.Command {
	return &cobra.Command{
		Use:   "tradein <units>",
		Short: "Burns trade-in asset units and confirms the trade-in with the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *api.Server, sess *session.Session) (any, error) {
				res, err := s.Wallet.TradeIn(ctx, sess, units)
				if res == nil {
					return nil, err
				}
				return res, err
			})
		},
	}
}
