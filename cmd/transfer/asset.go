package transfer

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/session"
)

func newAsset() *cobra.Command {
	return &cobra.Command{
		Use:   "asset <to> <asset> <units>",
		Short: "Transfers asset units through the QX contract",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := identity.Parse(args[0])
			if err != nil {
				return err
			}

			units, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *api.Server, sess *session.Session) (any, error) {
				res, err := s.Wallet.SendAsset(ctx, sess, to, args[1], units)
				if res == nil {
					return nil, err
				}
				return res, err
			})
		},
	}
}
