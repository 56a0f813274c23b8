package transfer

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/wallet/session"
)

func newRegister() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Pays the registration fee and confirms it with the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *api.Server, sess *session.Session) (any, error) {
				res, err := s.Wallet.Register(ctx, sess)
				if res == nil {
					return nil, err
				}
				return res, err
			})
		},
	}
}
