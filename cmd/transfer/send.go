package transfer

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/walleterrors"
)

func newSend() *cobra.Command {
	return &cobra.Command{
		Use:   "send <to> <amount>",
		Short: "Sends QU to an identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := identity.Parse(args[0])
			if err != nil {
				return err
			}

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *api.Server, sess *session.Session) (any, error) {
				res, err := s.Wallet.Send(ctx, sess, to, amount)
				if res == nil {
					return nil, err
				}
				return res, err
			})
		},
	}
}

func parseAmount(value string) (uint64, error) {
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, walleterrors.Wrap(errors.Wrapf(err, "amount %q", value), walleterrors.CodeInvalidAmount, "amount must be a positive integer")
	}

	return amount, nil
}
