package transfer

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/walleterrors"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("transfer",
		newSend(),
		newAsset(),
		newRegister(),
		newFund(),
		newTradeIn(),
	)
}

// withSession runs f with the unlocked persisted session and prints its result.
func withSession(cmd *cobra.Command, f func(ctx context.Context, s *api.Server, sess *session.Session) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		if s.Sessions.Active() == nil {
			return walleterrors.ErrNotConnected
		}

		if err := command.EnsureUnlocked(ctx, s); err != nil {
			return err
		}

		result, err := f(ctx, s, s.Sessions.Active())
		if result != nil {
			if printErr := command.PrintJSON(cmd, result); printErr != nil {
				return printErr
			}
		}

		return err
	})
}
