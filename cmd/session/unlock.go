package session

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
	"github/qdoge/go-wallet/internal/walleterrors"
)

func newUnlock() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Checks that the persisted local-secret session can be unlocked",
		Long: `Unlocks the persisted local-secret session from the keystore, or by
prompting for the seed when no keystore exists. The secret is never
persisted by the session, so this only verifies the passphrase or seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

				return command.PrintJSON(cmd, toStatus(s.Sessions.Active()))
			})
		},
	}
}
