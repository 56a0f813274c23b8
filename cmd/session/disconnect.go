package session

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
)

const forgetKeystoreFlag string = "forget-keystore"

func newDisconnect() *cobra.Command {
	var forgetKeystore bool

	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnects the active session",
		Long: `Disconnects the active session and removes its record.

A remote pairing is also deleted on the relay. The keystore is kept unless
--forget-keystore is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				if err := s.Sessions.Disconnect(ctx); err != nil {
					return err
				}

				if forgetKeystore {
					if err := s.Keystore.Remove(ctx); err != nil {
						return err
					}
				}

				return command.PrintJSON(cmd, toStatus(nil))
			})
		},
	}

	cmd.Flags().BoolVar(&forgetKeystore, forgetKeystoreFlag, false, "Also delete the local keystore.")

	return cmd
}
