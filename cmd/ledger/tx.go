package ledger

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
)

const (
	startTickFlag string = "start"
	endTickFlag   string = "end"
	identityFlag  string = "identity"
)

func newTx() *cobra.Command {
	var (
		startTick uint32
		endTick   uint32
		who       string
	)

	cmd := &cobra.Command{
		Use:   "tx <transaction-id>",
		Short: "Looks up a transaction in an identity's transfer history",
		Long: `Searches the transfer history of --identity (or of the session)
between --start and --end for the given transaction id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if endTick < startTick {
				return errors.Errorf("--%s must not be before --%s", endTickFlag, startTickFlag)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				var idArgs []string
				if who != "" {
					idArgs = []string{who}
				}

				id, err := identityOrSession(s, idArgs)
				if err != nil {
					return err
				}

				transfer, err := s.Ledger.FindTransfer(ctx, id, args[0], startTick, endTick)
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd, transfer)
			})
		},
	}

	cmd.Flags().Uint32Var(&startTick, startTickFlag, 0, "First tick to search.")
	cmd.Flags().Uint32Var(&endTick, endTickFlag, 0, "Last tick to search.")
	cmd.Flags().StringVar(&who, identityFlag, "", "Identity whose history is searched (defaults to the session).")
	_ = cmd.MarkFlagRequired(startTickFlag)
	_ = cmd.MarkFlagRequired(endTickFlag)

	return cmd
}
