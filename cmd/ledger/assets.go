package ledger

import (
	"context"

	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/util/command"
)

func newAssets() *cobra.Command {
	return &cobra.Command{
		Use:   "assets [identity]",
		Short: "Prints owned asset units and the known asset catalog",
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

				owned, err := s.Wallet.OwnedAssets(ctx, id)
				if err != nil {
					return err
				}

				out := &types.AssetsResponse{
					Identity: id.String(),
					Owned:    make([]types.OwnedAssetResponse, 0, len(owned)),
				}
				for _, a := range owned {
					out.Owned = append(out.Owned, types.OwnedAssetResponse{Name: a.Name, Issuer: a.Issuer, Units: a.Units})
				}
				for _, a := range s.Assets.List() {
					out.Known = append(out.Known, types.KnownAssetResponse{Name: a.Name, Issuer: a.Issuer.String()})
				}

				return command.PrintJSON(cmd, out)
			})
		},
	}
}
