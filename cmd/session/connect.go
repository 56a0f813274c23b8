package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/seed"
	walletsession "github/qdoge/go-wallet/internal/wallet/session"
)

const (
	aliasFlag        string = "alias"
	keystoreFlag     string = "keystore"
	accountIndexFlag string = "account-index"
)

type connectFlags struct {
	Alias        string
	Keystore     bool
	AccountIndex int
}

func newConnect() *cobra.Command {
	var flags connectFlags

	cmd := &cobra.Command{
		Use:       "connect local|bridge|pairing",
		Short:     "Connects a session with the given signing backend",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"local", "bridge", "pairing"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed(accountIndexFlag) {
				flags.AccountIndex = cfg.Bridge.AccountIndex
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				var (
					sess *walletsession.Session
					err  error
				)

				switch args[0] {
				case "local":
					sess, err = connectLocal(ctx, s, flags)
				case "bridge":
					sess, err = connectBridge(ctx, s, flags)
				case "pairing":
					sess, err = connectPairing(ctx, cmd, s, flags)
				}
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd, toStatus(sess))
			})
		},
	}

	cmd.Flags().StringVar(&flags.Alias, aliasFlag, "", "Display name stored with the session.")
	cmd.Flags().BoolVar(&flags.Keystore, keystoreFlag, false, "Store the seed in a passphrase-encrypted keystore (local only).")
	cmd.Flags().IntVar(&flags.AccountIndex, accountIndexFlag, 0, "Account index inside the extension wallet (bridge only).")

	return cmd
}

func connectLocal(ctx context.Context, s *api.Server, flags connectFlags) (*walletsession.Session, error) {
	letters, err := wallet.PromptPassphrase("Enter seed (55 lowercase letters): ")
	if err != nil {
		return nil, err
	}

	secret, err := seed.Parse(letters)
	if err != nil {
		return nil, err
	}

	var passphrase string
	if flags.Keystore {
		passphrase, err = wallet.PromptNewPassphrase()
		if err != nil {
			secret.Clear()
			return nil, err
		}
	}

	return wallet.ConnectLocal(ctx, s.Sessions, s.Keystore, secret, flags.Alias, passphrase)
}

func connectBridge(ctx context.Context, s *api.Server, flags connectFlags) (*walletsession.Session, error) {
	id, err := s.Bridge.GetPublicID(ctx, flags.AccountIndex, true)
	if err != nil {
		return nil, err
	}

	if err := s.Sessions.Connect(ctx, &walletsession.Session{
		Backend:      walletsession.BackendExtensionBridge,
		Identity:     id,
		Alias:        flags.Alias,
		AccountIndex: flags.AccountIndex,
	}); err != nil {
		return nil, err
	}

	return s.Sessions.Active(), nil
}

func connectPairing(ctx context.Context, cmd *cobra.Command, s *api.Server, flags connectFlags) (*walletsession.Session, error) {
	p, err := s.Pairing.Propose(ctx)
	if err != nil {
		return nil, err
	}

	cmd.PrintErrln("Approve this pairing on your device:")
	cmd.PrintErrln(p.URI)

	id, err := s.Pairing.AwaitApproval(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pairing was not approved")
	}

	if err := s.Sessions.Connect(ctx, &walletsession.Session{
		Backend:  walletsession.BackendRemotePairing,
		Identity: id,
		Alias:    flags.Alias,
	}); err != nil {
		return nil, err
	}

	return s.Sessions.Active(), nil
}

func toStatus(sess *walletsession.Session) *status {
	if sess == nil {
		return &status{}
	}

	return &status{
		Connected: true,
		Backend:   sess.Backend.String(),
		Identity:  sess.Identity.String(),
		Alias:     sess.Alias,
		Locked:    sess.Locked(),

		AccountIndex: sess.AccountIndex,
	}
}
