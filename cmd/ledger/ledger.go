package ledger

import (
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/util/command"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/walleterrors"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("ledger",
		newTick(),
		newBalance(),
		newAssets(),
		newTx(),
	)
}

// identityOrSession returns the identity given as first argument, or the
// identity of the persisted session.
func identityOrSession(s *api.Server, args []string) (identity.Identity, error) {
	if len(args) > 0 {
		return identity.Parse(args[0])
	}

	active := s.Sessions.Active()
	if active == nil {
		return identity.Identity{}, walleterrors.ErrNotConnected
	}

	return active.Identity, nil
}
