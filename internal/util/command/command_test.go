package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/test"
	"github/qdoge/go-wallet/internal/util/command"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/session"
)

const identityB = "DJZMUACQMTYFSEJEYLDBWIGELSFCBMBLPCMBBYFXJHLTGWKHTRRJXTDEHTFL"

func TestWithServer(t *testing.T) {
	l := test.NewFakeLedger(t)
	cfg := test.NewTestConfig(t, l.URL)
	cfg.Logger.PrettyPrintConsole = false

	var testError = errors.New("test error")

	resultErr := command.WithServer(context.Background(), cfg, func(ctx context.Context, s *api.Server) error {
		assert.Nil(t, s.Sessions.Active())

		require.NoError(t, s.Sessions.Connect(ctx, &session.Session{
			Backend:  session.BackendExtensionBridge,
			Identity: identity.MustParse(identityB),
		}))

		return testError
	})

	assert.Equal(t, testError, resultErr)

	// the session written by the first run is restored by the next one
	err := command.WithServer(context.Background(), cfg, func(_ context.Context, s *api.Server) error {
		active := s.Sessions.Active()
		require.NotNil(t, active)
		assert.Equal(t, identityB, active.Identity.String())
		assert.Equal(t, session.BackendExtensionBridge, active.Backend)
		return nil
	})
	require.NoError(t, err)
}

func TestNewSubcommandGroup(t *testing.T) {
	child := &cobra.Command{Use: "child"}
	group := command.NewSubcommandGroup("group", child)

	assert.Equal(t, "group", group.Use)
	assert.Equal(t, []*cobra.Command{child}, group.Commands())
}
