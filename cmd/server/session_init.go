package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/util/command"
)

// initializeSession unlocks a restored local-secret session at startup so
// transfers do not wait for a later unlock request.
func initializeSession(ctx context.Context, s *api.Server) error {
	log := log.With().Str("component", "session_init").Logger()

	active := s.Sessions.Active()
	if active == nil {
		log.Info().Msg("No persisted session. Connect one through the API or the session command.")
		return nil
	}

	if !active.Locked() {
		log.Info().Str("backend", active.Backend.String()).Str("identity", active.Identity.String()).Msg("Session restored")
		return nil
	}

	if err := command.EnsureUnlocked(ctx, s); err != nil {
		return errors.Wrap(err, "failed to unlock session")
	}

	log.Info().Str("identity", active.Identity.String()).Msg("Session unlocked")

	return nil
}
