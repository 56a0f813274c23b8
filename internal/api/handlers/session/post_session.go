package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/wallet/session"
)

func PostSessionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Session.POST("", postSessionHandler(s))
}

func postSessionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSessionPayload
		if err := c.Bind(&body); err != nil {
			return httperrors.ErrBadRequestInvalidBody
		}

		backend, err := session.ParseBackend(body.Backend)
		if err != nil {
			return err
		}

		var sess *session.Session
		switch backend {
		case session.BackendLocalSecret:
			sess, err = connectLocal(ctx, s, body)
		case session.BackendExtensionBridge:
			sess, err = connectBridge(ctx, s, body)
		case session.BackendRemotePairing:
			sess, err = connectPairing(ctx, s, body)
		}
		if err != nil {
			log.Debug().Err(err).Str("backend", backend.String()).Msg("Failed to connect session")
			return err
		}

		return c.JSON(http.StatusOK, sessionResponse(sess))
	}
}

func connectLocal(ctx context.Context, s *api.Server, body types.PostSessionPayload) (*session.Session, error) {
	secret, err := seed.Parse(body.Seed)
	if err != nil {
		return nil, err
	}

	return wallet.ConnectLocal(ctx, s.Sessions, s.Keystore, secret, body.Alias, body.Passphrase)
}

func connectBridge(ctx context.Context, s *api.Server, body types.PostSessionPayload) (*session.Session, error) {
	accountIdx := s.Config.Bridge.AccountIndex
	if body.AccountIndex != nil {
		accountIdx = *body.AccountIndex
	}
	if accountIdx < 0 {
		return nil, httperrors.ErrBadRequestInvalidBody
	}

	id, err := s.Bridge.GetPublicID(ctx, accountIdx, false)
	if err != nil {
		return nil, err
	}

	if err := s.Sessions.Connect(ctx, &session.Session{
		Backend:      session.BackendExtensionBridge,
		Identity:     id,
		Alias:        body.Alias,
		AccountIndex: accountIdx,
	}); err != nil {
		return nil, err
	}

	return s.Sessions.Active(), nil
}

func connectPairing(ctx context.Context, s *api.Server, body types.PostSessionPayload) (*session.Session, error) {
	id, err := s.Pairing.AwaitApproval(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pairing was not approved")
	}

	if err := s.Sessions.Connect(ctx, &session.Session{
		Backend:  session.BackendRemotePairing,
		Identity: id,
		Alias:    body.Alias,
	}); err != nil {
		return nil, err
	}

	return s.Sessions.Active(), nil
}
