package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/keystore"
)

func PostUnlockRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Session.POST("/unlock", postUnlockHandler(s))
}

func postUnlockHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostUnlockPayload
		if err := c.Bind(&body); err != nil || body.Passphrase == "" {
			return httperrors.ErrBadRequestInvalidBody
		}

		err := wallet.UnlockFromKeystore(c.Request().Context(), s.Sessions, s.Keystore, body.Passphrase)
		if errors.Is(err, keystore.ErrNoKeystore) {
			return httperrors.ErrConflictNoKeystore
		}
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, sessionResponse(s.Sessions.Active()))
	}
}
