package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/wallet/identity"
)

func PostAssetTransferRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/asset-transfers", postAssetTransferHandler(s))
}

func postAssetTransferHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body types.PostAssetTransferPayload
		if err := c.Bind(&body); err != nil {
			return httperrors.ErrBadRequestInvalidBody
		}

		sess, err := activeSession(s)
		if err != nil {
			return err
		}

		to, err := identity.Parse(body.To)
		if err != nil {
			return err
		}

		res, err := s.Wallet.SendAsset(ctx, sess, to, body.Asset, body.Units)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, res)
	}
}
