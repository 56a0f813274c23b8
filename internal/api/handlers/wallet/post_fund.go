package wallet

import (
	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/types"
)

func PostFundRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/fund", postFundHandler(s))
}

func postFundHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostFundPayload
		if err := c.Bind(&body); err != nil {
			return httperrors.ErrBadRequestInvalidBody
		}

		sess, err := activeSession(s)
		if err != nil {
			return err
		}

		res, err := s.Wallet.Fund(c.Request().Context(), sess, body.Amount)
		return respondBroadcast(c, res, err)
	}
}
