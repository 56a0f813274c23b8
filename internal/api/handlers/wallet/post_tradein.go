package wallet

import (
	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/types"
)

func PostTradeInRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/tradein", postTradeInHandler(s))
}

func postTradeInHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body types.PostTradeInPayload
		if err := c.Bind(&body); err != nil {
			return httperrors.ErrBadRequestInvalidBody
		}

		sess, err := activeSession(s)
		if err != nil {
			return err
		}

		res, err := s.Wallet.TradeIn(c.Request().Context(), sess, body.Units)
		return respondBroadcast(c, res, err)
	}
}
