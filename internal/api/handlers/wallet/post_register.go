package wallet

import (
	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
)

func PostRegisterRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/register", postRegisterHandler(s))
}

func postRegisterHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := activeSession(s)
		if err != nil {
			return err
		}

		res, err := s.Wallet.Register(c.Request().Context(), sess)
		return respondBroadcast(c, res, err)
	}
}
