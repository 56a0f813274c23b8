package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/types"
)

func GetTickRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/tick", getTickHandler(s))
}

func getTickHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		tick, err := s.Ledger.CurrentTick(c.Request().Context())
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &types.TickResponse{Tick: tick})
	}
}
