package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/wallet/identity"
)

func GetBalanceRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/balance", getBalanceHandler(s))
}

// getBalanceHandler returns the balance of ?identity=, or of the active session.
func getBalanceHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identityParam(c, s)
		if err != nil {
			return err
		}

		balance, err := s.Wallet.Balance(c.Request().Context(), id)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &types.BalanceResponse{Identity: id.String(), Balance: balance})
	}
}

func identityParam(c echo.Context, s *api.Server) (identity.Identity, error) {
	if raw := c.QueryParam("identity"); raw != "" {
		return identity.Parse(raw)
	}

	sess, err := activeSession(s)
	if err != nil {
		return identity.Identity{}, err
	}

	return sess.Identity, nil
}
