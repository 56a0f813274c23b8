package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/types"
)

func PostPairingRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Session.POST("/pairing", postPairingHandler(s))
}

// postPairingHandler proposes a relay pairing. The URI is shown to the user,
// who approves it on the remote device before connecting the session.
func postPairingHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := s.Pairing.Propose(c.Request().Context())
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, &types.PairingResponse{Topic: p.Topic, URI: p.URI})
	}
}
