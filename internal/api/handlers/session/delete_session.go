package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
)

func DeleteSessionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Session.DELETE("", deleteSessionHandler(s))
}

// deleteSessionHandler disconnects the active session. Disconnecting without
// a session is a no-op.
func deleteSessionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.Sessions.Disconnect(c.Request().Context()); err != nil {
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}
