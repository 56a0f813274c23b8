package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/handlers"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/api/middleware"
)

// Init creates the echo instance, its middlewares and route groups, and
// attaches every handler.
func Init(s *api.Server) {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandler

	s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())

	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(middleware.LoggerWithConfig(s.Config.Logger.LogRequests))

	s.Router = &api.Router{
		Routes:       nil,
		Root:         s.Echo.Group(""),
		Management:   s.Echo.Group("/-"),
		APIV1Session: s.Echo.Group("/api/v1/session"),
		APIV1Wallet:  s.Echo.Group("/api/v1"),
	}

	handlers.AttachAllRoutes(s)

	log.Debug().Int("routes", len(s.Router.Routes)).Msg("Routes attached")
}
