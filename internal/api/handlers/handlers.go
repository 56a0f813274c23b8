package handlers

import (
	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/handlers/common"
	"github/qdoge/go-wallet/internal/api/handlers/session"
	"github/qdoge/go-wallet/internal/api/handlers/wallet"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		common.GetTickRoute(s),
		session.DeleteSessionRoute(s),
		session.GetSessionRoute(s),
		session.PostPairingRoute(s),
		session.PostSessionRoute(s),
		session.PostUnlockRoute(s),
		wallet.GetAssetsRoute(s),
		wallet.GetBalanceRoute(s),
		wallet.GetTransferRoute(s),
		wallet.PostAssetTransferRoute(s),
		wallet.PostFundRoute(s),
		wallet.PostRegisterRoute(s),
		wallet.PostTradeInRoute(s),
		wallet.PostTransferRoute(s),
	}
}
