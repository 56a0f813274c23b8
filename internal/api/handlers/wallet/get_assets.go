package wallet

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/types"
)

func GetAssetsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/assets", getAssetsHandler(s))
}

func getAssetsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identityParam(c, s)
		if err != nil {
			return err
		}

		owned, err := s.Wallet.OwnedAssets(c.Request().Context(), id)
		if err != nil {
			return err
		}

		response := &types.AssetsResponse{
			Identity: id.String(),
			Owned:    make([]types.OwnedAssetResponse, 0, len(owned)),
		}

		for _, a := range owned {
			response.Owned = append(response.Owned, types.OwnedAssetResponse{Name: a.Name, Issuer: a.Issuer, Units: a.Units})
		}

		for _, a := range s.Assets.List() {
			response.Known = append(response.Known, types.KnownAssetResponse{Name: a.Name, Issuer: a.Issuer.String()})
		}

		return c.JSON(http.StatusOK, response)
	}
}
