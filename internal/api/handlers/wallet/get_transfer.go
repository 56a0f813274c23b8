package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/httperrors"
	"github/qdoge/go-wallet/internal/ledger"
)

func GetTransferRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/transfers/:id", getTransferHandler(s))
}

// getTransferHandler looks a transaction up in the transfer history of
// ?identity= (or the active session) between ?startTick= and ?endTick=.
func getTransferHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identityParam(c, s)
		if err != nil {
			return err
		}

		startTick, err := tickParam(c, "startTick")
		if err != nil {
			return err
		}
		endTick, err := tickParam(c, "endTick")
		if err != nil {
			return err
		}

		transfer, err := s.Ledger.FindTransfer(c.Request().Context(), id, c.Param("id"), startTick, endTick)
		if errors.Is(err, ledger.ErrTransferNotFound) {
			return httperrors.NewHTTPError(http.StatusNotFound, "TRANSFER_NOT_FOUND", "Transfer not found in the given tick range.")
		}
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, transfer)
	}
}

func tickParam(c echo.Context, name string) (uint32, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, httperrors.TypeBadRequest, "Missing tick range.", name+" is required")
	}

	tick, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, httperrors.TypeBadRequest, "Invalid tick.", name+" must be an unsigned number")
	}

	return uint32(tick), nil
}
