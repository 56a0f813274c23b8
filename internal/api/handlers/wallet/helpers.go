package wallet

import (
	"net/http"
	"reflect"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/session"
	"github/qdoge/go-wallet/internal/walleterrors"
)

func activeSession(s *api.Server) (*session.Session, error) {
	sess := s.Sessions.Active()
	if sess == nil {
		return nil, walleterrors.ErrNotConnected
	}

	return sess, nil
}

type confirmationFailed struct {
	Result            any    `json:"result"`
	ConfirmationError string `json:"confirmationError"`
}

// respondBroadcast answers a use case that may fail after its transaction was
// broadcast. The transaction is out in that case, so the caller gets it back
// with 202 and the backend error instead of a plain failure.
func respondBroadcast(c echo.Context, result any, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, result)
	}

	if result == nil || reflect.ValueOf(result).IsNil() {
		return err
	}

	util.LogFromContext(c.Request().Context()).Warn().Err(err).Msg("Transaction broadcast but backend confirmation failed")

	return c.JSON(http.StatusAccepted, &confirmationFailed{Result: result, ConfirmationError: err.Error()})
}
