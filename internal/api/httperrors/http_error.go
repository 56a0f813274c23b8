package httperrors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// HTTPError is the JSON error body returned by every endpoint.
type HTTPError struct {
	Code     int    `json:"status"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
	Internal error  `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewHTTPErrorWithDetail(code int, errorType string, title string, detail string) *HTTPError {
	return &HTTPError{
		Code:   code,
		Type:   errorType,
		Title:  title,
		Detail: detail,
	}
}

func (e *HTTPError) Error() string {
	var msg string
	if len(e.Detail) > 0 {
		msg = fmt.Sprintf("HTTPError %d (%s): %s - %s", e.Code, e.Type, e.Title, e.Detail)
	} else {
		msg = fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	}

	if e.Internal != nil {
		msg = fmt.Sprintf("%s, %v", msg, e.Internal)
	}

	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// FromError converts err into an HTTPError. Wallet errors keep their code as
// type and get the matching status; anything else is a generic 500.
func FromError(err error) *HTTPError {
	if httpErr, ok := err.(*HTTPError); ok { //nolint:errorlint // only direct values carry a response body
		return httpErr
	}

	if walletErr, ok := walleterrors.FromError(err); ok {
		return &HTTPError{
			Code:     walleterrors.HTTPStatus(walletErr.Code),
			Type:     string(walletErr.Code),
			Title:    walletErr.Message,
			Internal: err,
		}
	}

	if echoErr, ok := err.(*echo.HTTPError); ok { //nolint:errorlint // echo returns these unwrapped
		return &HTTPError{
			Code:     echoErr.Code,
			Type:     TypeGeneric,
			Title:    http.StatusText(echoErr.Code),
			Detail:   fmt.Sprint(echoErr.Message),
			Internal: err,
		}
	}

	return &HTTPError{
		Code:     http.StatusInternalServerError,
		Type:     TypeGeneric,
		Title:    http.StatusText(http.StatusInternalServerError),
		Internal: err,
	}
}

// HTTPErrorHandler is set as echo's error handler.
func HTTPErrorHandler(err error, c echo.Context) {
	httpErr := FromError(err)

	if httpErr.Code >= http.StatusInternalServerError {
		util.LogFromContext(c.Request().Context()).Error().Err(err).Msg("Request failed")
	} else {
		util.LogFromContext(c.Request().Context()).Debug().Err(err).Msg("Request rejected")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpErr.Code)
	} else {
		err = c.JSON(httpErr.Code, httpErr)
	}
	if err != nil {
		util.LogFromContext(c.Request().Context()).Warn().Err(err).Msg("Failed to send error response")
	}
}
