package httperrors

import "net/http"

const (
	TypeGeneric    = "generic"
	TypeBadRequest = "BAD_REQUEST"
)

var (
	ErrBadRequestInvalidBody     = NewHTTPError(http.StatusBadRequest, TypeBadRequest, "Request body is not valid.")
	ErrBadRequestInvalidIdentity = NewHTTPError(http.StatusBadRequest, "INVALID_IDENTITY", "Identity is not valid.")
	ErrConflictNoKeystore        = NewHTTPError(http.StatusConflict, "NO_KEYSTORE", "No keystore to unlock the session from.")
)
