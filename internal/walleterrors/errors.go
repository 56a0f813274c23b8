package walleterrors

import (
	"errors"
	"net/http"
)

// Code identifies a wallet failure class.
type Code string

const (
	CodeNotConnected         Code = "NOT_CONNECTED"
	CodeUnsupportedBackend   Code = "UNSUPPORTED_BACKEND"
	CodeMissingSecret        Code = "MISSING_SECRET"
	CodeExtensionUnavailable Code = "EXTENSION_UNAVAILABLE"
	CodeUserRejected         Code = "USER_REJECTED"
	CodePairingLost          Code = "PAIRING_LOST"
	CodeTimeout              Code = "TIMEOUT"
	CodeInsufficientBalance  Code = "INSUFFICIENT_BALANCE"
	CodeMalformedSecret      Code = "MALFORMED_SECRET"
	CodeInvalidIdentity      Code = "INVALID_IDENTITY"
	CodeInvalidAmount        Code = "INVALID_AMOUNT"
	CodeUnknownAsset         Code = "UNKNOWN_ASSET"
)

var (
	ErrNotConnected         = New(CodeNotConnected, "no active session")
	ErrUnsupportedBackend   = New(CodeUnsupportedBackend, "unsupported signing backend")
	ErrMissingSecret        = New(CodeMissingSecret, "session has no secret")
	ErrExtensionUnavailable = New(CodeExtensionUnavailable, "extension bridge is not available")
	ErrUserRejected         = New(CodeUserRejected, "request rejected by user")
	ErrPairingLost          = New(CodePairingLost, "pairing session is not established")
	ErrTimeout              = New(CodeTimeout, "request timed out")
	ErrInsufficientBalance  = New(CodeInsufficientBalance, "insufficient balance")
	ErrMalformedSecret      = New(CodeMalformedSecret, "malformed secret")
	ErrInvalidIdentity      = New(CodeInvalidIdentity, "invalid identity")
	ErrInvalidAmount        = New(CodeInvalidAmount, "amount must be greater than zero")
	ErrUnknownAsset         = New(CodeUnknownAsset, "unknown asset")
)

var httpStatusMap = map[Code]int{
	CodeNotConnected:         http.StatusUnauthorized,
	CodeUnsupportedBackend:   http.StatusBadRequest,
	CodeMissingSecret:        http.StatusLocked,
	CodeExtensionUnavailable: http.StatusServiceUnavailable,
	CodeUserRejected:         http.StatusForbidden,
	CodePairingLost:          http.StatusConflict,
	CodeTimeout:              http.StatusGatewayTimeout,
	CodeInsufficientBalance:  http.StatusUnprocessableEntity,
	CodeMalformedSecret:      http.StatusBadRequest,
	CodeInvalidIdentity:      http.StatusBadRequest,
	CodeInvalidAmount:        http.StatusBadRequest,
	CodeUnknownAsset:         http.StatusNotFound,
}

// Error is a wallet error carrying a Code. Two errors match under errors.Is
// when their codes are equal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches code and message to cause. The cause stays reachable through errors.Unwrap.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// FromError returns the outermost wallet error in err's chain.
func FromError(err error) (*Error, bool) {
	var walletErr *Error
	if errors.As(err, &walletErr) {
		return walletErr, true
	}

	return nil, false
}

// CodeOf returns the code of err or an empty code when err is not a wallet error.
func CodeOf(err error) Code {
	if walletErr, ok := FromError(err); ok {
		return walletErr.Code
	}

	return ""
}

// HTTPStatus maps a code to a response status, defaulting to 500.
func HTTPStatus(code Code) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}
