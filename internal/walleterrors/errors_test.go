package walleterrors_test

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/walleterrors"
)

func TestIsMatchesByCode(t *testing.T) {
	err := walleterrors.New(walleterrors.CodeUserRejected, "user closed the approval prompt")
	wrapped := pkgerrors.Wrap(err, "failed to sign transaction")

	assert.ErrorIs(t, wrapped, walleterrors.ErrUserRejected)
	assert.NotErrorIs(t, wrapped, walleterrors.ErrTimeout)
	assert.Equal(t, walleterrors.CodeUserRejected, walleterrors.CodeOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := walleterrors.Wrap(cause, walleterrors.CodeExtensionUnavailable, "bridge unreachable")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, walleterrors.ErrExtensionUnavailable)
	assert.Equal(t, "bridge unreachable: dial tcp: connection refused", err.Error())
}

func TestFromError(t *testing.T) {
	_, ok := walleterrors.FromError(errors.New("plain"))
	assert.False(t, ok)

	walletErr, ok := walleterrors.FromError(pkgerrors.WithStack(walleterrors.ErrPairingLost))
	require.True(t, ok)
	assert.Equal(t, walleterrors.CodePairingLost, walletErr.Code)
	assert.Empty(t, walleterrors.CodeOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[walleterrors.Code]int{
		walleterrors.CodeNotConnected:        http.StatusUnauthorized,
		walleterrors.CodeMissingSecret:       http.StatusLocked,
		walleterrors.CodeInsufficientBalance: http.StatusUnprocessableEntity,
		walleterrors.CodeTimeout:             http.StatusGatewayTimeout,
		walleterrors.Code("SOMETHING_ELSE"):  http.StatusInternalServerError,
	}

	for code, want := range cases {
		assert.Equal(t, want, walleterrors.HTTPStatus(code), code)
	}
}
