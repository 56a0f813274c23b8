package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/api/router"
	"github/qdoge/go-wallet/internal/config"
)

// NewTestConfig returns a config with its data directory in a temp dir and
// the ledger pointed at ledgerURL.
func NewTestConfig(t *testing.T, ledgerURL string) config.Server {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Logger.LogRequests = false
	cfg.Ledger.URLs = []string{ledgerURL}
	cfg.Ledger.AssetsURLs = nil
	cfg.Ledger.Timeout = 5 * time.Second
	cfg.Bridge.URL = ""
	cfg.Pairing.URL = ""
	cfg.Backend.URL = ""
	cfg.Keystore.ScryptN = 16
	cfg.Keystore.ScryptR = 1
	cfg.Paths.DataDir = t.TempDir()

	return cfg
}

// WithTestServer runs closure against a fully initialized server backed by
// a FakeLedger.
func WithTestServer(t *testing.T, closure func(s *api.Server, l *FakeLedger)) {
	t.Helper()

	l := NewFakeLedger(t)
	WithTestServerConfigurable(t, NewTestConfig(t, l.URL), func(s *api.Server) {
		t.Helper()
		closure(s, l)
	})
}

// WithTestServerConfigurable runs closure against a server initialized from cfg.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServer(cfg)
	require.NoError(t, err, "failed to init server")

	router.Init(s)

	closure(s)

	errs := s.Shutdown(context.Background())
	for _, err := range errs {
		require.NoError(t, err, "failed to shutdown server")
	}
}

// PerformRequest runs one request through the server's echo instance.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "failed to encode request body")
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, "application/json")
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseAndValidate decodes the JSON body of res into v.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v), "failed to parse response body: %s", res.Body.String())
}
