package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/backend"
)

const identityA = "BZBQFLLBNCXEMGLOBHUVFTLUPLVCPQUASSILFABOFFBCADQSSUPNWLZBQEXK"

type recorded struct {
	method string
	path   string
	apiKey string
	body   map[string]any
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func backendServer(t *testing.T, status int, response string) (backend.Client, *recorder) {
	t.Helper()

	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recorded{method: r.Method, path: r.URL.Path, apiKey: r.Header.Get("X-API-Key")}
		_ = json.NewDecoder(r.Body).Decode(&call.body)

		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	return backend.NewClient(server.URL+"/", "secret-key", 0), rec
}

func TestConfirmRegistration(t *testing.T) {
	client, calls := backendServer(t, http.StatusOK, `{"success":true}`)

	err := client.ConfirmRegistration(context.Background(), backend.ConfirmRequest{WalletID: identityA, TxID: "abc"})
	require.NoError(t, err)

	require.Len(t, calls.all(), 1)
	call := calls.all()[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/v1/registration/confirm", call.path)
	assert.Empty(t, call.apiKey)
	assert.Equal(t, map[string]any{"walletId": identityA, "txId": "abc"}, call.body)
}

func TestConfirmFunding(t *testing.T) {
	client, calls := backendServer(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, client.ConfirmFunding(context.Background(), backend.ConfirmRequest{WalletID: identityA, TxID: "abc"}))
	assert.Equal(t, "/v1/funding/confirm", calls.all()[0].path)
}

func TestConfirmTradeIn(t *testing.T) {
	client, calls := backendServer(t, http.StatusOK, `{"success":true,"qxmr_amount":1000,"qdoge_amount":10}`)

	res, err := client.ConfirmTradeIn(context.Background(), backend.ConfirmRequest{WalletID: identityA, TxID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, &backend.TradeInResponse{Success: true, QXMRAmount: 1000, QDOGEAmount: 10}, res)
	assert.Equal(t, "/v1/tradein/confirm", calls.all()[0].path)
}

func TestRecordTransactionSendsAPIKey(t *testing.T) {
	client, calls := backendServer(t, http.StatusOK, `{"success":true}`)

	err := client.RecordTransaction(context.Background(), backend.TransactionLog{
		WalletID: identityA,
		From:     identityA,
		To:       identityA,
		TxID:     "abc",
		Type:     backend.TransactionTypeQDOGE,
		Amount:   5,
	})
	require.NoError(t, err)

	call := calls.all()[0]
	assert.Equal(t, "/v1/transaction/log", call.path)
	assert.Equal(t, "secret-key", call.apiKey)
	assert.Equal(t, "qdoge", call.body["type"])
	assert.InDelta(t, 5, call.body["amount"], 0)
}

func TestRecordTransactionWithoutKey(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:1", "", 0)

	err := client.RecordTransaction(context.Background(), backend.TransactionLog{TxID: "abc"})
	require.Error(t, err)
}

func TestErrorDetail(t *testing.T) {
	client, _ := backendServer(t, http.StatusBadRequest, `{"detail":"transaction not finalized (money did not fly)"}`)

	err := client.ConfirmRegistration(context.Background(), backend.ConfirmRequest{WalletID: identityA, TxID: "abc"})

	var backendErr *backend.Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	assert.Equal(t, "transaction not finalized (money did not fly)", backendErr.Detail)
}

func TestConfig(t *testing.T) {
	client, _ := backendServer(t, http.StatusOK, `{
		"rules":{"registration_fee_qu":100},
		"addresses":{"registration":"REG","burn":"BURN"},
		"tradein":{"qx_contract_id":"QX","qxmr_issuer_id":"ISSUER","tradein_ratio_qdoge_per_qxmr":100}
	}`)

	cfg, err := client.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), cfg.Rules.RegistrationFeeQU)
	assert.Equal(t, "REG", cfg.Addresses.Registration)
	assert.Equal(t, "BURN", cfg.Addresses.Burn)
	assert.Equal(t, "ISSUER", cfg.TradeIn.QXMRIssuerID)
	assert.Equal(t, uint64(100), cfg.TradeIn.TradeInRatioQDOGEPerQXMR)
}
