package ledger_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/ledger"
	"github/qdoge/go-wallet/internal/metrics"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/keys"
	"github/qdoge/go-wallet/internal/wallet/tx"
)

const identityA = "BZBQFLLBNCXEMGLOBHUVFTLUPLVCPQUASSILFABOFFBCADQSSUPNWLZBQEXK"

func ledgerServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server.URL
}

func newClient(t *testing.T, cfg ledger.Config, m *metrics.Service) *ledger.RPCClient {
	t.Helper()

	client, err := ledger.NewRPCClient(cfg, m)
	require.NoError(t, err)

	return client
}

func TestNewRPCClientRequiresURL(t *testing.T) {
	_, err := ledger.NewRPCClient(ledger.Config{URLs: []string{" ", ""}}, nil)
	require.ErrorIs(t, err, ledger.ErrNoEndpoints)
}

func TestCurrentTick(t *testing.T) {
	url := ledgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tick-info", r.URL.Path)
		_, _ = io.WriteString(w, `{"tickInfo":{"tick":15634120,"duration":1,"epoch":152,"initialTick":15630000}}`)
	})

	tick, err := newClient(t, ledger.Config{URLs: []string{url + "/"}}, nil).CurrentTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(15634120), tick)
}

func TestCurrentTickMissing(t *testing.T) {
	url := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := newClient(t, ledger.Config{URLs: []string{url}}, nil).CurrentTick(context.Background())
	require.Error(t, err)
}

func TestBalanceAcceptsStringNumbers(t *testing.T) {
	url := ledgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balances/"+identityA, r.URL.Path)
		_, _ = io.WriteString(w, `{"balance":{"id":"`+identityA+`","balance":"123456789"}}`)
	})

	balance, err := newClient(t, ledger.Config{URLs: []string{url}}, nil).Balance(context.Background(), identity.MustParse(identityA))
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), balance)
}

func TestOwnedAssets(t *testing.T) {
	rpcURL := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	assetsURL := ledgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/assets/"+identityA+"/owned", r.URL.Path)
		_, _ = io.WriteString(w, `{"ownedAssets":[
			{"data":{"numberOfUnits":"42","issuedAsset":{"name":"QXMR","issuerIdentity":"QXMRTKAIIGLUREPIQPCMHCKWSIPDTUYFCFNYXQLTECSUJVYEMMDELBMDOEYB"}}},
			{"data":{"numberOfUnits":7,"issuedAsset":{"name":"CFB","issuerIdentity":"CFBMEMZOIDEXQAUXYYSZIURADQLAPWPMNJXQSNVQZAHYVOPYUKKJBJUCTVJL"}}}
		]}`)
	})

	client := newClient(t, ledger.Config{URLs: []string{rpcURL}, AssetsURLs: []string{assetsURL}}, nil)
	owned, err := client.OwnedAssets(context.Background(), identity.MustParse(identityA))
	require.NoError(t, err)

	assert.Equal(t, []ledger.OwnedAsset{
		{Name: "QXMR", Issuer: "QXMRTKAIIGLUREPIQPCMHCKWSIPDTUYFCFNYXQLTECSUJVYEMMDELBMDOEYB", Units: 42},
		{Name: "CFB", Issuer: "CFBMEMZOIDEXQAUXYYSZIURADQLAPWPMNJXQSNVQZAHYVOPYUKKJBJUCTVJL", Units: 7},
	}, owned)
}

func TestOwnedAssetsNestedData(t *testing.T) {
	url := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"ownedAssets":[{"data":{"numberOfUnits":"1","issuedAsset":{"name":"QCAP","issuerIdentity":"X"}}}]}}`)
	})

	owned, err := newClient(t, ledger.Config{URLs: []string{url}}, nil).OwnedAssets(context.Background(), identity.MustParse(identityA))
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "QCAP", owned[0].Name)
}

func signedTransfer(t *testing.T) *tx.Signed {
	t.Helper()

	unsigned, err := (&tx.Transaction{
		Source:      identity.MustParse(identityA),
		Destination: identity.FromContractIndex(0),
		Amount:      1,
		Tick:        10,
	}).Build()
	require.NoError(t, err)

	// the ledger client does not check signatures
	b := unsigned.Bytes
	b[len(b)-keys.SignatureSize] = 1

	signed, err := tx.NewSigned(b)
	require.NoError(t, err)

	return signed
}

func TestBroadcast(t *testing.T) {
	signed := signedTransfer(t)

	url := ledgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/broadcast-transaction", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, signed.Base64(), body["encodedTransaction"])

		_, _ = io.WriteString(w, `{"peersBroadcasted":3,"encodedTransaction":"x","transactionId":"`+signed.ID()+`"}`)
	})

	res, err := newClient(t, ledger.Config{URLs: []string{url}}, nil).Broadcast(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, signed.ID(), res.TransactionID)
	assert.Equal(t, 3, res.PeersBroadcasted)
}

func TestFailover(t *testing.T) {
	var firstHits, secondHits atomic.Int32

	first := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		firstHits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	second := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		secondHits.Add(1)
		_, _ = io.WriteString(w, `{"tickInfo":{"tick":77}}`)
	})

	m := metrics.New()
	client := newClient(t, ledger.Config{URLs: []string{first, second}}, m)

	tick, err := client.CurrentTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(77), tick)

	// the healthy endpoint sticks
	_, err = client.CurrentTick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), firstHits.Load())
	assert.Equal(t, int32(2), secondHits.Load())

	expected := `
# HELP qwallet_ledger_failover_total Ledger requests retried against another RPC endpoint
# TYPE qwallet_ledger_failover_total counter
qwallet_ledger_failover_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "qwallet_ledger_failover_total"))
}

func TestNoFailoverOnClientError(t *testing.T) {
	var secondHits atomic.Int32

	first := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	second := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		secondHits.Add(1)
	})

	_, err := newClient(t, ledger.Config{URLs: []string{first, second}}, nil).CurrentTick(context.Background())

	var statusErr *ledger.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Zero(t, secondHits.Load())
}

func TestAllEndpointsDown(t *testing.T) {
	down := ledgerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newClient(t, ledger.Config{URLs: []string{down, down}}, nil).Balance(context.Background(), identity.MustParse(identityA))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all ledger endpoints are unavailable")
}

func TestFindTransfer(t *testing.T) {
	url := ledgerServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v2/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		assert.Equal(t, "/v1/identities/"+identityA+"/transfers", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("startTick"))
		assert.Equal(t, "200", r.URL.Query().Get("endTick"))

		_, _ = io.WriteString(w, `{"transactions":[{"tickNumber":150,"transactions":[
			{"transaction":{"txId":"other","sourceId":"A","destId":"B","amount":"1","tickNumber":150},"moneyFlew":true},
			{"transaction":{"txId":"wanted","sourceId":"A","destId":"B","amount":"1000","tickNumber":150,"inputType":2,"inputSize":80,"inputHex":"00"},"moneyFlew":true}
		]}]}`)
	})

	client := newClient(t, ledger.Config{URLs: []string{url}}, nil)

	transfer, err := client.FindTransfer(context.Background(), identity.MustParse(identityA), "wanted", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, &ledger.Transfer{
		ID:          "wanted",
		Source:      "A",
		Destination: "B",
		Amount:      1000,
		Tick:        150,
		InputType:   2,
		InputSize:   80,
		InputHex:    "00",
		MoneyFlew:   true,
	}, transfer)

	_, err = client.FindTransfer(context.Background(), identity.MustParse(identityA), "missing", 100, 200)
	require.ErrorIs(t, err, ledger.ErrTransferNotFound)
}
