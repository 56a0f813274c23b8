// Package ledger is a REST client for the Qubic ledger RPC with endpoint failover.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/qdoge/go-wallet/internal/metrics"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/tx"
)

const defaultTimeout = 20 * time.Second

var (
	ErrNoEndpoints      = errors.New("at least one ledger URL is required")
	ErrTransferNotFound = errors.New("transaction not found in transfer history")
)

// StatusError is a non-2xx ledger response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ledger returned HTTP %d for %s", e.StatusCode, e.URL)
}

// Config configures RPCClient.
type Config struct {
	// URLs are tried in order; the first healthy one sticks.
	URLs []string
	// AssetsURLs serve the owned-assets query. Empty means URLs.
	AssetsURLs []string
	Timeout    time.Duration
}

// RPCClient implements Client over one or more ledger base URLs.
type RPCClient struct {
	rpc     *endpoints
	assets  *endpoints
	http    *http.Client
	metrics *metrics.Service
}

var _ Client = (*RPCClient)(nil)

type endpoints struct {
	urls []string

	mu      sync.RWMutex
	current int
}

func newEndpoints(urls []string) *endpoints {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u != "" {
			cleaned = append(cleaned, u)
		}
	}

	return &endpoints{urls: cleaned}
}

func (e *endpoints) start() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.current
}

func (e *endpoints) use(idx int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = idx
}

// NewRPCClient creates a client. m may be nil.
func NewRPCClient(cfg Config, m *metrics.Service) (*RPCClient, error) {
	rpc := newEndpoints(cfg.URLs)
	if len(rpc.urls) == 0 {
		return nil, ErrNoEndpoints
	}

	assets := rpc
	if len(cfg.AssetsURLs) > 0 {
		assets = newEndpoints(cfg.AssetsURLs)
		if len(assets.urls) == 0 {
			assets = rpc
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &RPCClient{
		rpc:     rpc,
		assets:  assets,
		http:    &http.Client{Timeout: timeout},
		metrics: m,
	}, nil
}

// CurrentTick returns the latest tick reported by the ledger.
func (c *RPCClient) CurrentTick(ctx context.Context) (uint32, error) {
	var resp tickInfoResponse
	if err := c.do(ctx, c.rpc, http.MethodGet, "/v1/tick-info", nil, &resp); err != nil {
		return 0, errors.Wrap(err, "failed to get tick info")
	}

	if resp.TickInfo == nil {
		return 0, errors.New("tick-info response missing tick")
	}

	return uint32(resp.TickInfo.Tick), nil //nolint:gosec // ticks fit in uint32
}

// Balance returns the QU balance of id.
func (c *RPCClient) Balance(ctx context.Context, id identity.Identity) (uint64, error) {
	var resp balanceResponse
	if err := c.do(ctx, c.rpc, http.MethodGet, "/v1/balances/"+id.String(), nil, &resp); err != nil {
		return 0, errors.Wrap(err, "failed to get balance")
	}

	if resp.Balance == nil {
		return 0, errors.New("balances response missing balance")
	}

	return uint64(resp.Balance.Balance), nil
}

// OwnedAssets lists the asset holdings of id.
func (c *RPCClient) OwnedAssets(ctx context.Context, id identity.Identity) ([]OwnedAsset, error) {
	var resp ownedAssetsResponse
	if err := c.do(ctx, c.assets, http.MethodGet, "/v1/assets/"+id.String()+"/owned", nil, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to get owned assets")
	}

	entries := resp.OwnedAssets
	if entries == nil && resp.Data != nil {
		entries = resp.Data.OwnedAssets
	}

	out := make([]OwnedAsset, 0, len(entries))
	for _, e := range entries {
		out = append(out, OwnedAsset{
			Name:   e.Data.IssuedAsset.Name,
			Issuer: e.Data.IssuedAsset.IssuerIdentity,
			Units:  uint64(e.Data.NumberOfUnits),
		})
	}

	return out, nil
}

// Broadcast submits signed bytes and returns the transaction id the ledger assigned.
func (c *RPCClient) Broadcast(ctx context.Context, signed *tx.Signed) (*BroadcastResult, error) {
	var resp broadcastResponse
	req := broadcastRequest{EncodedTransaction: signed.Base64()}
	if err := c.do(ctx, c.rpc, http.MethodPost, "/v1/broadcast-transaction", req, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to broadcast transaction")
	}

	res := &BroadcastResult{
		TransactionID:    resp.TransactionID,
		PeersBroadcasted: resp.PeersBroadcasted,
	}
	if res.TransactionID == "" {
		res.TransactionID = signed.ID()
	}

	return res, nil
}

// FindTransfer searches the transfer history of id between the given ticks.
// A transfer that is found but did not execute has MoneyFlew false.
func (c *RPCClient) FindTransfer(ctx context.Context, id identity.Identity, txID string, startTick uint32, endTick uint32) (*Transfer, error) {
	query := url.Values{}
	query.Set("startTick", strconv.FormatUint(uint64(startTick), 10))
	query.Set("endTick", strconv.FormatUint(uint64(endTick), 10))

	var lastErr error
	for _, version := range []string{"v2", "v1"} {
		path := "/" + version + "/identities/" + id.String() + "/transfers?" + query.Encode()

		var resp transfersResponse
		if err := c.do(ctx, c.rpc, http.MethodGet, path, nil, &resp); err != nil {
			lastErr = err
			continue
		}

		for _, group := range resp.groups() {
			for _, entry := range group.Transactions {
				if entry.Transaction.TxID != txID {
					continue
				}

				t := entry.Transaction
				return &Transfer{
					ID:          t.TxID,
					Source:      t.SourceID,
					Destination: t.DestID,
					Amount:      uint64(t.Amount),
					Tick:        uint32(t.TickNumber), //nolint:gosec // ticks fit in uint32
					InputType:   uint16(t.InputType),  //nolint:gosec // wire field is uint16
					InputSize:   uint16(t.InputSize),  //nolint:gosec // wire field is uint16
					InputHex:    t.InputHex,
					MoneyFlew:   entry.MoneyFlew,
				}, nil
			}
		}

		return nil, ErrTransferNotFound
	}

	return nil, errors.Wrap(lastErr, "failed to get transfer history")
}

// do tries the endpoints starting at the last healthy one. Transport failures
// and 5xx responses move on to the next endpoint.
func (c *RPCClient) do(ctx context.Context, ep *endpoints, method string, path string, in any, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
	}

	start := ep.start()
	var lastErr error

	for i := range ep.urls {
		idx := (start + i) % len(ep.urls)

		err := c.doOnce(ctx, ep.urls[idx]+path, method, body, out)
		if err == nil {
			if idx != start {
				ep.use(idx)
			}
			return nil
		}

		if !retryable(err) || ctx.Err() != nil {
			return err
		}

		lastErr = err
		if i < len(ep.urls)-1 {
			log.Warn().
				Str("url", ep.urls[idx]).
				Err(err).
				Msg("Ledger endpoint failed, trying next")
			c.metrics.IncLedgerFailover()
		}
	}

	return errors.Wrap(lastErr, "all ledger endpoints are unavailable")
}

func (c *RPCClient) doOnce(ctx context.Context, target string, method string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "ledger request %s %s", method, target)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", target)
	}

	return nil
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}

	return true
}
