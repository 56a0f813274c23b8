// Package backend reports broadcast transactions to the application backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/util"
)

const (
	apiKeyHeader   = "X-API-Key"
	defaultTimeout = 30 * time.Second
)

// Client is the backend bookkeeping surface. Every call happens after a
// successful broadcast.
type Client interface {
	Config(ctx context.Context) (*RemoteConfig, error)
	ConfirmRegistration(ctx context.Context, req ConfirmRequest) error
	ConfirmFunding(ctx context.Context, req ConfirmRequest) error
	ConfirmTradeIn(ctx context.Context, req ConfirmRequest) (*TradeInResponse, error)
	RecordTransaction(ctx context.Context, entry TransactionLog) error
}

type client struct {
	base   string
	apiKey string
	http   *http.Client
}

// NewClient returns a client for baseURL. apiKey is only sent on admin routes.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewClient(baseURL string, apiKey string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *client) Config(ctx context.Context) (*RemoteConfig, error) {
	var out RemoteConfig
	if err := c.do(ctx, http.MethodGet, "/v1/config", nil, &out, false); err != nil {
		return nil, errors.Wrap(err, "failed to get backend config")
	}

	return &out, nil
}

func (c *client) ConfirmRegistration(ctx context.Context, req ConfirmRequest) error {
	var out ConfirmResponse
	if err := c.do(ctx, http.MethodPost, "/v1/registration/confirm", req, &out, false); err != nil {
		return errors.Wrap(err, "failed to confirm registration")
	}

	return nil
}

func (c *client) ConfirmFunding(ctx context.Context, req ConfirmRequest) error {
	var out ConfirmResponse
	if err := c.do(ctx, http.MethodPost, "/v1/funding/confirm", req, &out, false); err != nil {
		return errors.Wrap(err, "failed to confirm funding")
	}

	return nil
}

func (c *client) ConfirmTradeIn(ctx context.Context, req ConfirmRequest) (*TradeInResponse, error) {
	var out TradeInResponse
	if err := c.do(ctx, http.MethodPost, "/v1/tradein/confirm", req, &out, false); err != nil {
		return nil, errors.Wrap(err, "failed to confirm trade-in")
	}

	return &out, nil
}

func (c *client) RecordTransaction(ctx context.Context, entry TransactionLog) error {
	if c.apiKey == "" {
		return errors.New("backend API key is not configured")
	}

	var out ConfirmResponse
	if err := c.do(ctx, http.MethodPost, "/v1/transaction/log", entry, &out, true); err != nil {
		return errors.Wrap(err, "failed to record transaction")
	}

	return nil
}

func (c *client) do(ctx context.Context, method string, path string, in any, out any, admin bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "backend request %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e errorBody
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			util.LogFromContext(ctx).Debug().Err(err).Int("status", resp.StatusCode).Msg("Backend error body is not JSON")
		}
		return &Error{StatusCode: resp.StatusCode, Detail: e.Detail}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode backend response")
	}

	return nil
}
