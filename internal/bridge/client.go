// Package bridge talks to the browser-extension snap through a local JSON-RPC bridge.
package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// Client is a lazily dialed JSON-RPC client for the extension bridge.
type Client struct {
	url    string
	snapID string

	mu  sync.Mutex
	rpc *rpc.Client
}

// NewClient returns a Client for url. An empty url yields a client that reports
// the extension as unavailable on every call.
func NewClient(url string, snapID string) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		snapID: snapID,
	}
}

// Available reports whether a bridge endpoint is configured.
func (c *Client) Available() bool {
	return c != nil && c.url != ""
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rpc != nil {
		c.rpc.Close()
		c.rpc = nil
	}
}

// GetPublicID returns the identity held by the extension at accountIdx.
func (c *Client) GetPublicID(ctx context.Context, accountIdx int, confirm bool) (identity.Identity, error) {
	var out string
	if err := c.invoke(ctx, MethodGetPublicID, GetPublicIDParams{AccountIdx: accountIdx, Confirm: confirm}, &out); err != nil {
		return identity.Identity{}, err
	}

	id, err := identity.Parse(out)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "extension returned an invalid identity")
	}

	return id, nil
}

// SignTransaction asks the extension to sign base64Tx, the transaction bytes
// before offset. It returns the base64 signature text.
func (c *Client) SignTransaction(ctx context.Context, base64Tx string, accountIdx int, offset int) (string, error) {
	var out SignTransactionResult
	params := SignTransactionParams{Base64Tx: base64Tx, AccountIdx: accountIdx, Offset: offset}
	if err := c.invoke(ctx, MethodSignTransaction, params, &out); err != nil {
		return "", err
	}

	if out.SignedTx == "" {
		return "", errors.New("extension returned an empty signature")
	}

	return out.SignedTx, nil
}

func (c *Client) invoke(ctx context.Context, method string, params any, out any) error {
	if !c.Available() {
		return walleterrors.ErrExtensionUnavailable
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "failed to encode snap params")
	}

	client, err := c.client(ctx)
	if err != nil {
		return err
	}

	req := InvokeSnapParams{
		SnapID:  c.snapID,
		Request: SnapRequest{Method: method, Params: raw},
	}

	if err := client.CallContext(ctx, out, InvokeSnapMethod, req); err != nil {
		return mapError(ctx, method, err)
	}

	return nil
}

func (c *Client) client(ctx context.Context) (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rpc != nil {
		return c.rpc, nil
	}

	client, err := rpc.DialContext(ctx, c.url)
	if err != nil {
		log.Warn().Err(err).Str("url", c.url).Msg("Failed to dial extension bridge")
		return nil, walleterrors.Wrap(err, walleterrors.CodeExtensionUnavailable, "extension bridge is not available")
	}

	c.rpc = client
	return client, nil
}

func mapError(ctx context.Context, method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.ErrorCode() == userRejectedRequestCode {
			return walleterrors.Wrap(err, walleterrors.CodeUserRejected, "request rejected in extension")
		}
		return errors.Wrapf(err, "extension %s failed", method)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrapf(ctxErr, "extension %s interrupted", method)
	}

	return walleterrors.Wrap(err, walleterrors.CodeExtensionUnavailable, "extension bridge is not available")
}
