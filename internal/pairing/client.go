// Package pairing drives signing requests to a remote device over a store-and-forward relay.
package pairing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/util"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const (
	defaultRequestTimeout = 5 * time.Minute
	defaultPollInterval   = time.Second
)

// Config configures the relay client.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	Label          string
}

// Client speaks the relay's JSON-over-HTTP protocol.
type Client struct {
	base           string
	http           *http.Client
	requestTimeout time.Duration
	pollInterval   time.Duration
	label          string
	topics         *TopicStore
}

func NewClient(cfg Config, topics *TopicStore) *Client {
	c := &Client{
		base:           strings.TrimRight(cfg.BaseURL, "/"),
		http:           &http.Client{},
		requestTimeout: cfg.RequestTimeout,
		pollInterval:   cfg.PollInterval,
		label:          cfg.Label,
		topics:         topics,
	}

	if c.requestTimeout <= 0 {
		c.requestTimeout = defaultRequestTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	if c.topics == nil {
		c.topics = NewTopicStore("")
	}

	return c
}

// Propose opens a new pairing and remembers its topic. The returned URI is
// handed to the remote device out of band. A previously remembered pairing
// is deleted on the relay.
func (c *Client) Propose(ctx context.Context) (*Pairing, error) {
	log := util.LogFromContext(ctx)

	previous, err := c.topics.load()
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable pairing topic")
		previous = nil
	}

	var out Pairing
	in := proposeRequest{Methods: []string{MethodSignTransaction}, Label: c.label}
	if err := c.do(ctx, http.MethodPost, "/v1/pairings", in, &out); err != nil {
		return nil, errors.Wrap(err, "failed to propose pairing")
	}

	if out.Topic == "" {
		return nil, errors.New("relay returned a pairing without topic")
	}

	if err := c.topics.save(&topicRecord{Topic: out.Topic}); err != nil {
		return nil, errors.Wrap(err, "failed to persist pairing topic")
	}

	if previous != nil && previous.Topic != out.Topic {
		if err := c.do(ctx, http.MethodDelete, "/v1/pairings/"+url.PathEscape(previous.Topic), nil, nil); err != nil {
			log.Warn().Err(err).Str("topic", previous.Topic).Msg("Failed to delete replaced pairing on relay, ignoring")
		}
	}

	log.Info().Str("topic", out.Topic).Msg("Pairing proposed")

	return &out, nil
}

// AwaitApproval polls the pending pairing until the remote device approves it
// and returns the identity it shared.
func (c *Client) AwaitApproval(ctx context.Context) (identity.Identity, error) {
	record, err := c.topics.load()
	if err != nil {
		return identity.Identity{}, err
	}
	if record == nil {
		return identity.Identity{}, walleterrors.ErrPairingLost
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var approved Pairing
	err = c.poll(ctx, "/v1/pairings/"+url.PathEscape(record.Topic), func(raw []byte) (bool, error) {
		if err := json.Unmarshal(raw, &approved); err != nil {
			return false, errors.Wrap(err, "failed to decode pairing")
		}
		return statusDone(approved.Status, "pairing")
	})
	if err != nil {
		return identity.Identity{}, err
	}

	id, err := identity.Parse(approved.Identity)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "remote device shared an invalid identity")
	}

	if err := c.topics.save(&topicRecord{Topic: record.Topic, Identity: id.String()}); err != nil {
		return identity.Identity{}, errors.Wrap(err, "failed to persist pairing")
	}

	return id, nil
}

// Paired reports whether a topic is established.
func (c *Client) Paired() bool {
	record, err := c.topics.load()
	return err == nil && record != nil
}

// SignTransaction sends one signing request over the pairing and waits for the
// device to answer or for the relay request timeout to pass.
func (c *Client) SignTransaction(ctx context.Context, params SignTransactionParams) (*SignTransactionResult, error) {
	record, err := c.topics.load()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, walleterrors.ErrPairingLost
	}

	log := util.LogFromContext(ctx).With().Str("topic", record.Topic).Logger()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req := relayRequest{
		ID:     uuid.NewString(),
		Method: MethodSignTransaction,
		Params: params,
	}

	base := "/v1/pairings/" + url.PathEscape(record.Topic) + "/requests"
	if err := c.do(ctx, http.MethodPost, base, req, nil); err != nil {
		return nil, errors.Wrap(err, "failed to send signing request")
	}

	log.Debug().Str("requestId", req.ID).Msg("Signing request sent to paired device")

	var resp relayResponse
	err = c.poll(ctx, base+"/"+url.PathEscape(req.ID), func(raw []byte) (bool, error) {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return false, errors.Wrap(err, "failed to decode relay response")
		}
		return statusDone(resp.Status, "signing request")
	})
	if err != nil {
		return nil, err
	}

	if resp.Result == nil || resp.Result.SignedTransaction == "" {
		return nil, errors.New("paired device returned no signed transaction")
	}

	return resp.Result, nil
}

// Disconnect deletes the pairing on the relay and forgets the topic locally.
// The local topic is forgotten even when the relay call fails.
func (c *Client) Disconnect(ctx context.Context) error {
	record, err := c.topics.load()
	if err != nil || record == nil {
		return c.topics.clear()
	}

	remoteErr := c.do(ctx, http.MethodDelete, "/v1/pairings/"+url.PathEscape(record.Topic), nil, nil)
	if errors.Is(remoteErr, walleterrors.ErrPairingLost) {
		remoteErr = nil
	}

	if err := c.topics.clear(); err != nil {
		return err
	}

	return errors.Wrap(remoteErr, "failed to delete pairing on relay")
}

func statusDone(status Status, what string) (bool, error) {
	switch status {
	case StatusApproved:
		return true, nil
	case StatusRejected:
		return false, walleterrors.Wrap(errors.Errorf("%s rejected", what), walleterrors.CodeUserRejected, "request rejected on paired device")
	case StatusExpired:
		return false, walleterrors.Wrap(errors.Errorf("%s expired", what), walleterrors.CodeTimeout, "relay request expired")
	default:
		return false, nil
	}
}

// poll GETs path until check reports done, fails, or ctx ends.
func (c *Client) poll(ctx context.Context, path string, check func(raw []byte) (bool, error)) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
			return err
		}

		done, err := check(raw)
		if err != nil || done {
			return err
		}

		select {
		case <-ctx.Done():
			return timeoutError(ctx)
		case <-ticker.C:
		}
	}
}

func timeoutError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return walleterrors.Wrap(ctx.Err(), walleterrors.CodeTimeout, "relay request timed out")
	}
	return ctx.Err()
}

func (c *Client) do(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return errors.Wrap(err, "failed to encode relay request")
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create relay request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return timeoutError(ctx)
		}
		return errors.Wrapf(err, "relay %s %s", method, path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return walleterrors.Wrap(fmt.Errorf("relay %s %s: %s", method, path, resp.Status), walleterrors.CodePairingLost, "pairing session is not established")
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("relay %s %s: %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode relay response")
	}

	return nil
}
