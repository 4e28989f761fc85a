// Package transport talks to a remote circuit executor over JSON/HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/anon-identity/go-identity-pcd/bigint"
	"github.com/anon-identity/go-identity-pcd/circuits"
	"github.com/anon-identity/go-identity-pcd/types"
)

const maxResponseSize = 1 << 20

// Client is a circuits.Executor and circuits.RawVerifier backed by an
// executor service exposing POST /prove and POST /verify.
type Client struct {
	baseURL string
	http    *http.Client
	layout  circuits.Layout
	log     *zap.Logger
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLayout sets the limb layout the executor's circuit is compiled for.
func WithLayout(l circuits.Layout) Option {
	return func(c *Client) {
		c.layout = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client for the executor at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		layout:  circuits.DefaultLayout,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ProveRequest is the body of POST /prove.
type ProveRequest struct {
	CircuitID circuits.CircuitID `json:"circuit_id"`
	Inputs    circuits.Inputs    `json:"inputs"`
}

// ProveResponse is the body of a successful POST /prove.
type ProveResponse struct {
	Proof      types.SnarkProof `json:"proof"`
	PubSignals []string         `json:"pub_signals"`
}

// VerifyRequest is the body of POST /verify.
type VerifyRequest struct {
	CircuitID  circuits.CircuitID `json:"circuit_id"`
	Proof      types.SnarkProof   `json:"proof"`
	PubSignals []string           `json:"pub_signals"`
}

// VerifyResponse is the body of a successful POST /verify.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Execute asks the executor for a proof. HTTP 422 means the witness does not
// satisfy the circuit and maps to circuits.ErrProofGeneration; any other
// failure maps to circuits.ErrCircuitUnavailable.
func (c *Client) Execute(ctx context.Context, id circuits.CircuitID, public circuits.PublicInputs, witness circuits.Witness) (*types.SnarkProof, error) {
	inputs, err := c.layout.CircuitInputs(public, witness)
	if err != nil {
		return nil, err
	}
	expected, err := c.layout.PublicSignals(public.Modulus, public.BaseMessage)
	if err != nil {
		return nil, err
	}

	var resp ProveResponse
	if err = c.post(ctx, "/prove", ProveRequest{CircuitID: id, Inputs: inputs}, &resp); err != nil {
		return nil, err
	}
	if !equalSignals(resp.PubSignals, expected) {
		return nil, errors.Wrap(circuits.ErrCircuitUnavailable, "executor proved a different statement")
	}
	return &resp.Proof, nil
}

// VerifyRaw asks the executor to check proof against pubSignals.
func (c *Client) VerifyRaw(ctx context.Context, id circuits.CircuitID, proof types.SnarkProof, pubSignals []string) (bool, error) {
	var resp VerifyResponse
	err := c.post(ctx, "/verify", VerifyRequest{CircuitID: id, Proof: proof, PubSignals: pubSignals}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.WithStack(err)
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(circuits.ErrCircuitUnavailable, "bad executor url: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(circuits.ErrCircuitUnavailable, "%s: %v", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.Wrapf(circuits.ErrCircuitUnavailable, "%s: %v", url, err)
	}

	c.log.Debug("executor response", zap.String("url", url), zap.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return errors.Wrap(circuits.ErrProofGeneration, remoteError(data))
	default:
		return errors.Wrapf(circuits.ErrCircuitUnavailable, "%s: status %d: %s", url, resp.StatusCode, remoteError(data))
	}

	if err = json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(circuits.ErrCircuitUnavailable, "%s: malformed response: %v", url, err)
	}
	return nil
}

func remoteError(data []byte) string {
	var e ErrorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return fmt.Sprintf("%q", data)
}

func equalSignals(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bigint.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
