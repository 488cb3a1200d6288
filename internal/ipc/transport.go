package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/jsonrpc"
)

const (
	DefaultEndpoint = "http://localhost:3000"
	DefaultTimeout  = 30 * time.Second
)

// Transport carries one request envelope to the server and returns the
// decoded reply.
type Transport interface {
	Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)
}

// HTTPTransport posts JSON-RPC envelopes to a single endpoint.
type HTTPTransport struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewHTTPTransport uses http.DefaultClient when client is nil. A timeout <= 0
// disables the per-call deadline.
func NewHTTPTransport(endpoint string, timeout time.Duration, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		endpoint: endpoint,
		timeout:  timeout,
		client:   client,
	}
}

func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

func (t *HTTPTransport) Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Internal("failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.InvalidEndpoint(t.endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug().Int64("id", req.ID).Str("method", req.Method).Msgf("post %s", payload)
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, errors.EndpointUnreachable(t.endpoint, err)
	}
	defer resp.Body.Close()

	// The body is consumed here and nowhere else; only the decoded envelope
	// leaves this function.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ReadBodyFailed(err)
	}

	return decodeResponse(resp.StatusCode, body)
}

func decodeResponse(status int, body []byte) (*jsonrpc.Response, error) {
	var rpcResp jsonrpc.Response
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return nil, errors.UnexpectedStatus(status)
		}
		return nil, errors.InvalidEnvelope(err)
	}
	return &rpcResp, nil
}
