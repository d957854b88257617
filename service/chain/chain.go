package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"veloan/pkg/resthttp"
)

type contextKey int

const traceKey contextKey = iota

// WithTrace attaches an idempotency trace to outgoing writes; the gateway
// deduplicates executes sharing a trace.
func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

func traceFrom(ctx context.Context) string {
	v, _ := ctx.Value(traceKey).(string)
	return v
}

// Client talks to the chain gateway, which relays reads and writes to the
// underlying contracts
type Client struct {
	endpoint string
}

// NewClient new gateway client
func NewClient(endpoint string) *Client {
	return &Client{endpoint: endpoint}
}

type callRequest struct {
	TraceID  string        `json:"trace_id,omitempty"`
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Args     []interface{} `json:"args,omitempty"`
}

type callResponse struct {
	Data json.RawMessage `json:"data"`
}

// Call read-only contract call
func (c *Client) Call(ctx context.Context, contract, method string, args []interface{}, out interface{}) error {
	return c.do(ctx, "call", &callRequest{
		Contract: contract,
		Method:   method,
		Args:     args,
	}, out)
}

// Execute state-changing contract call
func (c *Client) Execute(ctx context.Context, contract, method string, args []interface{}, out interface{}) error {
	return c.do(ctx, "execute", &callRequest{
		TraceID:  traceFrom(ctx),
		Contract: contract,
		Method:   method,
		Args:     args,
	}, out)
}

func (c *Client) do(ctx context.Context, path string, req *callRequest, out interface{}) error {
	var resp callResponse

	url := fmt.Sprintf("%s/%s", c.endpoint, path)
	if _, err := resthttp.Execute(resthttp.Request(ctx), "POST", url, req, &resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(resp.Data, out)
}
