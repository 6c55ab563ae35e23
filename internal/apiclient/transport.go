package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/careconnect/careconnect-go/internal/api"
	"github.com/careconnect/careconnect-go/internal/mockapi"
)

// maxResponseBody caps how much of a response the client reads.
const maxResponseBody = 4 << 20

// WireRequest is the transport-level view of one outgoing call, produced by
// the request middleware after token attachment.
type WireRequest struct {
	Method    string
	Path      string
	Body      any
	Token     string
	RequestID string
}

// Transport carries a request to its destination and returns the normalized
// envelope. The real backend and the demo resolver are interchangeable
// strategies behind this interface; the transport for a call is selected from
// the session's demo flag, never by branching inside the pipeline.
//
// A non-nil error means no response was received at all (connection refused,
// timeout, canceled context); HTTP-level failures come back as envelopes.
type Transport interface {
	RoundTrip(ctx context.Context, req WireRequest) (*api.Envelope, error)
}

// RealTransportOptions configure a RealTransport.
type RealTransportOptions struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// RealTransport sends requests to the backend over HTTP.
type RealTransport struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Transport = (*RealTransport)(nil)

// NewRealTransport constructs a backend transport.
func NewRealTransport(opts RealTransportOptions) (*RealTransport, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &RealTransport{
		baseURL:    base,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
	}, nil
}

func (t *RealTransport) RoundTrip(ctx context.Context, req WireRequest) (*api.Envelope, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return api.Normalize(resp.StatusCode, body), nil
}

// DemoTransport resolves requests from the local canned-response table. It
// never touches the network.
type DemoTransport struct {
	resolver *mockapi.Resolver
}

var _ Transport = (*DemoTransport)(nil)

// NewDemoTransport constructs a demo transport with the given resolver
// latency. A negative latency disables the simulated delay (tests).
func NewDemoTransport(latency time.Duration) *DemoTransport {
	return &DemoTransport{
		resolver: mockapi.NewResolver(mockapi.ResolverOptions{Latency: latency}),
	}
}

// NewDemoTransportWithResolver wraps an existing resolver.
func NewDemoTransportWithResolver(resolver *mockapi.Resolver) *DemoTransport {
	return &DemoTransport{resolver: resolver}
}

func (t *DemoTransport) RoundTrip(ctx context.Context, req WireRequest) (*api.Envelope, error) {
	return t.resolver.Resolve(ctx, req.Path)
}
