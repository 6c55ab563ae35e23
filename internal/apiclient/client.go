// Package apiclient implements the authenticated HTTP client: the request
// middleware that attaches bearer tokens or short-circuits into demo mode,
// and the response coordinator that normalizes envelopes and recovers expired
// sessions through a single-flight token refresh.
package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/careconnect/careconnect-go/internal/api"
	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/errors"
	"github.com/careconnect/careconnect-go/internal/observability/statsd"
	"github.com/careconnect/careconnect-go/internal/ports"
)

// DefaultTimeout bounds each attempt, matching the platform's web client.
const DefaultTimeout = 15 * time.Second

const (
	// networkErrorMessage is the canonical message for requests that got no
	// response at all.
	networkErrorMessage = "network error"
	// demoAuthMessage is resolved immediately for 401s inside a demo
	// session; demo sessions have no refresh endpoint to call.
	demoAuthMessage = "authentication required in demo mode"
)

// Options groups dependencies for Client.
type Options struct {
	BaseURL string
	Store   ports.CredentialStore

	// Invalidations receives the session-invalidated broadcast on
	// unrecoverable refresh failure. Optional; defaults to a no-op sink.
	Invalidations ports.InvalidationSink

	// Timeout per attempt; DefaultTimeout when zero.
	Timeout time.Duration

	// DemoLatency for the demo resolver; negative disables the delay.
	DemoLatency time.Duration

	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    statsd.Sink

	// transport overrides for tests.
	real Transport
	demo Transport
}

// Client is the authenticated HTTP client. Construct once per process and
// share; all methods are safe for concurrent use.
type Client struct {
	store         ports.CredentialStore
	invalidations ports.InvalidationSink
	real          Transport
	demo          Transport
	timeout       time.Duration
	logger        *slog.Logger
	metrics       statsd.Sink

	// refresh coalesces concurrent token refreshes into one in-flight call.
	refresh singleflight.Group
}

// requestAttempt is the immutable per-call bookkeeping. A retry produces a
// new value with retried set; nothing caller-owned is ever mutated.
type requestAttempt struct {
	method    string
	path      string
	body      any
	requestID string
	retried   bool
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.Internal("credential store is required")
	}

	real := opts.real
	if real == nil {
		rt, err := NewRealTransport(RealTransportOptions{
			BaseURL:    opts.BaseURL,
			UserAgent:  opts.UserAgent,
			HTTPClient: opts.HTTPClient,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "configure transport")
		}
		real = rt
	}

	demo := opts.demo
	if demo == nil {
		demo = NewDemoTransport(opts.DemoLatency)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	invalidations := opts.Invalidations
	if invalidations == nil {
		invalidations = nopSink{}
	}

	var metrics statsd.Sink = opts.Metrics
	if metrics == nil {
		metrics = (*statsd.Client)(nil) // nil client is a no-op sink
	}

	return &Client{
		store:         opts.Store,
		invalidations: invalidations,
		real:          real,
		demo:          demo,
		timeout:       timeout,
		logger:        logger,
		metrics:       metrics,
	}, nil
}

// Request performs one API call and returns the canonical envelope. The
// returned error, when non-nil, is an internal/errors AppError classifying
// the failure; the envelope is still populated so callers can render the
// normalized message either way.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*api.Envelope, error) {
	attempt := requestAttempt{
		method:    method,
		path:      path,
		body:      body,
		requestID: uuid.NewString(),
	}

	start := time.Now()
	env, err := c.do(ctx, attempt)
	c.metrics.Timing("request.duration", time.Since(start), map[string]string{"method": method})
	c.metrics.Count("requests", 1, map[string]string{"outcome": outcomeTag(err)})
	return env, err
}

// do runs the request middleware (credential read, token attachment or demo
// short-circuit), dispatches through the selected transport, and hands the
// result to the response coordinator. Retries re-enter here so the retried
// call passes through the same middleware as the original.
func (c *Client) do(ctx context.Context, attempt requestAttempt) (*api.Envelope, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	creds := c.credentials(attemptCtx)

	req := WireRequest{
		Method:    attempt.method,
		Path:      attempt.path,
		Body:      attempt.body,
		RequestID: attempt.requestID,
	}

	var env *api.Envelope
	var err error
	if creds.DemoSession() {
		// Demo tokens never go out as bearer headers; the resolver answers
		// through the same pipeline slot a network response would occupy.
		env, err = c.demo.RoundTrip(attemptCtx, req)
	} else {
		if creds.Tokens != nil {
			req.Token = creds.Tokens.AccessToken
		}
		env, err = c.real.RoundTrip(attemptCtx, req)
	}
	if err != nil {
		// No response received. Canonical network envelope, never retried.
		c.logger.DebugContext(ctx, "request transport failure",
			"method", attempt.method, "path", attempt.path, "request_id", attempt.requestID, "error", err)
		return &api.Envelope{Success: false, Message: networkErrorMessage},
			errors.Wrap(err, errors.ErrCodeNetwork, networkErrorMessage)
	}

	return c.coordinate(ctx, attempt, creds, env)
}

// coordinate is the response middleware: expired-auth detection, refresh and
// retry, and status classification, in the order the contracts require.
func (c *Client) coordinate(ctx context.Context, attempt requestAttempt, creds domainauth.Credentials, env *api.Envelope) (*api.Envelope, error) {
	if env.Status != http.StatusUnauthorized {
		return env, classify(env)
	}

	// 401 on an auth endpoint is a rejection of the credentials themselves,
	// not an expired session.
	if isAuthPath(attempt.path) {
		return env, errors.AuthRejected(messageOr(env, "authentication rejected"))
	}

	if creds.DemoSession() {
		return &api.Envelope{
			Success: false,
			Message: demoAuthMessage,
			Status:  http.StatusUnauthorized,
		}, errors.AuthRejected(demoAuthMessage)
	}

	if attempt.retried {
		// Second expired-auth failure on the same logical call: terminal,
		// never another refresh.
		return env, errors.AuthRejected(messageOr(env, "authentication expired after retry"))
	}

	if _, err := c.refreshTokens(ctx); err != nil {
		return env, err
	}

	retry := attempt
	retry.retried = true
	c.logger.DebugContext(ctx, "retrying request after token refresh",
		"method", attempt.method, "path", attempt.path, "request_id", attempt.requestID)
	return c.do(ctx, retry)
}

// credentials reads the store, degrading to anonymous on failure: a broken
// store must not block requests, the backend's 401 handles the rest.
func (c *Client) credentials(ctx context.Context) domainauth.Credentials {
	creds, err := c.store.Get(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "credential store read failed, proceeding without token", "error", err)
		return domainauth.Credentials{}
	}
	return creds
}

// classify maps a normalized failure envelope onto the error taxonomy.
// 401s never reach here; coordinate resolves them before classification.
func classify(env *api.Envelope) error {
	if env.Success {
		return nil
	}
	switch env.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.Validation(messageOr(env, "request rejected"))
	default:
		return errors.Server(messageOr(env, "request failed"))
	}
}

func messageOr(env *api.Envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	return fallback
}

func outcomeTag(err error) string {
	if err == nil {
		return "success"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

// isAuthPath reports whether the path is an authentication endpoint, which
// never participates in the refresh-and-retry branch.
func isAuthPath(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.HasPrefix(path, "/auth/")
}

type nopSink struct{}

func (nopSink) Broadcast() {}
