package apiclient

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/errors"
)

// refreshPath is the rotation endpoint. Called at most once per concurrent
// failure wave.
const refreshPath = "/auth/refresh-token"

// refreshResponse is the payload under data in the refresh envelope.
type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// refreshTokens rotates the token pair, coalescing concurrent callers onto a
// single in-flight refresh. Every request that discovers an expired token
// while a refresh is underway awaits the shared outcome instead of issuing
// its own; unsynchronized refreshes would rotate the refresh token several
// times and strand the losers with an already-invalidated token. A canceled
// caller stops waiting, but the shared refresh keeps running for the rest.
func (c *Client) refreshTokens(ctx context.Context) (domainauth.TokenPair, error) {
	ch := c.refresh.DoChan("refresh-token", func() (any, error) {
		return c.doRefresh()
	})

	select {
	case <-ctx.Done():
		return domainauth.TokenPair{}, errors.Wrap(ctx.Err(), errors.ErrCodeNetwork, networkErrorMessage)
	case res := <-ch:
		if res.Err != nil {
			return domainauth.TokenPair{}, res.Err
		}
		pair, ok := res.Val.(domainauth.TokenPair)
		if !ok {
			return domainauth.TokenPair{}, errors.Internal("unexpected refresh result type")
		}
		return pair, nil
	}
}

// doRefresh performs the actual rotation. It runs on a background context:
// the outcome is shared by every waiter, so one canceled caller must not kill
// the refresh for the rest.
func (c *Client) doRefresh() (domainauth.TokenPair, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	c.metrics.Count("refresh.attempts", 1, nil)

	// Re-read the store rather than trusting any earlier snapshot; a
	// concurrent login or logout may have replaced the credentials.
	creds, err := c.store.Get(ctx)
	if err != nil {
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, errors.Wrap(err, errors.ErrCodeInternal, "read credentials for refresh")
	}
	if creds.DemoSession() {
		// The coordinator resolves demo 401s before reaching here; this
		// guard keeps the invariant even for direct callers.
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, errors.AuthRejected(demoAuthMessage)
	}
	if creds.Tokens == nil || creds.Tokens.RefreshToken == "" {
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, c.invalidateSession(ctx, errors.AuthRejected("no refresh token available"))
	}

	env, rtErr := c.real.RoundTrip(ctx, WireRequest{
		Method:    http.MethodPost,
		Path:      refreshPath,
		Body:      map[string]string{"refreshToken": creds.Tokens.RefreshToken},
		RequestID: uuid.NewString(),
	})
	if rtErr != nil {
		// Transient transport failure: the session may still be valid, so
		// fail this wave without tearing the session down.
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, errors.Wrap(rtErr, errors.ErrCodeNetwork, networkErrorMessage)
	}
	if !env.Success || env.Status == http.StatusUnauthorized {
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, c.invalidateSession(ctx,
			errors.AuthRejected(messageOr(env, "session expired")))
	}

	var payload refreshResponse
	if decodeErr := env.DecodeData(&payload); decodeErr != nil || payload.Token == "" || payload.RefreshToken == "" {
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, c.invalidateSession(ctx,
			errors.AuthRejected("malformed refresh response"))
	}

	pair := domainauth.TokenPair{
		AccessToken:  payload.Token,
		RefreshToken: payload.RefreshToken,
	}
	if setErr := c.store.Set(ctx, domainauth.Credentials{
		Tokens: &pair,
		User:   creds.User,
		Demo:   false,
	}); setErr != nil {
		c.metrics.Count("refresh.failures", 1, nil)
		return domainauth.TokenPair{}, errors.Wrap(setErr, errors.ErrCodeInternal, "persist refreshed tokens")
	}

	c.metrics.Count("refresh.success", 1, nil)
	c.logger.Debug("token refresh succeeded")
	return pair, nil
}

// invalidateSession clears the credential store and broadcasts the
// session-invalidated signal, then returns the terminal error unchanged.
// Running inside the single-flight function, the broadcast fires exactly once
// per failure wave no matter how many requests are waiting.
func (c *Client) invalidateSession(ctx context.Context, terminal error) error {
	if clearErr := c.store.Clear(ctx); clearErr != nil {
		c.logger.WarnContext(ctx, "clear credentials after refresh failure", "error", clearErr)
	}
	c.invalidations.Broadcast()
	c.metrics.Count("session.invalidated", 1, nil)
	c.logger.InfoContext(ctx, "session invalidated after refresh failure")
	return terminal
}
