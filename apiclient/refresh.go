package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type refreshOutcome struct {
	token *oauth2.Token
	err   error
}

// awaitRefresh returns a fresh access token for a request that was sent with stale and failed with 401.
// If a refresh is already in flight the caller joins its queue. If one finished after the request was
// sent, its token is reused. Otherwise the caller performs the refresh.
func (c *Client) awaitRefresh(ctx context.Context, stale *oauth2.Token, logger zerolog.Logger) (*oauth2.Token, error) {
	c.mu.Lock()
	if c.refreshing {
		wait := make(chan refreshOutcome, 1)
		c.pending = append(c.pending, wait)
		c.mu.Unlock()

		logger.Debug().Msg("Waiting for in-flight token refresh")
		select {
		case out := <-wait:
			return out.token, out.err
		case <-ctx.Done():
			c.dropWaiter(wait)
			select {
			case out := <-wait:
				return out.token, out.err
			default:
			}
			return nil, &NetworkError{Op: "await refresh", Err: ctx.Err()}
		}
	}

	switch {
	case c.sessionEnded:
		c.mu.Unlock()
		return nil, &AuthError{Op: "refresh", Err: ErrSessionEnded}
	case c.token == nil:
		c.mu.Unlock()
		return nil, &AuthError{Op: "refresh", Err: ErrNotAuthenticated}
	case c.token.AccessToken != stale.AccessToken:
		current := copyToken(c.token)
		c.mu.Unlock()
		logger.Debug().Msg("Access token already refreshed")
		return current, nil
	}

	c.refreshing = true
	epoch := c.epoch
	refreshToken := c.token.RefreshToken
	c.mu.Unlock()

	logger.Info().Msg("Access token rejected, refreshing")
	tok, err := c.refresh(ctx, refreshToken)
	return c.settleRefresh(epoch, tok, err, logger)
}

// dropWaiter removes a cancelled caller from the queue. A refresh that already settled has emptied it.
func (c *Client) dropWaiter(wait chan refreshOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ch := range c.pending {
		if ch == wait {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// refresh runs detached from the caller's cancellation: queued callers depend on its outcome.
// The HTTP client's timeout still bounds it.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, &AuthError{Op: "refresh", Err: ErrNoRefreshToken}
	}
	return c.exchange(context.WithoutCancel(ctx), "refresh", c.refreshURL, oauthmodel.RefreshRequest{RefreshToken: refreshToken}, refreshToken)
}

// settleRefresh publishes the outcome of a refresh: it clears the in-flight flag, replaces or
// clears the credential pair, then resolves or rejects every queued caller in arrival order.
func (c *Client) settleRefresh(epoch uint64, tok *oauth2.Token, refreshErr error, logger zerolog.Logger) (*oauth2.Token, error) {
	endSession := false

	c.mu.Lock()
	c.refreshing = false
	waiters := c.pending
	c.pending = nil

	switch {
	case c.epoch != epoch:
		// Login or Logout happened while the refresh was in flight; its result is stale.
		if c.token != nil && !c.sessionEnded {
			tok, refreshErr = copyToken(c.token), nil
		} else {
			tok, refreshErr = nil, &AuthError{Op: "refresh", Err: ErrSessionEnded}
		}
	case refreshErr == nil:
		c.token = tok
		c.persistLocked(tok)
	default:
		c.token = nil
		c.clearLocked()
		var authErr *AuthError
		if errors.As(refreshErr, &authErr) {
			c.sessionEnded = true
			c.epoch++
			endSession = true
		}
	}
	c.mu.Unlock()

	if refreshErr != nil {
		logger.Warn().Err(refreshErr).Int("waiters", len(waiters)).Msg("Token refresh failed")
	} else {
		logger.Info().Int("waiters", len(waiters)).Msg("Token refreshed")
	}

	for _, wait := range waiters {
		wait <- refreshOutcome{token: copyToken(tok), err: refreshErr}
	}

	if endSession {
		logger.Warn().Msg("Session ended, login required")
		if c.onSessionEnd != nil {
			c.onSessionEnd(refreshErr)
		}
	}
	return copyToken(tok), refreshErr
}

// exchange posts a login or refresh body and converts the token response into a credential pair.
// It bypasses 401 interception entirely. 400, 401 and 403 are reported as *AuthError.
func (c *Client) exchange(ctx context.Context, op string, target *url.URL, payload any, currentRefresh string) (*oauth2.Token, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &AuthError{Op: op, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(data))
	if err != nil {
		return nil, &AuthError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)

	status, header, body, err := c.send(httpReq)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{Op: op, StatusCode: status, Message: errorMessage(status, body), Err: ErrUnauthorized}
	}
	resp, err := checkStatus(httpReq, status, header, body)
	if err != nil {
		return nil, err
	}

	var tokenResp oauthmodel.TokenResponse
	if err := resp.Decode(&tokenResp); err != nil {
		return nil, &APIError{Method: httpReq.Method, Path: httpReq.URL.Path, StatusCode: status, Message: err.Error(), Body: body}
	}
	accessToken := utils.Value(tokenResp.AccessToken)
	if accessToken == "" {
		return nil, &APIError{Method: httpReq.Method, Path: httpReq.URL.Path, StatusCode: status, Message: "token response missing access_token", Body: body}
	}

	// Servers that do not rotate refresh tokens omit it; keep the one already held.
	refreshToken := utils.Value(tokenResp.RefreshToken)
	if refreshToken == "" {
		refreshToken = currentRefresh
	}

	return &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    tokenResp.TokenType,
		RefreshToken: refreshToken,
		Expiry:       c.expiry(accessToken, tokenResp.ExpiresIn),
	}, nil
}

// expiry prefers the server's expires_in hint and falls back to the access token's exp claim.
// The claim is read without verification; it is only informational on the client.
func (c *Client) expiry(accessToken string, expiresIn int) time.Time {
	if expiresIn > 0 {
		return c.nowFunc().Add(time.Duration(expiresIn) * time.Second)
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
