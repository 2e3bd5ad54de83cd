package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"taskmate/utils"
)

// ErrSessionExpired is returned when an authorization failure survives the
// one refresh-and-retry cycle. The caller is back in the guest state.
var ErrSessionExpired = errors.New("session expired")

// State of the logical session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StateRefreshInFlight State = "refresh_in_flight"
)

// Operation describes one API request. Body, when non-nil, is JSON-encoded.
type Operation struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is the server's answer, returned verbatim.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// OK reports whether the response carries a success status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client attaches the current identity token to every outbound marketplace
// API call, silently refreshes an expired token and retries exactly once,
// and degrades to the guest state when no valid identity exists.
type Client struct {
	baseURL  string
	http     *http.Client
	provider IdentityProvider
	store    TokenStore
	limiter  *rate.Limiter
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	onReset []func()
}

// NewClient builds a session client. The provider's token-changed events are
// mirrored into the token store so a restarted agent can resume the session.
func NewClient(baseURL string, provider IdentityProvider, store TokenStore, limit float64, burst int) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		provider: provider,
		store:    store,
		limiter:  rate.NewLimiter(rate.Limit(limit), burst),
		logger:   utils.GetLogger(),
		state:    StateUnauthenticated,
	}
	provider.OnIDTokenChanged(func(token string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if token == "" {
			if err := store.Remove(ctx, UserTokenKey); err != nil {
				c.logger.Warn("Failed to clear stored token", zap.Error(err))
			}
			return
		}
		if err := store.Set(ctx, UserTokenKey, token); err != nil {
			c.logger.Warn("Failed to persist refreshed token", zap.Error(err))
		}
	})
	return c
}

// State returns the current session state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnSessionReset registers a callback run whenever local auth state is torn
// down (explicit sign-out or terminal refresh failure).
func (c *Client) OnSessionReset(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReset = append(c.onReset, fn)
}

// SignIn authenticates against the identity provider and persists the
// resulting token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	user, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.adoptSession(ctx)
	return user, nil
}

// SignUp creates an account and starts an authenticated session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	user, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.adoptSession(ctx)
	return user, nil
}

// SignOut tears down all local auth state. The app keeps functioning as a
// guest afterwards.
func (c *Client) SignOut(ctx context.Context) {
	c.clearAuthState(ctx)
}

// CurrentUser returns the signed-in user, or nil in the guest state.
func (c *Client) CurrentUser() *User {
	return c.provider.CurrentUser()
}

// Do performs one API operation with the current identity attached. On an
// authorization failure it force-refreshes the token and retries the request
// exactly once; a second failure tears down the session and returns
// ErrSessionExpired. Network errors are propagated unchanged.
func (c *Client) Do(ctx context.Context, op Operation) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token := c.currentToken(ctx)
	resp, err := c.send(ctx, op, token)
	if err != nil {
		return nil, err
	}
	if !isAuthFailure(resp.Status) {
		if token != "" && resp.OK() {
			c.setState(StateAuthenticated)
		}
		return resp, nil
	}

	// First authorization failure: refresh once and retry with the new token.
	c.setState(StateRefreshInFlight)
	newToken, err := c.provider.IDToken(ctx, true)
	if err != nil {
		c.clearAuthState(ctx)
		if errors.Is(err, ErrNoCurrentUser) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	if err := c.store.Set(ctx, UserTokenKey, newToken); err != nil {
		c.logger.Warn("Failed to persist refreshed token", zap.Error(err))
	}

	retry, err := c.send(ctx, op, newToken)
	if err != nil {
		return nil, err
	}
	if isAuthFailure(retry.Status) {
		// The backend rejected a freshly refreshed token. Give up rather
		// than loop.
		c.clearAuthState(ctx)
		return retry, ErrSessionExpired
	}
	c.setState(StateAuthenticated)
	return retry, nil
}

// DoSilent performs an operation for optional background work (badge
// refreshes on focus). Terminal failures are swallowed into an empty
// response so callers never crash.
func (c *Client) DoSilent(ctx context.Context, op Operation) *Response {
	resp, err := c.Do(ctx, op)
	if err != nil {
		c.logger.Debug("Silent request failed", zap.String("path", op.Path), zap.Error(err))
		return &Response{}
	}
	return resp
}

func (c *Client) adoptSession(ctx context.Context) {
	token, err := c.provider.IDToken(ctx, false)
	if err != nil {
		c.logger.Warn("Failed to read token after sign-in", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, UserTokenKey, token); err != nil {
		c.logger.Warn("Failed to persist token after sign-in", zap.Error(err))
	}
	c.setState(StateAuthenticated)
}

// currentToken prefers the live provider; the stored copy is a fallback for
// requests issued before the provider has restored its session.
func (c *Client) currentToken(ctx context.Context) string {
	token, err := c.provider.IDToken(ctx, false)
	if err == nil {
		return token
	}
	stored, storeErr := c.store.Get(ctx, UserTokenKey)
	if storeErr != nil {
		c.logger.Warn("Failed to read stored token", zap.Error(storeErr))
		return ""
	}
	return stored
}

func (c *Client) send(ctx context.Context, op Operation, token string) (*Response, error) {
	reqURL := c.baseURL + op.Path
	if len(op.Query) > 0 {
		reqURL += "?" + op.Query.Encode()
	}

	var body io.Reader
	if op.Body != nil {
		data, err := json.Marshal(op.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if op.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func (c *Client) clearAuthState(ctx context.Context) {
	if err := c.store.Remove(ctx, UserTokenKey); err != nil {
		c.logger.Warn("Failed to remove stored token", zap.Error(err))
	}
	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Warn("Provider sign-out failed", zap.Error(err))
	}

	c.mu.Lock()
	c.state = StateUnauthenticated
	callbacks := append([]func(){}, c.onReset...)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
