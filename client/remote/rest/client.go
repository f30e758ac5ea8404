// Package rest implements the remote store capability over the sync server's
// JSON API using fasthttp.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daylogapp/daylog/api/transport"
	"github.com/daylogapp/daylog/client/remote"
	"github.com/daylogapp/daylog/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to syncd. It carries the bearer credential for the signed-in
// user; with no token set, authenticated calls fail with ErrUnauthorized.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	logger  *zap.Logger

	mu        sync.RWMutex
	token     string
	sessionID string
}

// New builds a client for the given base URL (scheme://host[:port]).
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{Name: "daylog-client"},
		logger:  logger,
	}
}

// SetCredentials installs the bearer token and session id from a sign-in.
func (c *Client) SetCredentials(token, sessionID string) {
	c.mu.Lock()
	c.token = token
	c.sessionID = sessionID
	c.mu.Unlock()
}

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SessionID returns the current session id, empty when signed out.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// List implements remote.Store.
func (c *Client) List(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := c.do(ctx, fasthttp.MethodGet, "/api/v1/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Insert implements remote.Store. The server assigns id and timestamps and
// scopes ownership to the token, ignoring the user id in the body.
func (c *Client) Insert(ctx context.Context, fields remote.Insert) (*domain.Todo, error) {
	var created domain.Todo
	if err := c.do(ctx, fasthttp.MethodPost, "/api/v1/todos", fields, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update implements remote.Store with a partial JSON body: only the patched
// fields appear, and cleared fields appear as explicit nulls.
func (c *Client) Update(ctx context.Context, id string, patch domain.TodoPatch) error {
	body := make(map[string]interface{})
	if patch.IsCompleted != nil {
		body["is_completed"] = *patch.IsCompleted
		body["completed_at"] = patch.CompletedAt
	}
	if patch.SetOutput {
		body["output"] = patch.Output
	}
	if patch.SetURL {
		body["url"] = patch.URL
	}
	return c.do(ctx, fasthttp.MethodPatch, "/api/v1/todos/"+id, body, nil)
}

// Delete implements remote.Store.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/v1/todos/"+id, nil, nil)
}

// CurrentUserID reads the user id from the token's claims. The signature is
// not verified here; the server verifies it on every call.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	token := c.Token()
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", domain.WrapError(domain.ErrCodeUnauthorized, "malformed token", err)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

// CompletionCounts implements remote.Store.
func (c *Client) CompletionCounts(ctx context.Context, since time.Time) ([]domain.ActivityPoint, error) {
	days := int(time.Since(since).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	var points []domain.ActivityPoint
	path := fmt.Sprintf("/api/v1/activity?days=%d", days)
	if err := c.do(ctx, fasthttp.MethodGet, path, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	return c.authCall(ctx, "/api/v1/auth/register", transport.RegisterRequest{Email: email, Password: password})
}

// Login signs in and installs the returned credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	return c.authCall(ctx, "/api/v1/auth/login", transport.LoginRequest{Email: email, Password: password})
}

// Logout revokes the current session and clears credentials.
func (c *Client) Logout(ctx context.Context) error {
	sessionID := c.SessionID()
	if sessionID != "" {
		if err := c.do(ctx, fasthttp.MethodPost, "/api/v1/auth/logout", transport.LogoutRequest{SessionID: sessionID}, nil); err != nil {
			return err
		}
	}
	c.SetCredentials("", "")
	return nil
}

// DeleteAccount removes the authenticated user and everything they own, then
// clears credentials. Failures are surfaced, never retried.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, fasthttp.MethodDelete, "/api/v1/account", nil, nil); err != nil {
		return err
	}
	c.SetCredentials("", "")
	return nil
}

func (c *Client) authCall(ctx context.Context, path string, body interface{}) (*transport.AuthResponse, error) {
	var auth transport.AuthResponse
	if err := c.do(ctx, fasthttp.MethodPost, path, body, &auth); err != nil {
		return nil, err
	}
	sessionID := ""
	if auth.Session != nil {
		sessionID = auth.Session.ID
	}
	c.SetCredentials(auth.Token, sessionID)
	return &auth, nil
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if token := c.Token(); token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.SetBody(payload)
	}

	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return ctx.Err()
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		c.logger.Debug("request failed", zap.String("path", path), zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, "request failed", err)
	}

	return decode(resp, out)
}

func decode(resp *fasthttp.Response, out interface{}) error {
	var env envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "malformed response", err)
		}
	}

	if status := resp.StatusCode(); status >= http.StatusBadRequest || env.Status == "error" {
		message := strings.Trim(string(env.Error), `"`)
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", status)
		}
		return domain.NewError(codeFor(status, env.Code), message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "malformed response data", err)
		}
	}
	return nil
}

func codeFor(status int, code string) domain.ErrorCode {
	if code != "" {
		return domain.ErrorCode(code)
	}
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrCodeUnauthorized
	case http.StatusForbidden:
		return domain.ErrCodeForbidden
	case http.StatusNotFound:
		return domain.ErrCodeNotFound
	case http.StatusBadRequest:
		return domain.ErrCodeInvalid
	default:
		return domain.ErrCodeInternal
	}
}

var _ remote.Store = (*Client)(nil)
