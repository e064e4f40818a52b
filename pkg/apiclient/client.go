package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/noah-isme/uniportal/pkg/errors"
	"github.com/noah-isme/uniportal/pkg/requestid"
)

const defaultTimeout = 10 * time.Second

// Observer receives timing for every backend call.
type Observer interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	AccessToken string
	PublicPaths []string
	ReissuePath string
	UserAgent   string
	HTTPClient  *http.Client
	Logger      *zap.Logger
	Observer    Observer
}

// Client is the JSON transport to the portal backend. Credentials ride on every
// request: cookies through a jar and the bearer token on non-public paths.
type Client struct {
	baseURL     string
	http        *http.Client
	public      map[string]struct{}
	reissuePath string
	userAgent   string
	logger      *zap.Logger
	observer    Observer

	mu             sync.RWMutex
	token          string
	onAuthExpired  func(context.Context)
	onTokenRefresh func(string)

	refresh  singleflight.Group
	expiring atomic.Bool
}

// New builds a client with a cookie jar and bounded timeout.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "api base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid api base URL")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	public := make(map[string]struct{}, len(opts.PublicPaths))
	for _, p := range opts.PublicPaths {
		public[cleanPath(p)] = struct{}{}
	}
	if opts.ReissuePath != "" {
		public[cleanPath(opts.ReissuePath)] = struct{}{}
	}

	return &Client{
		baseURL:     base,
		http:        httpClient,
		public:      public,
		reissuePath: opts.ReissuePath,
		userAgent:   opts.UserAgent,
		logger:      logger,
		observer:    opts.Observer,
		token:       opts.AccessToken,
	}, nil
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnAuthExpired registers the forced sign-out hook run when a 401 cannot be recovered.
func (c *Client) OnAuthExpired(fn func(context.Context)) {
	c.mu.Lock()
	c.onAuthExpired = fn
	c.mu.Unlock()
}

// OnTokenRefresh registers a hook receiving reissued tokens.
func (c *Client) OnTokenRefresh(fn func(string)) {
	c.mu.Lock()
	c.onTokenRefresh = fn
	c.mu.Unlock()
}

// Get issues a GET and returns the decoded JSON payload.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (interface{}, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (interface{}, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (interface{}, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, query url.Values, body interface{}) (interface{}, error) {
	return c.Do(ctx, http.MethodPatch, path, query, body)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (interface{}, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one request. A 401 on a protected path triggers a single token
// reissue shared by all concurrent callers, then one retry; if that fails the
// auth-expired hook runs and ErrAuthExpired is returned. Other non-2xx
// responses map to typed errors, network failures to ErrTransport.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (interface{}, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "encode request body")
		}
		payload = data
	}

	public := c.isPublic(path)
	if !public && TokenExpired(c.Token(), time.Now()) {
		if err := c.reissue(ctx); err != nil {
			c.logger.Debug("proactive token reissue failed", zap.Error(err))
		}
	}

	status, respBody, err := c.send(ctx, method, path, query, payload, public)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !public {
		if rerr := c.reissue(ctx); rerr == nil {
			status, respBody, err = c.send(ctx, method, path, query, payload, public)
			if err != nil {
				return nil, err
			}
		}
		if status == http.StatusUnauthorized {
			c.expire(ctx)
			return nil, appErrors.Clone(appErrors.ErrAuthExpired, "")
		}
	}

	if status < 200 || status >= 300 {
		return nil, appErrors.FromStatus(status, respBody)
	}
	return decode(respBody), nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, public bool) (int, []byte, error) {
	target := c.baseURL + cleanPath(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.HeaderKey, requestid.FromContext(ctx))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.Token(); token != "" && !public {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, path, http.StatusServiceUnavailable, duration)
		c.logger.Warn("portal request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, fmt.Sprintf("%s %s failed", method, path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(method, path, resp.StatusCode, duration)
	if err != nil {
		return 0, nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "read response body")
	}

	c.logger.Debug("portal request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)
	return resp.StatusCode, data, nil
}

// reissue fetches a fresh access token. Concurrent callers share one request.
func (c *Client) reissue(ctx context.Context) error {
	if c.reissuePath == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "token reissue not configured")
	}
	_, err, _ := c.refresh.Do("reissue", func() (interface{}, error) {
		status, body, err := c.send(ctx, http.MethodGet, c.reissuePath, nil, nil, true)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, appErrors.FromStatus(status, body)
		}
		token := extractToken(decode(body))
		if token == "" {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "reissue returned no token")
		}
		c.SetToken(token)

		c.mu.RLock()
		hook := c.onTokenRefresh
		c.mu.RUnlock()
		if hook != nil {
			hook(token)
		}
		return token, nil
	})
	return err
}

// expire runs the auth-expired hook once per burst of failing requests.
func (c *Client) expire(ctx context.Context) {
	if !c.expiring.CompareAndSwap(false, true) {
		return
	}
	defer c.expiring.Store(false)

	c.SetToken("")
	c.mu.RLock()
	hook := c.onAuthExpired
	c.mu.RUnlock()
	c.logger.Info("portal session expired")
	if hook != nil {
		hook(ctx)
	}
}

func (c *Client) isPublic(path string) bool {
	_, ok := c.public[cleanPath(path)]
	return ok
}

func (c *Client) observe(method, path string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveHTTPRequest(method, path, status, duration)
	}
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func decode(body []byte) interface{} {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return string(trimmed)
	}
	return out
}

func extractToken(payload interface{}) string {
	switch v := payload.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		for _, key := range []string{"accessToken", "access_token", "token"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		if inner, ok := v["data"]; ok {
			return extractToken(inner)
		}
		if inner, ok := v["result"]; ok {
			return extractToken(inner)
		}
	}
	return ""
}
