package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avoskres/salondesk/internal/client/session"
	"github.com/avoskres/salondesk/internal/common"
	"github.com/avoskres/salondesk/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultTimeout = 30 * time.Second
	refreshPath    = "/auth/refresh"
)

// authPaths are backend routes exempt from the access-token precondition:
// they are never blocked and never trigger a refresh.
var authPaths = map[string]struct{}{
	"/auth/login":           {},
	"/auth/register":        {},
	"/auth/setup":           {},
	refreshPath:             {},
	"/auth/forgot-password": {},
	"/auth/reset-password":  {},
}

func isAuthPath(p string) bool {
	_, ok := authPaths[p]
	return ok
}

// Shared transport with connection pooling, reused across client instances.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// Config holds construction parameters for the API client.
type Config struct {
	// BaseURL of the backend, e.g. "http://localhost:8080/api".
	BaseURL string

	// MockMode disables all token handling: demo deployments talk to a
	// backend that does not enforce auth.
	MockMode bool

	// Timeout for every outbound call. Zero means the 30s default.
	Timeout time.Duration

	// UploadField is the multipart form field name for Upload. Empty means
	// the "file" default.
	UploadField string
}

// Client is the authenticated HTTP client every SalonDesk feature talks
// through. It attaches credentials before each call, transparently refreshes
// expired access tokens, retries a 401'd request exactly once after a
// refresh, and normalizes every failure into the package's closed error set.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	session *session.AuthSession
	logger  logging.Logger
}

// New builds a Client bound to sess. The client installs itself as the
// session's refresh operation; jar may be nil in headless contexts.
func New(cfg Config, sess *session.AuthSession, jar http.CookieJar, logger logging.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if cfg.UploadField == "" {
		cfg.UploadField = common.DefaultUploadField
	}

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: sharedTransport,
			Jar:       jar,
		},
		session: sess,
		logger:  logger,
	}
	sess.SetRefreshFunc(c.refreshCall)
	return c, nil
}

// pendingRequest is one queued outbound call. The body is buffered so a
// retry replays exactly the same bytes; retried caps the 401 recovery at one
// attempt per original request.
type pendingRequest struct {
	method  string
	path    string
	header  http.Header
	body    []byte
	retried bool
}

func (c *Client) newRequest(method, path string, body []byte, contentType string) *pendingRequest {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set(common.RequestIDHeader, uuid.NewString())
	if body != nil {
		h.Set("Content-Type", contentType)
	}
	return &pendingRequest{method: method, path: path, header: h, body: body}
}

// Get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, in, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// Upload sends r as a multipart/form-data file under the configured form
// field name and decodes the JSON response into out.
func (c *Client) Upload(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(c.cfg.UploadField, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	pr := c.newRequest(http.MethodPost, path, buf.Bytes(), mw.FormDataContentType())
	data, err := c.do(ctx, pr)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	data, err := c.do(ctx, c.newRequest(method, path, body, "application/json"))
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// do runs the full request pipeline: the request interceptor, the network
// call, and the 401 recovery loop.
func (c *Client) do(ctx context.Context, pr *pendingRequest) ([]byte, error) {
	if err := c.authorize(ctx, pr); err != nil {
		return nil, err
	}

	for {
		resp, err := c.send(ctx, pr)
		if err != nil {
			return nil, &NetworkError{BaseURL: c.baseURL, Err: err}
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, &NetworkError{BaseURL: c.baseURL, Err: readErr}
		}

		if resp.StatusCode == http.StatusUnauthorized && !c.cfg.MockMode {
			retry, err := c.recoverUnauthorized(ctx, pr)
			if err != nil {
				return nil, err
			}
			if retry {
				continue
			}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		switch {
		case resp.StatusCode == http.StatusForbidden:
			c.logger.Warn(ctx, "access forbidden", "method", pr.method, "path", pr.path)
		case resp.StatusCode >= 500:
			c.logger.Error(ctx, "server error", "method", pr.method, "path", pr.path, "status", resp.StatusCode)
		}
		return nil, newHTTPError(resp.StatusCode, body)
	}
}

// authorize is the request interceptor: it decides, before anything is sent,
// whether the call may proceed and with which credentials.
func (c *Client) authorize(ctx context.Context, pr *pendingRequest) error {
	if c.cfg.MockMode {
		return nil
	}

	token, err := c.session.Store().AccessToken(ctx)
	if err != nil {
		return err
	}
	auth := isAuthPath(pr.path)

	if token == "" {
		if auth {
			return nil
		}
		// Known to fail: don't put it on the wire at all.
		c.session.RequireLogin()
		return ErrNotAuthenticated
	}

	if !auth && session.IsExpired(token) {
		fresh, err := c.session.Refresh(ctx)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				// Nothing stored to refresh with; the logout flow did not
				// run, so the redirect happens here.
				c.session.RequireLogin()
			}
			return ErrNotAuthenticated
		}
		token = fresh
	}

	pr.header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	return nil
}

// recoverUnauthorized is the response interceptor's 401 branch. It returns
// retry=true when the original request should be replayed with a fresh token.
func (c *Client) recoverUnauthorized(ctx context.Context, pr *pendingRequest) (bool, error) {
	if pr.path == refreshPath {
		c.session.Logout(ctx)
		return false, ErrSessionExpired
	}

	if pr.retried {
		c.logger.Warn(ctx, "still unauthorized after refresh", "method", pr.method, "path", pr.path)
		c.session.Logout(ctx)
		return false, ErrNotAuthenticated
	}

	pr.retried = true
	token, err := c.session.Refresh(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			// Refresh had no stored token and therefore no side effects.
			c.session.Logout(ctx)
		}
		return false, ErrNotAuthenticated
	}

	pr.header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	return true, nil
}

func (c *Client) send(ctx context.Context, pr *pendingRequest) (*http.Response, error) {
	var rd io.Reader
	if pr.body != nil {
		rd = bytes.NewReader(pr.body)
	}
	req, err := http.NewRequestWithContext(ctx, pr.method, c.baseURL+pr.path, rd)
	if err != nil {
		return nil, err
	}
	req.Header = pr.header.Clone()
	return c.http.Do(req)
}

// refreshCall is the session's RefreshFunc: a raw exchange of the refresh
// token for a new access token. It deliberately bypasses the interceptor
// pipeline so a rejected refresh can never trigger another refresh.
func (c *Client) refreshCall(ctx context.Context, refreshToken string) (string, string, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return "", "", err
	}

	pr := c.newRequest(http.MethodPost, refreshPath, body, "application/json")
	resp, err := c.send(ctx, pr)
	if err != nil {
		return "", "", &NetworkError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &NetworkError{BaseURL: c.baseURL, Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", "", ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", newHTTPError(resp.StatusCode, data)
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.AccessToken == "" {
		return "", "", errors.New("refresh response without access token")
	}
	return out.AccessToken, out.RefreshToken, nil
}
