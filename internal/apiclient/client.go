// Package apiclient wraps the dashboard REST API: it attaches bearer
// credentials to every request and transparently recovers from an expired
// access token exactly once per request via a shared, single-flight refresh.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
	"github.com/vulndeck/vulndeck-cli/internal/config"
	"github.com/vulndeck/vulndeck-cli/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrSessionExpired is returned when the refresh token itself is rejected.
// Callers should prompt for a new login.
var ErrSessionExpired = errors.New("session expired; run 'vulndeck login'")

// APIError carries a server-side failure with the backend's detail message
// when one was provided.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// Client is the authenticated HTTP client for the dashboard backend.
type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store
	logger  *zap.Logger

	// refreshGroup collapses concurrent refresh attempts into one request.
	refreshGroup singleflight.Group

	// logo is memoized per session: first successful fetch wins. A failed
	// fetch is retried on the next call.
	logoMu     sync.Mutex
	logoLoaded bool
	logoData   []byte
}

// New builds a Client from configuration and a credential store.
func New(cfg config.APIConfig, store *session.Store, logger *zap.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.IgnoreTLSErrors {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		store:  store,
		logger: logger.Named("apiclient"),
	}
}

// Login authenticates with username/password/domain and persists the
// resulting tokens and identity.
func (c *Client) Login(ctx context.Context, username, password, domain string) (schemas.TokenResponse, error) {
	var tokens schemas.TokenResponse
	req := schemas.LoginRequest{Username: username, Password: password, Domain: domain}
	if err := c.postUnauthenticated(ctx, "/api/auth/login", req, &tokens); err != nil {
		return tokens, err
	}
	identity := schemas.Identity{Username: username, Profile: tokens.Profile}
	if err := c.store.Save(tokens, identity); err != nil {
		return tokens, fmt.Errorf("login succeeded but storing credentials failed: %w", err)
	}
	return tokens, nil
}

// Logout clears stored credentials.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// GetJSON issues an authenticated GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues an authenticated POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// PutJSON issues an authenticated PUT with a JSON body.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues an authenticated DELETE and discards any response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetBytes issues an authenticated GET and returns the raw response body.
func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.doAuthenticated(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

// UploadFile issues an authenticated multipart POST with a single file field.
func (c *Client) UploadFile(ctx context.Context, path, fieldName, fileName string, content []byte, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, filepath.Base(fileName))
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	resp, err := c.doAuthenticated(ctx, http.MethodPost, path, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Logo returns the branding logo bytes, memoized for the lifetime of the
// client. The first successful fetch wins and is never invalidated; a failed
// fetch returns nil and leaves the cache unset so the next call tries again.
func (c *Client) Logo(ctx context.Context) []byte {
	c.logoMu.Lock()
	defer c.logoMu.Unlock()
	if c.logoLoaded {
		return c.logoData
	}
	data, err := c.GetBytes(ctx, "/api/branding/logo")
	if err != nil {
		c.logger.Debug("logo fetch failed; report proceeds without it", zap.Error(err))
		return nil
	}
	c.logoData = data
	c.logoLoaded = true
	return data
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = raw
	}

	resp, err := c.doAuthenticated(ctx, method, path, payload, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// doAuthenticated sends the request with the current bearer token. On a 401
// it joins the single-flight refresh and reissues the request exactly once.
func (c *Client) doAuthenticated(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	token, err := c.store.AccessToken()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, body, contentType, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if exp, expErr := session.TokenExpiry(token); expErr == nil {
		c.logger.Debug("access token rejected by server",
			zap.String("path", path),
			zap.Time("token_expiry", exp),
			zap.Duration("stale_for", time.Since(exp)))
	}

	newToken, err := c.refreshToken(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("access token refreshed; retrying request",
		zap.String("method", method), zap.String("path", path))
	return c.send(ctx, method, path, body, contentType, newToken)
}

// refreshToken performs (or joins) the single in-flight token refresh. All
// concurrent 401s observe the same outcome. On refresh failure the stored
// credentials are cleared.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refresh, err := c.store.RefreshToken()
		if err != nil {
			return "", ErrSessionExpired
		}

		var tokens schemas.TokenResponse
		if err := c.postUnauthenticated(ctx, "/api/auth/refresh", schemas.RefreshRequest{RefreshToken: refresh}, &tokens); err != nil {
			c.logger.Warn("token refresh rejected; clearing credentials", zap.Error(err))
			if clearErr := c.store.Clear(); clearErr != nil {
				c.logger.Warn("failed to clear credentials", zap.Error(clearErr))
			}
			return "", ErrSessionExpired
		}
		if err := c.store.SetAccessToken(tokens.AccessToken); err != nil {
			return "", fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// postUnauthenticated sends a JSON POST without bearer credentials. Used by
// the login and refresh endpoints, which never trigger the retry policy.
func (c *Client) postUnauthenticated(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, path, raw, "application/json", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}

// decodeError converts a non-2xx response into an APIError, preferring the
// backend's "detail" message when present.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(raw, &payload) == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
