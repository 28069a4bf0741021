// Package storefront is a Go client for the marketplace REST API. It carries
// the browser-side workflows: multi-vendor checkout, cart quantity steps and
// review drafts with staged images.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	csrfHeader         = "x-csrf-token"
	csrfInvalidMessage = "Invalid CSRF token"
)

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// ServerMessage returns the message the server sent with err, or err's text.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	csrfToken  string
}

// NewClient returns a client with its own cookie jar, so the session and
// CSRF cookies set by the server ride along on later calls.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "cookie jar")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// FetchCSRF asks the server for a fresh token. State-changing calls do this
// on their own when no token is held yet.
func (c *Client) FetchCSRF(ctx context.Context) error {
	var out struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.send(ctx, http.MethodGet, "/api/csrf-token", nil, "", &out); err != nil {
		return errors.Wrap(err, "fetch csrf token")
	}
	c.csrfToken = out.CSRFToken
	return nil
}

// Login starts a session. The held CSRF token is dropped so the next
// state-changing call fetches one bound to the new session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, nil); err != nil {
		return errors.Wrap(err, "login")
	}
	c.csrfToken = ""
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.csrfToken = ""
	return errors.Wrap(err, "logout")
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var b []byte
	if body != nil {
		var err error
		if b, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "encode body")
		}
	}
	return c.mutate(ctx, method, path, b, "application/json", out)
}

func (c *Client) doMultipart(ctx context.Context, path, field, filename string, data []byte, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "multipart field")
	}
	if _, err := fw.Write(data); err != nil {
		return errors.Wrap(err, "multipart write")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "multipart close")
	}
	return c.mutate(ctx, http.MethodPost, path, buf.Bytes(), mw.FormDataContentType(), out)
}

// mutate attaches the CSRF header on non-GET requests, fetching a token
// first when needed. A request rejected for its CSRF token is retried once
// with a fresh token.
func (c *Client) mutate(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	if method == http.MethodGet {
		return c.send(ctx, method, path, bodyReader(body), contentType, out)
	}
	if c.csrfToken == "" {
		if err := c.FetchCSRF(ctx); err != nil {
			return err
		}
	}
	err := c.send(ctx, method, path, bodyReader(body), contentType, out)
	if !csrfRejected(err) {
		return err
	}
	c.csrfToken = ""
	if err := c.FetchCSRF(ctx); err != nil {
		return err
	}
	return c.send(ctx, method, path, bodyReader(body), contentType, out)
}

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

func csrfRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden && apiErr.Message == csrfInvalidMessage
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet && c.csrfToken != "" {
		req.Header.Set(csrfHeader, c.csrfToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusMultiStatus {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
