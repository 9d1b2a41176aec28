// Package httpclient provides the HTTP transport for the AskIt API.
// It implements ports.Transport: base URL, auth header and timeout live here,
// the contract clients never see them.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/v1"
	DefaultTimeout = 60 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Token     string // sent as a bearer token when set
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the underlying client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements ports.Transport over net/http.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	client    *http.Client
}

var _ ports.Transport = (*Client)(nil)

// NewClient creates a transport with defaults for unset fields.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "askit-go"
	}
	return &Client{
		baseURL:   baseURL,
		token:     cfg.Token,
		userAgent: ua,
		client:    hc,
	}
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues exactly one HTTP request. It does not retry.
func (c *Client) Send(ctx context.Context, r ports.Request) ([]byte, error) {
	url := c.baseURL + r.Path
	if len(r.Query) > 0 {
		url += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Logger().Error("AskIt request failed", "method", r.Method, "path", r.Path, "error", err)
		return nil, errors.Wrapf(err, "calling AskIt %s %s", r.Method, r.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	logger.Logger().Debug("AskIt request", "method", r.Method, "path", r.Path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &entities.StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			Body:       data,
		}
	}
	return data, nil
}

// errorMessage extracts the server detail from an error body.
// FastAPI sends {"detail": "..."}; validation errors send a list.
func errorMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var detail string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil {
			return detail
		}
		if len(payload.Detail) > 0 {
			return string(payload.Detail)
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
