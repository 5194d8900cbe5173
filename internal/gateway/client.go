// Package gateway is the HTTP client for the toolshed catalog API.
//
// Every method maps to one API action. Transport failures come back as
// *common.NetworkError, non-2xx responses as *common.RemoteError, and bodies
// that cannot be mapped onto local types as *common.DecodeError. The client
// holds no state beyond its configuration.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/toolshed/internal/common"
)

const maxErrorBody = 1 << 20

// Config holds gateway settings.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8000",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// Client talks to the catalog API.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
	baseURL    string
	retry      common.RetryOptions
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: api base URL", common.ErrMissingConfig)
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: api base URL %q", common.ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultConfig().Timeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		now:        time.Now,
		retry: common.RetryOptions{
			MaxAttempts:  attempts,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
	}, nil
}

// request describes one API call.
type request struct {
	body   any
	out    any
	query  url.Values
	op     string
	method string
	path   string
	token  string
}

// do performs req once.
func (c *Client) do(ctx context.Context, req request) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", req.op, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	slog.Debug("API request", "op", req.op, "method", req.method, "path", req.path)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &common.NetworkError{Op: req.op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(req.op, resp)
	}

	if req.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		if errors.Is(err, io.EOF) {
			return &common.DecodeError{Resource: req.op, Field: "body", Err: errors.New("empty response")}
		}
		return &common.DecodeError{Resource: req.op, Field: "body", Err: err}
	}
	return nil
}

// get performs an idempotent GET, retrying transport failures and
// gateway-level 502/503/504 responses.
func (c *Client) get(ctx context.Context, req request) error {
	req.method = http.MethodGet
	return common.WithRetry(ctx, func() error {
		err := c.do(ctx, req)
		var remote *common.RemoteError
		if errors.As(err, &remote) && transientStatus(remote.Status) {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return err
	}, c.retry)
}

func transientStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// remoteError reads the body of a failed response into a RemoteError.
// FastAPI style {"detail": "..."} bodies are reduced to the detail text.
func remoteError(op string, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &common.RemoteError{Op: op, Status: resp.StatusCode}
	}

	text := strings.TrimSpace(string(raw))
	var detail struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(raw, &detail) == nil {
		if s, ok := detail.Detail.(string); ok && s != "" {
			text = s
		}
	}

	return &common.RemoteError{Op: op, Status: resp.StatusCode, Body: text}
}

func requireToken(op, token string) error {
	if token == "" {
		return fmt.Errorf("%s: %w", op, common.ErrMissingCredential)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
