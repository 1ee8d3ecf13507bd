package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/internal/encoder"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"go.uber.org/zap"
)

// DefaultUserAgent identifies the CLI to the API.
const DefaultUserAgent = "pinterest-ads-cli/0.1.0"

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPatch:  true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Client sends authenticated requests to the API and decodes JSON responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *zap.Logger
}

// ClientConfig configures the client.
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds each request when HTTPClient is nil. Zero means none.
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// NewClient creates a new API client.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("client config is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: no base URL configured", errs.ErrConfiguration)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildURL joins path onto the base URL. Absolute http(s) URLs pass through.
func (c *Client) BuildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// Request is a single API call.
type Request struct {
	// Operation names the call in error messages.
	Operation  string
	Method     string
	URL        string
	Credential *auth.Credential
	Query      encoder.Query
	Body       *Body
}

// Send issues one request and returns the decoded JSON response.
func (c *Client) Send(ctx context.Context, method, url string, cred *auth.Credential, query encoder.Query, body *Body) (any, error) {
	return c.Do(ctx, &Request{Method: method, URL: url, Credential: cred, Query: query, Body: body})
}

// Get issues a GET without a body.
func (c *Client) Get(ctx context.Context, url string, cred *auth.Credential, query encoder.Query) (any, error) {
	return c.Send(ctx, http.MethodGet, url, cred, query, nil)
}

// Do issues req. An empty body decodes to nil on success. Non-2xx responses
// with a JSON body fail with *errs.APIError. Nothing is retried.
func (c *Client) Do(ctx context.Context, req *Request) (any, error) {
	method := strings.ToUpper(req.Method)
	if !allowedMethods[method] {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedMethod, req.Method)
	}
	if req.Body != nil && (method == http.MethodGet || method == http.MethodDelete) {
		return nil, fmt.Errorf("%w for %s", errs.ErrBodyNotAllowed, method)
	}

	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var bodyReader io.Reader
	var contentType string
	if req.Body != nil {
		data, ct, err := req.Body.Encode()
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(data)
		contentType = ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", errs.ErrConfiguration, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Credential != nil {
		if err := req.Credential.Apply(httpReq); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", target),
		zap.String("auth", credentialKind(req.Credential)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", errs.ErrTransport, method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", errs.ErrTransport, err)
	}

	c.logger.Debug("response",
		zap.String("method", method),
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
	)

	return decodeResponse(req.Operation, resp.StatusCode, raw)
}

func decodeResponse(operation string, status int, raw []byte) (any, error) {
	success := status >= 200 && status < 300

	if len(bytes.TrimSpace(raw)) == 0 {
		if success {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %shttp %d", errs.ErrEmptyErrorResponse, prefix(operation), status)
	}

	value, err := DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %shttp %d: %v", errs.ErrDecode, prefix(operation), status, err)
	}

	if !success {
		return nil, &errs.APIError{Operation: operation, Status: status, Body: value}
	}
	return value, nil
}

// DecodeJSON decodes a response body, keeping numbers as json.Number.
func DecodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func prefix(operation string) string {
	if operation == "" {
		return ""
	}
	return operation + ": "
}

func credentialKind(cred *auth.Credential) string {
	if cred == nil {
		return "none"
	}
	return cred.String()
}
