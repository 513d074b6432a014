package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id so client and service logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds a single round trip. Multi-page documents are
// processed synchronously by the service, so this is generous.
const DefaultTimeout = 10 * time.Minute

// Client is an HTTP client for the extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	body, _, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// Post performs a POST request with JSON body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, _, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// PostForm performs a POST request with a url-encoded form and decodes the response.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, _, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// Upload describes a file sent as a multipart form part.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// PostFile performs a multipart POST carrying a single file and decodes the response.
func (c *Client) PostFile(ctx context.Context, path string, up Upload, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, up.Field, up.Filename))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, _, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// GetRaw performs a GET request and returns the body with its content type.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// do sends the request and returns the body of a successful response.
// Transport failures are reported as ErrServiceUnreachable and non-2xx
// responses as *ServiceError.
func (c *Client) do(req *http.Request) ([]byte, string, error) {
	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		c.logger.Warn("service request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", requestID, "error", err)
		return nil, "", fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %v", ErrServiceUnreachable, err)
	}

	c.logger.Debug("service request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 400 {
		return nil, "", newServiceError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func decode(body []byte, result any) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// ErrorResponse matches the service's error response format.
// FastAPI-style services use "detail"; "error" is accepted as well.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func newServiceError(status int, body []byte) *ServiceError {
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		if detail := detailString(errResp.Detail); detail != "" {
			return &ServiceError{StatusCode: status, Detail: detail}
		}
		if errResp.Error != "" {
			return &ServiceError{StatusCode: status, Detail: errResp.Error}
		}
	}
	return &ServiceError{StatusCode: status, Body: strings.TrimSpace(string(body))}
}

// detailString renders a "detail" field. Validation failures carry a list
// of objects instead of a string; those are kept as compact JSON.
func detailString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
