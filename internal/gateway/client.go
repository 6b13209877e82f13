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

	"github.com/google/uuid"

	"pitchctl/internal/config"
	"pitchctl/internal/logging"
	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

const (
	headerRequestID      = "X-Request-Id"
	defaultTimeout       = 30 * time.Second
	defaultUploadTimeout = 10 * time.Minute
	defaultMaxBodyBytes  = 16 << 20
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the pitch backend.
type Client struct {
	locator      pitch.Locator
	token        string
	http         HTTPDoer
	uploadHTTP   HTTPDoer
	maxBodyBytes int64
	logger       *slog.Logger
	requestID    func() string
}

var _ pitch.Gateway = (*Client)(nil)

// Option customizes a client.
type Option func(*Client)

// WithHTTPClient overrides the client used for regular requests. Uploads use
// it too unless WithUploadClient is also given.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
			c.uploadHTTP = doer
		}
	}
}

// WithUploadClient overrides the client used for multipart uploads.
func WithUploadClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.uploadHTTP = doer
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithMaxResponseBytes caps decoded response bodies. Zero disables the cap.
func WithMaxResponseBytes(limit int64) Option {
	return func(c *Client) {
		if limit >= 0 {
			c.maxBodyBytes = limit
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "gateway")
	}
}

// WithRequestIDFunc overrides request id generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// New constructs a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gateway", "new client", fmt.Sprintf("invalid base url %q", baseURL), err)
	}
	client := &Client{
		locator:      pitch.NewLocator(baseURL),
		http:         &http.Client{Timeout: defaultTimeout},
		uploadHTTP:   &http.Client{Timeout: defaultUploadTimeout},
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logging.NewComponentLogger(nil, "gateway"),
		requestID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the backend section of cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "gateway", "new client", "config is nil", nil)
	}
	return New(cfg.Backend.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithUploadClient(&http.Client{Timeout: cfg.UploadTimeout()}),
		WithToken(cfg.Backend.APIToken),
		WithMaxResponseBytes(cfg.Backend.MaxResponseBytes),
		WithLogger(logger),
	)
}

// Locator returns the locator for the client's base URL.
func (c *Client) Locator() pitch.Locator {
	return c.locator
}

type request struct {
	method      string
	segments    []string
	body        []byte
	contentType string
	upload      bool
}

func jsonRequest(method string, payload any, segments ...string) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, services.Wrap(services.ErrValidation, "gateway", "encode request", "", err)
	}
	return request{method: method, segments: segments, body: data, contentType: "application/json"}, nil
}

func (c *Client) do(ctx context.Context, req request) (pitch.Body, error) {
	endpoint := c.locator.Endpoint(req.segments...)
	path := "/" + strings.Join(req.segments, "/")
	operation := req.method + " " + path

	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.requestID()
	}

	var reader io.Reader
	if req.body != nil {
		reader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, reader)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", operation, "build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	doer := c.http
	if req.upload {
		doer = c.uploadHTTP
	}
	logger := c.logger.With(logging.String(logging.FieldCorrelationID, requestID))
	started := time.Now()
	resp, err := doer.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, services.Wrap(services.ErrTransport, "gateway", operation, "request cancelled", ctxErr)
		}
		return nil, services.Wrap(services.ErrTransport, "gateway", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		statusErr := &StatusError{Method: req.method, Path: path, StatusCode: resp.StatusCode, Body: string(snippet)}
		logger.Debug("backend returned error status",
			logging.String("operation", operation),
			logging.Int("status", resp.StatusCode),
			logging.Bool("retryable", statusErr.Retryable()),
		)
		return nil, statusErr
	}

	payload, err := c.readBody(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, "gateway", operation, "read response", err)
	}
	logger.Debug("backend request completed",
		logging.String("operation", operation),
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(payload)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return pitch.DecodeBody(payload)
}

func (c *Client) readBody(body io.Reader) ([]byte, error) {
	if c.maxBodyBytes <= 0 {
		return io.ReadAll(body)
	}
	payload, err := io.ReadAll(io.LimitReader(body, c.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > c.maxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", c.maxBodyBytes)
	}
	return payload, nil
}
