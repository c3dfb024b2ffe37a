// Package http provides the default openagenda.Transport, built on
// go-retryablehttp with retries disabled.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

var _ openagenda.Transport = (*Client)(nil)

// Request is one outgoing call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Payload *openagenda.Payload
}

// Client performs requests. Non-2xx responses are returned without error;
// errors mean no response was received.
type Client struct {
	httpClient *retryablehttp.Client
	logger     openagenda.Logger
	debug      bool
	userAgent  string
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger openagenda.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying net/http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
	}
}

// NewClient creates a transport that never retries.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.CheckRetry = noRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		httpClient: retryClient,
		logger:     openagenda.NoopLogger{},
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func noRetry(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	return false, err
}

// Do sends req and reads the whole response body.
func (c *Client) Do(ctx context.Context, req *Request) (*openagenda.Response, error) {
	body, contentType, err := encodePayload(req.Payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":    req.Method,
			"url":       req.URL,
			"multipart": req.Payload.IsMultipart(),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"size":     len(respBody),
		})
	}

	return &openagenda.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// encodePayload renders payload as JSON, or as multipart with the JSON in a
// "data" field when files are attached.
func encodePayload(payload *openagenda.Payload) ([]byte, string, error) {
	if payload == nil || (payload.Data == nil && len(payload.Files) == 0) {
		return nil, "", nil
	}

	data, err := json.Marshal(payload.Data)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}

	if !payload.IsMultipart() {
		return data, "application/json", nil
	}

	var buffer bytes.Buffer

	writer := multipart.NewWriter(&buffer)

	err = writer.WriteField("data", string(data))
	if err != nil {
		return nil, "", fmt.Errorf("writing data field: %w", err)
	}

	for _, file := range payload.Files {
		err = writeFile(writer, file)
		if err != nil {
			return nil, "", err
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buffer.Bytes(), writer.FormDataContentType(), nil
}

func writeFile(writer *multipart.Writer, file openagenda.File) error {
	content, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", file.Field, err)
	}

	defer func() { _ = content.Close() }()

	part, err := writer.CreateFormFile(file.Field, file.Name)
	if err != nil {
		return fmt.Errorf("creating %s part: %w", file.Field, err)
	}

	_, err = io.Copy(part, content)
	if err != nil {
		return fmt.Errorf("copying %s: %w", file.Field, err)
	}

	return nil
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, url string, headers map[string]string) (*openagenda.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodHead, URL: url, Headers: headers})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*openagenda.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url, Headers: headers})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, url string, payload *openagenda.Payload, headers map[string]string) (*openagenda.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, URL: url, Headers: headers, Payload: payload})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, url string, payload *openagenda.Payload, headers map[string]string) (*openagenda.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, URL: url, Headers: headers, Payload: payload})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, payload *openagenda.Payload, headers map[string]string) (*openagenda.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, URL: url, Headers: headers, Payload: payload})
}
