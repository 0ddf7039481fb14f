// Package httpapi implements ports.Transport over the backend's HTTP/JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/zerr"
)

// RequestIDHeader carries a fresh id on every request.
const RequestIDHeader = "X-Request-ID"

// Client implements ports.Transport.
type Client struct {
	baseURL string
	http    *http.Client
	timeout *time.Duration
	token   string
	log     ports.Logger
	newID   func() string
}

var _ ports.Transport = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each exchange. Zero means no timeout. The timeout is
// applied to a copy, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger enables debug logging of each exchange.
func WithLogger(log ports.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.http
		hc.Timeout = *c.timeout
		c.http = &hc
	}
	return c
}

// List fetches a collection and normalizes it to a plain sequence.
func (c *Client) List(ctx context.Context, path string, params url.Values) ([]domain.Entity, error) {
	body, err := c.do(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return nil, err
	}
	rows, err := decodeCollection(body)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return rows, nil
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, path string) (domain.Entity, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeEntity(body, path)
}

// Create posts body to a collection.
func (c *Client) Create(ctx context.Context, path string, body domain.Entity) (domain.Entity, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

// Update puts body to a record.
func (c *Client) Update(ctx context.Context, path string, body domain.Entity) (domain.Entity, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body)
}

// Delete removes a record. Both 200 and 204 count as success.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}

// Upload posts a multipart form. Text fields are written in key order, the
// file part last.
func (c *Client) Upload(ctx context.Context, path string, form domain.UploadForm) (domain.Entity, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range slices.Sorted(maps.Keys(form.Fields)) {
		if err := w.WriteField(key, form.Fields[key]); err != nil {
			return nil, zerr.Wrap(err, "failed to encode form field")
		}
	}

	field := form.FileField
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, form.FileName)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode file part")
	}
	if _, err := part.Write(form.Content); err != nil {
		return nil, zerr.Wrap(err, "failed to encode file part")
	}
	if err := w.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to finish multipart body")
	}

	body, err := c.do(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decodeEntity(body, path)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload domain.Entity) (domain.Entity, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode request body")
	}
	body, err := c.do(ctx, method, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}
	return decodeEntity(body, path)
}

// do performs one exchange and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string) ([]byte, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to build request"), "path", path)
	}
	id := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, id)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.debug(fmt.Sprintf("%s %s request_id=%s", method, path, id))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(domain.ErrCancelled, ctxErr)
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "request failed"), "path", path), "method", method)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(domain.ErrCancelled, ctxErr)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read response"), "path", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(method, path, resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) debug(msg string) {
	if c.log != nil {
		c.log.Debug(msg)
	}
}
