// Package overlayclient talks to the overlay REST API and keeps the local
// view of overlays that an editor front end renders.
package overlayclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"streamoverlay/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"
	DefaultTimeout = 10 * time.Second
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is a thin JSON client for /api/overlays. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{httpClient: client, baseURL: base, log: opts.Logger}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("overlay api: http %d: %s (%s)", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("overlay api: http %d: %s", e.Status, e.Message)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// TransportError covers failures where no usable envelope came back:
// connection errors, deadlines and non-JSON bodies.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("overlay api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Error   string          `json:"error"`
}

func (c *Client) List(ctx context.Context) ([]domain.Overlay, error) {
	var out []domain.Overlay
	if _, err := c.do(ctx, http.MethodGet, "/overlays", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Overlay{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*domain.Overlay, error) {
	return c.overlay(ctx, http.MethodGet, "/overlays/"+url.PathEscape(id), nil)
}

func (c *Client) Create(ctx context.Context, fields domain.OverlayFields) (*domain.Overlay, error) {
	return c.overlay(ctx, http.MethodPost, "/overlays", fields)
}

func (c *Client) Update(ctx context.Context, id string, fields domain.OverlayFields) (*domain.Overlay, error) {
	return c.overlay(ctx, http.MethodPut, "/overlays/"+url.PathEscape(id), fields)
}

func (c *Client) ToggleVisibility(ctx context.Context, id string) (*domain.Overlay, error) {
	return c.overlay(ctx, http.MethodPatch, "/overlays/"+url.PathEscape(id)+"/toggle", nil)
}

// Delete returns the overlay the server removed.
func (c *Client) Delete(ctx context.Context, id string) (*domain.Overlay, error) {
	return c.overlay(ctx, http.MethodDelete, "/overlays/"+url.PathEscape(id), nil)
}

// Health calls the API root and returns its status message. The root lives
// one level above the /api base URL.
func (c *Client) Health(ctx context.Context) (string, error) {
	root := strings.TrimSuffix(c.baseURL, "/api")
	resp, err := c.send(ctx, http.MethodGet, root+"/", "/", nil)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) overlay(ctx context.Context, method, path string, body any) (*domain.Overlay, error) {
	var out domain.Overlay
	if _, err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*response, error) {
	resp, err := c.send(ctx, method, c.baseURL+path, path, body)
	if err != nil {
		return nil, err
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, endpoint, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("method", method).Str("path", path).Msg("overlay api request")
	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("overlay api unreachable")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer httpResp.Body.Close()

	var out response
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("http %d: %w", httpResp.StatusCode, err)}
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", httpResp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("overlay api response")

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(httpResp.StatusCode)
		}
		return nil, &APIError{Status: httpResp.StatusCode, Message: msg, Detail: out.Error}
	}
	return &out, nil
}
