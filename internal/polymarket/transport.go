// Package polymarket holds the HTTP plumbing shared by the Polymarket API clients.
package polymarket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/liamashdown/holderscope/internal/metrics"
	"github.com/liamashdown/holderscope/internal/ratelimit"
)

const defaultMaxBody = 8 << 20

// StatusError is returned when an upstream answers with a non-200 status
type StatusError struct {
	API        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.API, e.StatusCode, e.Body)
}

// Request describes one GET against an upstream
type Request struct {
	Endpoint string // metrics label, e.g. /positions
	Path     string // defaults to Endpoint
	Query    url.Values
	Accept   string
	MaxBytes int64
	Limiter  *ratelimit.Limiter
}

// Transport performs paced GET requests against one upstream API
type Transport struct {
	API          string
	BaseURL      string
	HTTPClient   *http.Client
	ExtraHeaders map[string]string
}

// NewTransport creates a transport for the named API
func NewTransport(api, baseURL string, extraHeaders map[string]string) *Transport {
	return &Transport{
		API:          api,
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		ExtraHeaders: extraHeaders,
	}
}

// Get executes the request and returns the raw body
func (t *Transport) Get(ctx context.Context, r Request) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordAPIRequest(t.API, r.Endpoint, time.Since(start), err)
	}()

	if err := r.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := r.Path
	if path == "" {
		path = r.Endpoint
	}
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	accept := r.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "holderscope/1.0")
	for k, v := range t.ExtraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{API: t.API, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	maxBytes := r.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBody
	}
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// GetJSON executes the request and decodes the JSON body into out
func (t *Transport) GetJSON(ctx context.Context, r Request, out interface{}) error {
	body, err := t.Get(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
