package gammaapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/polymarket"
	"github.com/liamashdown/holderscope/internal/ratelimit"
)

// Client handles communication with the Polymarket Gamma API
type Client struct {
	transport *polymarket.Transport
	limiter   *ratelimit.Limiter
}

// NewClient creates a new Gamma API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		transport: polymarket.NewTransport("gamma", cfg.GammaAPIBaseURL, cfg.HTTPExtraHeaders),
		limiter:   ratelimit.New("gamma", cfg.GammaAPIRPS),
	}
}

// GetEventsBySlug fetches the events matching slug. The API answers with an
// array that is empty when the slug is unknown.
func (c *Client) GetEventsBySlug(ctx context.Context, slug string) ([]Event, error) {
	q := url.Values{}
	q.Set("slug", slug)

	var events []Event
	err := c.transport.GetJSON(ctx, polymarket.Request{
		Endpoint: "/events",
		Query:    q,
		Limiter:  c.limiter,
	}, &events)
	if err != nil {
		return nil, fmt.Errorf("get events for slug %s: %w", slug, err)
	}
	return events, nil
}
