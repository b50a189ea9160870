// Package profile fetches public Polymarket profile pages.
package profile

import (
	"context"
	"fmt"
	"net/url"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/polymarket"
	"github.com/liamashdown/holderscope/internal/ratelimit"
)

const maxMarkupBytes = 4 << 20

// Client fetches profile page markup
type Client struct {
	transport *polymarket.Transport
	limiter   *ratelimit.Limiter
}

// NewClient creates a new profile page client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		transport: polymarket.NewTransport("profile", cfg.ProfileBaseURL, cfg.HTTPExtraHeaders),
		limiter:   ratelimit.New("profile", cfg.ProfileRPS),
	}
}

// GetMarkup returns the raw markup of the wallet's profile page
func (c *Client) GetMarkup(ctx context.Context, wallet string) (string, error) {
	body, err := c.transport.Get(ctx, polymarket.Request{
		Endpoint: "/profile",
		Path:     "/profile/" + url.PathEscape(wallet),
		Accept:   "text/html",
		MaxBytes: maxMarkupBytes,
		Limiter:  c.limiter,
	})
	if err != nil {
		return "", fmt.Errorf("get profile page: %w", err)
	}
	return string(body), nil
}
