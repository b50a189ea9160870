// Package lbapi talks to the Polymarket leaderboard API, which exposes
// all-time profit for wallets that made the ranked set.
package lbapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/polymarket"
	"github.com/liamashdown/holderscope/internal/ratelimit"
)

// profitKeys are tried in order on each returned object
var profitKeys = []string{"profit", "amount", "pnl"}

// Client handles communication with the leaderboard API
type Client struct {
	transport *polymarket.Transport
	limiter   *ratelimit.Limiter
}

// NewClient creates a new leaderboard API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		transport: polymarket.NewTransport("lb", cfg.LBAPIBaseURL, cfg.HTTPExtraHeaders),
		limiter:   ratelimit.New("lb_profit", cfg.LBAPIRPS),
	}
}

// GetProfit returns the wallet's all-time profit. ok is false when the
// wallet is not in the ranked set or the payload carries no numeric profit.
func (c *Client) GetProfit(ctx context.Context, wallet string) (profit float64, ok bool, err error) {
	q := url.Values{}
	q.Set("window", "all")
	q.Set("limit", "1")
	q.Set("address", wallet)

	body, err := c.transport.Get(ctx, polymarket.Request{
		Endpoint: "/profit",
		Query:    q,
		Limiter:  c.limiter,
	})
	if err != nil {
		return 0, false, fmt.Errorf("get profit: %w", err)
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, false, fmt.Errorf("decode response: %w", err)
	}

	profit, ok = extractProfit(payload, wallet)
	return profit, ok, nil
}

// extractProfit accepts either a single object or an array of ranked rows.
// For arrays the row for wallet wins; a lone row without a wallet field is
// taken as the answer.
func extractProfit(payload interface{}, wallet string) (float64, bool) {
	switch v := payload.(type) {
	case map[string]interface{}:
		return profitField(v)
	case []interface{}:
		for _, item := range v {
			row, isMap := item.(map[string]interface{})
			if !isMap {
				continue
			}
			addr, _ := row["proxyWallet"].(string)
			if addr == "" && len(v) == 1 {
				return profitField(row)
			}
			if strings.EqualFold(addr, wallet) {
				return profitField(row)
			}
		}
	}
	return 0, false
}

func profitField(row map[string]interface{}) (float64, bool) {
	for _, key := range profitKeys {
		switch n := row[key].(type) {
		case float64:
			return n, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
