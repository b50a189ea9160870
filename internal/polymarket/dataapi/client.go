package dataapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/polymarket"
	"github.com/liamashdown/holderscope/internal/ratelimit"
)

// Client handles communication with the Polymarket Data API
type Client struct {
	transport          *polymarket.Transport
	holdersLimiter     *ratelimit.Limiter
	positionsLimiter   *ratelimit.Limiter
	activityLimiter    *ratelimit.Limiter
	leaderboardLimiter *ratelimit.Limiter
}

// NewClient creates a new Data API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		transport:          polymarket.NewTransport("data", cfg.DataAPIBaseURL, cfg.HTTPExtraHeaders),
		holdersLimiter:     ratelimit.New("data_holders", cfg.DataAPIHoldersRPS),
		positionsLimiter:   ratelimit.New("data_positions", cfg.DataAPIPositionsRPS),
		activityLimiter:    ratelimit.New("data_activity", cfg.DataAPIActivityRPS),
		leaderboardLimiter: ratelimit.New("data_leaderboard", cfg.DataAPILeaderboardRPS),
	}
}

// GetHolders fetches the top holders of each outcome token of a market,
// ranked by share count descending
func (c *Client) GetHolders(ctx context.Context, conditionID string, limit int) ([]HolderGroup, error) {
	q := url.Values{}
	q.Set("market", conditionID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var groups []HolderGroup
	err := c.transport.GetJSON(ctx, polymarket.Request{
		Endpoint: "/holders",
		Query:    q,
		Limiter:  c.holdersLimiter,
	}, &groups)
	if err != nil {
		return nil, fmt.Errorf("get holders for %s: %w", conditionID, err)
	}
	return groups, nil
}

// PositionParams holds parameters for the GetPositions call
type PositionParams struct {
	User          string
	Market        string // condition ID, empty for all markets
	Limit         int
	SizeThreshold float64
}

// GetPositions fetches a wallet's positions
func (c *Client) GetPositions(ctx context.Context, params PositionParams) ([]Position, error) {
	q := url.Values{}
	q.Set("user", params.User)
	if params.Market != "" {
		q.Set("market", params.Market)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.SizeThreshold > 0 {
		q.Set("sizeThreshold", strconv.FormatFloat(params.SizeThreshold, 'f', -1, 64))
	}

	var positions []Position
	err := c.transport.GetJSON(ctx, polymarket.Request{
		Endpoint: "/positions",
		Query:    q,
		Limiter:  c.positionsLimiter,
	}, &positions)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	return positions, nil
}

// ActivityParams holds parameters for the GetActivity call
type ActivityParams struct {
	User   string
	Market string
	Limit  int
	Type   string // TRADE
}

// GetActivity fetches a wallet's activity, most recent first
func (c *Client) GetActivity(ctx context.Context, params ActivityParams) ([]Activity, error) {
	q := url.Values{}
	q.Set("user", params.User)
	if params.Market != "" {
		q.Set("market", params.Market)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Type != "" {
		q.Set("type", params.Type)
	}

	var activity []Activity
	err := c.transport.GetJSON(ctx, polymarket.Request{
		Endpoint: "/activity",
		Query:    q,
		Limiter:  c.activityLimiter,
	}, &activity)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return activity, nil
}

// GetLeaderboardEntry looks a wallet up on the all-time profit leaderboard
func (c *Client) GetLeaderboardEntry(ctx context.Context, wallet string) ([]LeaderboardEntry, error) {
	q := url.Values{}
	q.Set("user", wallet)
	q.Set("timePeriod", "all")
	q.Set("orderBy", "PNL")
	q.Set("limit", "1")

	var entries []LeaderboardEntry
	err := c.transport.GetJSON(ctx, polymarket.Request{
		Endpoint: "/v1/leaderboard",
		Query:    q,
		Limiter:  c.leaderboardLimiter,
	}, &entries)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	return entries, nil
}
