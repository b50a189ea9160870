// Package holders defines the holder records flowing through enrichment and
// the per-holder derivations (position selection, market P&L, trade activity).
package holders

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Side is one outcome of a binary market
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Sides lists both outcome sides in report order
var Sides = []Side{SideYes, SideNo}

// OutcomeIndex returns the upstream outcome index of the side
func (s Side) OutcomeIndex() int {
	if s == SideNo {
		return 1
	}
	return 0
}

// SideFromIndex maps an upstream outcome index to a side
func SideFromIndex(idx int) Side {
	if idx == 1 {
		return SideNo
	}
	return SideYes
}

// ParseSide parses yes/no case-insensitively
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES":
		return SideYes, nil
	case "NO":
		return SideNo, nil
	}
	return "", fmt.Errorf("invalid side %q (must be yes or no)", s)
}

// MarketRef identifies one side of one binary sub-market
type MarketRef struct {
	EventSlug   string `json:"event_slug"`
	ConditionID string `json:"condition_id"`
	Side        Side   `json:"side"`
	Question    string `json:"question"`
}

// HolderStub is a raw entry from the holder source
type HolderStub struct {
	Rank      int     `json:"rank"` // zero-based position in the upstream ranking
	Wallet    string  `json:"wallet"`
	Name      string  `json:"name,omitempty"`
	Pseudonym string  `json:"pseudonym,omitempty"`
	Bio       string  `json:"bio,omitempty"`
	Side      Side    `json:"side"`
	Amount    float64 `json:"amount"`
}

// DisplayName picks the best available label for a holder
func (h HolderStub) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	if h.Pseudonym != "" {
		return h.Pseudonym
	}
	return ShortWallet(h.Wallet)
}

// Position is a wallet's holding on one outcome side. The zero value means
// "no position".
type Position struct {
	Shares       float64 `json:"shares"`
	AvgPrice     float64 `json:"avg_price"`
	CurPrice     float64 `json:"cur_price"`
	InitialValue float64 `json:"initial_value"`
	CurrentValue float64 `json:"current_value"`
}

// Held reports whether the position holds any shares
func (p Position) Held() bool {
	return p.Shares > 0
}

// ActivitySummary aggregates a wallet's trades on one side of one market
type ActivitySummary struct {
	Buys       int     `json:"buys"`
	Sells      int     `json:"sells"`
	BuyVolume  float64 `json:"buy_volume"`
	BuyShares  float64 `json:"buy_shares"`
	SellVolume float64 `json:"sell_volume"`
	SellShares float64 `json:"sell_shares"`
}

// Trades returns the total number of trades
func (a ActivitySummary) Trades() int {
	return a.Buys + a.Sells
}

// PnLSource names the strategy that produced an all-time P&L
type PnLSource string

const (
	PnLUnknown     PnLSource = ""
	PnLProfitAPI   PnLSource = "profit_api"
	PnLLeaderboard PnLSource = "leaderboard"
	PnLProfilePage PnLSource = "profile_page"
	PnLDerived     PnLSource = "derived_positions"
)

// AllTimePnL is a wallet's lifetime profit/loss, or unknown
type AllTimePnL struct {
	Value  float64   `json:"value"`
	Known  bool      `json:"known"`
	Source PnLSource `json:"source,omitempty"`
}

// UnknownPnL is the explicit "no data" value
var UnknownPnL = AllTimePnL{}

// KnownPnL builds a resolved value tagged with its source
func KnownPnL(v float64, src PnLSource) AllTimePnL {
	return AllTimePnL{Value: v, Known: true, Source: src}
}

// LowConfidence reports whether the value came from the derived fallback
func (p AllTimePnL) LowConfidence() bool {
	return p.Known && p.Source == PnLDerived
}

// EnrichedHolder is the pipeline's output record for one holder
type EnrichedHolder struct {
	Rank       int             `json:"rank"`
	Wallet     string          `json:"wallet"`
	Name       string          `json:"name"`
	Market     MarketRef       `json:"market"`
	Position   Position        `json:"position"`
	MarketPnL  float64         `json:"market_pnl"`
	PercentPnL float64         `json:"percent_pnl"`
	AllTimePnL AllTimePnL      `json:"all_time_pnl"`
	Activity   ActivitySummary `json:"activity"`
}

// NormalizeWallet returns the EIP-55 checksummed form of a hex address and
// whether the input was a well-formed address. Malformed input is returned
// trimmed but otherwise untouched.
func NormalizeWallet(wallet string) (string, bool) {
	wallet = strings.TrimSpace(wallet)
	if !common.IsHexAddress(wallet) {
		return wallet, false
	}
	return common.HexToAddress(wallet).Hex(), true
}

// ShortWallet renders a wallet as 0x1234…abcd for tables
func ShortWallet(wallet string) string {
	w, _ := NormalizeWallet(wallet)
	if len(w) <= 12 {
		return w
	}
	return w[:6] + "…" + w[len(w)-4:]
}
