package pnl

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
)

// ProfitSource is the structured profit endpoint
type ProfitSource interface {
	GetProfit(ctx context.Context, wallet string) (float64, bool, error)
}

// LeaderboardSource is the ranked all-time leaderboard
type LeaderboardSource interface {
	GetLeaderboardEntry(ctx context.Context, wallet string) ([]dataapi.LeaderboardEntry, error)
}

// MarkupSource returns a wallet's public profile page
type MarkupSource interface {
	GetMarkup(ctx context.Context, wallet string) (string, error)
}

// PositionsSource lists a wallet's positions across all markets
type PositionsSource interface {
	GetPositions(ctx context.Context, params dataapi.PositionParams) ([]dataapi.Position, error)
}

// Sources bundles the upstreams used by the default chain
type Sources struct {
	Profit      ProfitSource
	Leaderboard LeaderboardSource
	Profile     MarkupSource
	Positions   PositionsSource
}

// NewDefaultResolver builds the chain profit API, leaderboard, profile page,
// derived positions, with per-strategy timeouts from cfg
func NewDefaultResolver(cfg *config.Config, src Sources, log *logrus.Logger) *Resolver {
	return NewResolver(log,
		ProfitAPI(src.Profit, cfg.ProfitAPITimeout),
		Leaderboard(src.Leaderboard, cfg.ProfitAPITimeout),
		ProfilePage(src.Profile, cfg.ProfileTimeout),
		DerivedPositions(src.Positions, cfg.DerivedPositionsLimit, cfg.DerivedPnLTimeout),
	)
}

// ProfitAPI uses the profit endpoint's figure as-is
func ProfitAPI(src ProfitSource, timeout time.Duration) Strategy {
	return Strategy{
		Source:  holders.PnLProfitAPI,
		Timeout: timeout,
		Lookup:  src.GetProfit,
	}
}

// Leaderboard uses the pnl of the leaderboard row belonging to the wallet
func Leaderboard(src LeaderboardSource, timeout time.Duration) Strategy {
	return Strategy{
		Source:  holders.PnLLeaderboard,
		Timeout: timeout,
		Lookup: func(ctx context.Context, wallet string) (float64, bool, error) {
			entries, err := src.GetLeaderboardEntry(ctx, wallet)
			if err != nil {
				return 0, false, err
			}
			for _, e := range entries {
				if strings.EqualFold(e.ProxyWallet, wallet) {
					return e.PnL, true, nil
				}
			}
			return 0, false, nil
		},
	}
}

// ProfilePage extracts the figure from the wallet's public profile markup
func ProfilePage(src MarkupSource, timeout time.Duration) Strategy {
	return Strategy{
		Source:  holders.PnLProfilePage,
		Timeout: timeout,
		Lookup: func(ctx context.Context, wallet string) (float64, bool, error) {
			markup, err := src.GetMarkup(ctx, wallet)
			if err != nil {
				return 0, false, err
			}
			v, ok := ExtractProfit(markup)
			return v, ok, nil
		},
	}
}

// DerivedPositions approximates all-time P&L from the wallet's positions:
// unrealized P&L of open positions plus realized P&L of every position.
// A wallet with no positions is a miss rather than zero.
func DerivedPositions(src PositionsSource, limit int, timeout time.Duration) Strategy {
	return Strategy{
		Source:  holders.PnLDerived,
		Timeout: timeout,
		Lookup: func(ctx context.Context, wallet string) (float64, bool, error) {
			positions, err := src.GetPositions(ctx, dataapi.PositionParams{
				User:  wallet,
				Limit: limit,
			})
			if err != nil {
				return 0, false, err
			}
			if len(positions) == 0 {
				return 0, false, nil
			}
			v, _ := DerivePnL(positions).Float64()
			return v, true, nil
		},
	}
}

// DerivePnL sums current minus initial value over open positions and adds
// each position's realized P&L
func DerivePnL(positions []dataapi.Position) decimal.Decimal {
	unrealized := decimal.Zero
	realized := decimal.Zero
	for _, p := range positions {
		if p.Size > 0 {
			unrealized = unrealized.Add(decimal.NewFromFloat(p.CurrentValue).Sub(decimal.NewFromFloat(p.InitialValue)))
		}
		realized = realized.Add(decimal.NewFromFloat(p.RealizedPnl))
	}
	return unrealized.Add(realized)
}
