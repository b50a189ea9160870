package processor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/market"
)

// Request describes one analysis of a selected market
type Request struct {
	Top     int            // holders per side
	Sides   []holders.Side // empty means both
	Options Options
}

// Analysis is the enriched holder set of a market, one Result per side
type Analysis struct {
	RunID      string        `json:"run_id"`
	Event      *market.Event `json:"event"`
	Market     market.Market `json:"market"`
	Sides      []Result      `json:"sides"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
}

// Side returns the result for side, if it was analysed
func (a *Analysis) Side(side holders.Side) (Result, bool) {
	for _, r := range a.Sides {
		if r.Side == side {
			return r, true
		}
	}
	return Result{}, false
}

// AnalyzeMarket fetches the market's holders once and enriches each requested
// side in turn. All-time P&L is shared between sides for wallets that hold
// both.
func (p *Processor) AnalyzeMarket(ctx context.Context, event *market.Event, m market.Market, req Request) (*Analysis, error) {
	if req.Top <= 0 {
		req.Top = p.cfg.TopHolders
	}
	sides := req.Sides
	if len(sides) == 0 {
		sides = holders.Sides
	}
	if req.Options.RunID == "" {
		req.Options.RunID = uuid.NewString()
	}

	p.log.WithFields(logrus.Fields{
		"run_id":       req.Options.RunID,
		"slug":         event.Slug,
		"condition_id": m.ConditionID,
		"top":          req.Top,
	}).Info("Analyzing market")

	stubs, err := p.FetchStubs(ctx, m.ConditionID, req.Top)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		RunID:      req.Options.RunID,
		Event:      event,
		Market:     m,
		AnalyzedAt: time.Now().UTC(),
	}
	memo := newWalletMemo()
	for _, side := range sides {
		res, err := p.enrichHolders(ctx, stubs[side], m.Ref(event.Slug, side), req.Options, memo)
		if err != nil {
			return nil, err
		}
		analysis.Sides = append(analysis.Sides, res)
	}
	return analysis, nil
}
