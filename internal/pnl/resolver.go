// Package pnl resolves a wallet's all-time profit/loss through an ordered
// chain of strategies, first success wins.
package pnl

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/metrics"
)

// LookupFunc returns a wallet's all-time P&L. ok is false when the source
// has no figure for the wallet; err is only used for logging.
type LookupFunc func(ctx context.Context, wallet string) (value float64, ok bool, err error)

// Strategy is one link of the resolution chain
type Strategy struct {
	Source  holders.PnLSource
	Timeout time.Duration
	Lookup  LookupFunc
}

// Resolver applies strategies in order and returns the first figure found
type Resolver struct {
	strategies []Strategy
	log        *logrus.Logger
}

// NewResolver creates a resolver over the given strategies, tried in order
func NewResolver(log *logrus.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		log:        log,
	}
}

// Strategies returns the provenance of each strategy in chain order
func (r *Resolver) Strategies() []holders.PnLSource {
	out := make([]holders.PnLSource, len(r.strategies))
	for i, s := range r.strategies {
		out[i] = s.Source
	}
	return out
}

// Resolve never fails: every strategy error degrades to a miss, and a wallet
// no strategy can answer for is UnknownPnL.
func (r *Resolver) Resolve(ctx context.Context, wallet string) holders.AllTimePnL {
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			break
		}

		v, ok := r.try(ctx, s, wallet)
		if !ok {
			continue
		}
		metrics.RecordPnLResolution(string(s.Source))
		return holders.KnownPnL(v, s.Source)
	}

	metrics.RecordPnLResolution("unknown")
	return holders.UnknownPnL
}

func (r *Resolver) try(ctx context.Context, s Strategy, wallet string) (float64, bool) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	v, ok, err := s.Lookup(ctx, wallet)
	fields := logrus.Fields{
		"wallet":   wallet,
		"strategy": s.Source,
	}
	if err != nil {
		r.log.WithError(err).WithFields(fields).Debug("P&L strategy failed")
		return 0, false
	}
	if !ok {
		r.log.WithFields(fields).Debug("P&L strategy had no figure")
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.log.WithFields(fields).Warn("P&L strategy returned a non-finite value")
		return 0, false
	}
	return v, true
}
