// Package processor runs the holder enrichment pipeline: ranked holder stubs
// in, one enriched record per holder out.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/metrics"
	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
	"github.com/liamashdown/holderscope/internal/ratelimit"
)

// ErrHolderSource marks a failure of the holder source, which aborts the run
var ErrHolderSource = errors.New("holder source failed")

// HolderSource returns the ranked holders of each outcome token of a market
type HolderSource interface {
	GetHolders(ctx context.Context, conditionID string, limit int) ([]dataapi.HolderGroup, error)
}

// PositionSource returns a wallet's positions
type PositionSource interface {
	GetPositions(ctx context.Context, params dataapi.PositionParams) ([]dataapi.Position, error)
}

// ActivitySource returns a wallet's activity records
type ActivitySource interface {
	GetActivity(ctx context.Context, params dataapi.ActivityParams) ([]dataapi.Activity, error)
}

// PnLResolver resolves a wallet's all-time P&L, never failing
type PnLResolver interface {
	Resolve(ctx context.Context, wallet string) holders.AllTimePnL
}

// Options controls concurrency and pacing of one enrichment pass
type Options struct {
	Workers int           // holders enriched at once, 1 for sequential
	Delay   time.Duration // minimum spacing between holder starts
	RunID   string        // correlation id for logs, generated when empty
}

// Result is the output of enriching one side
type Result struct {
	Side    holders.Side             `json:"side"`
	Holders []holders.EnrichedHolder `json:"holders"`
	Skipped int                      `json:"skipped"`
}

// Processor enriches holder stubs from the position, activity and P&L sources
type Processor struct {
	cfg       *config.Config
	holders   HolderSource
	positions PositionSource
	activity  ActivitySource
	pnl       PnLResolver
	log       *logrus.Logger
}

// New creates a new processor
func New(
	cfg *config.Config,
	holderSource HolderSource,
	positions PositionSource,
	activity ActivitySource,
	pnl PnLResolver,
	log *logrus.Logger,
) *Processor {
	return &Processor{
		cfg:       cfg,
		holders:   holderSource,
		positions: positions,
		activity:  activity,
		pnl:       pnl,
		log:       log,
	}
}

// DefaultOptions returns the options configured for the process
func (p *Processor) DefaultOptions() Options {
	return Options{
		Workers: p.cfg.EnrichWorkers,
		Delay:   p.cfg.HolderDelay,
	}
}

// FetchStubs fetches the market's ranked holders and applies each side's
// selection policy, returning at most n stubs per side. A holder source
// failure is fatal to the run.
func (p *Processor) FetchStubs(ctx context.Context, conditionID string, n int) (map[holders.Side][]holders.HolderStub, error) {
	limit := 0
	for _, side := range holders.Sides {
		if l := holders.DefaultPolicy(side).FetchLimit(n); l > limit {
			limit = l
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PrimaryTimeout)
	defer cancel()

	groups, err := p.holders.GetHolders(ctx, conditionID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch holders: %w: %w", ErrHolderSource, err)
	}

	ranked := holders.StubsFromGroups(groups)
	selected := make(map[holders.Side][]holders.HolderStub, len(holders.Sides))
	for _, side := range holders.Sides {
		policy := holders.DefaultPolicy(side)
		selected[side] = holders.Select(ranked[side], policy, n)

		p.log.WithFields(logrus.Fields{
			"condition_id": conditionID,
			"side":         side,
			"ranked":       len(ranked[side]),
			"selected":     len(selected[side]),
			"policy":       policy.String(),
		}).Debug("Selected holders")
	}
	return selected, nil
}

// EnrichHolders enriches stubs for one side of ref. Output keeps input rank
// order; stubs without a wallet are left out and counted in Skipped. The only
// error is cancellation of ctx, in which case the holders finished so far are
// still returned.
func (p *Processor) EnrichHolders(ctx context.Context, stubs []holders.HolderStub, ref holders.MarketRef, opts Options) (Result, error) {
	return p.enrichHolders(ctx, stubs, ref, opts, newWalletMemo())
}

func (p *Processor) enrichHolders(ctx context.Context, stubs []holders.HolderStub, ref holders.MarketRef, opts Options, memo *walletMemo) (Result, error) {
	start := time.Now()
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	log := p.log.WithFields(logrus.Fields{
		"run_id":       opts.RunID,
		"side":         ref.Side,
		"condition_id": ref.ConditionID,
	})
	log.WithFields(logrus.Fields{
		"holders": len(stubs),
		"workers": workers,
		"delay":   opts.Delay.String(),
	}).Info("Enriching holders")

	pacer := ratelimit.Every("holder_pacing", opts.Delay)
	workerPool := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		workerPool <- struct{}{}
	}

	enriched := make([]*holders.EnrichedHolder, len(stubs))
	skipped := 0
	var wg sync.WaitGroup

dispatch:
	for i, stub := range stubs {
		if stub.Wallet == "" {
			skipped++
			metrics.RecordHolder(string(ref.Side), "skipped_no_wallet")
			log.WithField("rank", stub.Rank).Warn("Skipping holder without wallet")
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case <-workerPool:
		}

		wg.Add(1)
		go func(i int, stub holders.HolderStub) {
			defer wg.Done()
			defer func() { workerPool <- struct{}{} }()

			h := p.enrich(ctx, stub, ref, memo, log)
			enriched[i] = &h
			metrics.RecordHolder(string(ref.Side), "enriched")

			// A worker rests for the delay before taking the next holder,
			// also across sides of one analysis
			cooldown(ctx, opts.Delay)
		}(i, stub)
	}

	wg.Wait()

	res := Result{Side: ref.Side, Skipped: skipped, Holders: make([]holders.EnrichedHolder, 0, len(stubs))}
	for _, h := range enriched {
		if h != nil {
			res.Holders = append(res.Holders, *h)
		}
	}
	sort.SliceStable(res.Holders, func(i, j int) bool {
		return res.Holders[i].Rank < res.Holders[j].Rank
	})

	metrics.RecordEnrichment(string(ref.Side), time.Since(start))
	log.WithFields(logrus.Fields{
		"enriched": len(res.Holders),
		"skipped":  skipped,
		"duration": time.Since(start).String(),
	}).Info("Enrichment finished")

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("enrich %s holders: %w", ref.Side, err)
	}
	return res, nil
}

func cooldown(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (p *Processor) enrich(ctx context.Context, stub holders.HolderStub, ref holders.MarketRef, memo *walletMemo, log *logrus.Entry) holders.EnrichedHolder {
	log = log.WithFields(logrus.Fields{
		"wallet": stub.Wallet,
		"rank":   stub.Rank,
	})

	position := p.fetchPosition(ctx, stub.Wallet, ref, log)
	activity := p.fetchActivity(ctx, stub.Wallet, ref, log)
	allTime := memo.resolve(stub.Wallet, func() holders.AllTimePnL {
		return p.pnl.Resolve(ctx, stub.Wallet)
	})

	log.WithFields(logrus.Fields{
		"shares":       position.Shares,
		"pnl_known":    allTime.Known,
		"pnl_strategy": allTime.Source,
	}).Debug("Enriched holder")

	return holders.EnrichedHolder{
		Rank:       stub.Rank,
		Wallet:     stub.Wallet,
		Name:       stub.DisplayName(),
		Market:     ref,
		Position:   position,
		MarketPnL:  holders.MarketPnL(position),
		PercentPnL: holders.PercentPnL(position),
		AllTimePnL: allTime,
		Activity:   activity,
	}
}

func (p *Processor) fetchPosition(ctx context.Context, wallet string, ref holders.MarketRef, log *logrus.Entry) holders.Position {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PositionTimeout)
	defer cancel()

	positions, err := p.positions.GetPositions(ctx, dataapi.PositionParams{
		User:   wallet,
		Market: ref.ConditionID,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to fetch position")
		return holders.Position{}
	}
	return holders.SelectPosition(positions, ref)
}

func (p *Processor) fetchActivity(ctx context.Context, wallet string, ref holders.MarketRef, log *logrus.Entry) holders.ActivitySummary {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ActivityTimeout)
	defer cancel()

	records, err := p.activity.GetActivity(ctx, dataapi.ActivityParams{
		User:   wallet,
		Market: ref.ConditionID,
		Limit:  p.cfg.ActivityLimit,
		Type:   "TRADE",
	})
	if err != nil {
		log.WithError(err).Debug("Failed to fetch activity")
		return holders.ActivitySummary{}
	}
	return holders.SummarizeActivity(records, ref)
}

// walletMemo resolves each wallet's all-time P&L at most once per pass, so a
// wallet holding both sides is not looked up twice
type walletMemo struct {
	mu      sync.Mutex
	entries map[string]*memoEntry
}

type memoEntry struct {
	once  sync.Once
	value holders.AllTimePnL
}

func newWalletMemo() *walletMemo {
	return &walletMemo{entries: make(map[string]*memoEntry)}
}

func (m *walletMemo) resolve(wallet string, fn func() holders.AllTimePnL) holders.AllTimePnL {
	key, _ := holders.NormalizeWallet(wallet)

	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoEntry{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.once.Do(func() {
		e.value = fn()
	})
	return e.value
}
