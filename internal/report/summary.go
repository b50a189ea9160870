// Package report aggregates enriched holders into per-side statistics and
// renders them as tables, CSV, JSON and share text.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/liamashdown/holderscope/internal/holders"
)

// OutcomeSummary holds statistics over the enriched holders of one side.
// Entry price averages only count holders that still hold shares; all-time
// P&L averages only count holders whose P&L is known.
type OutcomeSummary struct {
	Side             holders.Side `json:"side"`
	Holders          int          `json:"holders"`
	Positioned       int          `json:"positioned"`
	TotalShares      float64      `json:"total_shares"`
	AvgShares        float64      `json:"avg_shares"`
	WeightedAvgEntry float64      `json:"weighted_avg_entry"`
	SimpleAvgEntry   float64      `json:"simple_avg_entry"`
	TotalValue       float64      `json:"total_value"`
	ValueAtPurchase  float64      `json:"value_at_purchase"`
	KnownPnL         int          `json:"known_pnl"`
	AvgAllTimePnL    float64      `json:"avg_all_time_pnl"`
	Profitable       int          `json:"profitable"`
	WinRate          float64      `json:"win_rate"`
}

// HasKnownPnL reports whether any holder contributed to AvgAllTimePnL
func (s OutcomeSummary) HasKnownPnL() bool {
	return s.KnownPnL > 0
}

// Summarize computes the side statistics from scratch
func Summarize(side holders.Side, hs []holders.EnrichedHolder) OutcomeSummary {
	s := OutcomeSummary{Side: side, Holders: len(hs)}

	shares := decimal.Zero
	cost := decimal.Zero
	value := decimal.Zero
	entries := decimal.Zero
	pnl := decimal.Zero

	for _, h := range hs {
		value = value.Add(decimal.NewFromFloat(h.Position.CurrentValue))

		if h.Position.Held() {
			s.Positioned++
			sh := decimal.NewFromFloat(h.Position.Shares)
			entry := decimal.NewFromFloat(h.Position.AvgPrice)
			shares = shares.Add(sh)
			cost = cost.Add(sh.Mul(entry))
			entries = entries.Add(entry)
		}

		if h.AllTimePnL.Known {
			s.KnownPnL++
			pnl = pnl.Add(decimal.NewFromFloat(h.AllTimePnL.Value))
			if h.AllTimePnL.Value > 0 {
				s.Profitable++
			}
		}
	}

	s.TotalShares = shares.InexactFloat64()
	s.TotalValue = value.InexactFloat64()
	s.ValueAtPurchase = cost.InexactFloat64()
	if s.Holders > 0 {
		s.AvgShares = shares.Div(decimal.NewFromInt(int64(s.Holders))).InexactFloat64()
	}
	if shares.IsPositive() {
		s.WeightedAvgEntry = cost.Div(shares).InexactFloat64()
	}
	if s.Positioned > 0 {
		s.SimpleAvgEntry = entries.Div(decimal.NewFromInt(int64(s.Positioned))).InexactFloat64()
	}
	if s.KnownPnL > 0 {
		known := decimal.NewFromInt(int64(s.KnownPnL))
		s.AvgAllTimePnL = pnl.Div(known).InexactFloat64()
		s.WinRate = decimal.NewFromInt(int64(s.Profitable)).Div(known).InexactFloat64()
	}
	return s
}

// Verdict names the side the more profitable holders are on
type Verdict string

const (
	VerdictYes          Verdict = "YES"
	VerdictNo           Verdict = "NO"
	VerdictEqual        Verdict = "EQUAL"
	VerdictInsufficient Verdict = "INSUFFICIENT_DATA"
)

// Comparison sets the two sides against each other
type Comparison struct {
	Yes        OutcomeSummary `json:"yes"`
	No         OutcomeSummary `json:"no"`
	Verdict    Verdict        `json:"verdict"`
	Difference float64        `json:"difference"` // winning side's avg all-time P&L minus the other's
}

// Compare picks the side whose holders have the higher known average
// all-time P&L
func Compare(yes, no OutcomeSummary) Comparison {
	c := Comparison{Yes: yes, No: no, Verdict: VerdictInsufficient}
	if !yes.HasKnownPnL() || !no.HasKnownPnL() {
		return c
	}

	diff := decimal.NewFromFloat(yes.AvgAllTimePnL).Sub(decimal.NewFromFloat(no.AvgAllTimePnL))
	switch {
	case diff.IsPositive():
		c.Verdict = VerdictYes
	case diff.IsNegative():
		c.Verdict = VerdictNo
	default:
		c.Verdict = VerdictEqual
	}
	c.Difference = diff.Abs().InexactFloat64()
	return c
}
