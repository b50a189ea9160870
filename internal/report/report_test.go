package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/processor"
)

func holder(rank int, shares, entry float64, pnl holders.AllTimePnL) holders.EnrichedHolder {
	pos := holders.Position{
		Shares:       shares,
		AvgPrice:     entry,
		CurPrice:     entry,
		InitialValue: shares * entry,
		CurrentValue: shares * entry,
	}
	return holders.EnrichedHolder{
		Rank:       rank,
		Wallet:     "0x0000000000000000000000000000000000000001",
		Name:       "holder",
		Market:     holders.MarketRef{ConditionID: "C1", Side: holders.SideYes},
		Position:   pos,
		MarketPnL:  holders.MarketPnL(pos),
		PercentPnL: holders.PercentPnL(pos),
		AllTimePnL: pnl,
	}
}

func TestWeightedAndSimpleAverageEntryDiffer(t *testing.T) {
	s := Summarize(holders.SideYes, []holders.EnrichedHolder{
		holder(0, 10, 0.5, holders.UnknownPnL),
		holder(1, 20, 0.8, holders.UnknownPnL),
	})

	assert.InDelta(t, 0.7, s.WeightedAvgEntry, 1e-9)
	assert.InDelta(t, 0.65, s.SimpleAvgEntry, 1e-9)
	assert.NotEqual(t, s.WeightedAvgEntry, s.SimpleAvgEntry)
	assert.Equal(t, 30.0, s.TotalShares)
	assert.Equal(t, 15.0, s.AvgShares)
	assert.InDelta(t, 21.0, s.ValueAtPurchase, 1e-9)
	assert.InDelta(t, 21.0, s.TotalValue, 1e-9)
}

func TestAverageAllTimePnLExcludesUnknown(t *testing.T) {
	s := Summarize(holders.SideNo, []holders.EnrichedHolder{
		holder(0, 1, 0.5, holders.KnownPnL(100, holders.PnLProfitAPI)),
		holder(1, 1, 0.5, holders.UnknownPnL),
		holder(2, 1, 0.5, holders.KnownPnL(-40, holders.PnLProfilePage)),
	})

	assert.Equal(t, 3, s.Holders)
	assert.Equal(t, 2, s.KnownPnL)
	assert.Equal(t, 30.0, s.AvgAllTimePnL)
	assert.Equal(t, 1, s.Profitable)
	assert.Equal(t, 0.5, s.WinRate)
}

func TestSummarizeEmptyAndUnpositioned(t *testing.T) {
	empty := Summarize(holders.SideYes, nil)
	assert.Equal(t, OutcomeSummary{Side: holders.SideYes}, empty)
	assert.False(t, empty.HasKnownPnL())

	exited := Summarize(holders.SideYes, []holders.EnrichedHolder{holder(0, 0, 0, holders.UnknownPnL)})
	assert.Equal(t, 1, exited.Holders)
	assert.Equal(t, 0, exited.Positioned)
	assert.Equal(t, 0.0, exited.WeightedAvgEntry)
	assert.Equal(t, 0.0, exited.SimpleAvgEntry)
	assert.Equal(t, 0.0, exited.WinRate)
}

func TestCompare(t *testing.T) {
	known := func(avg float64) OutcomeSummary { return OutcomeSummary{KnownPnL: 2, AvgAllTimePnL: avg} }

	tests := []struct {
		name    string
		yes, no OutcomeSummary
		verdict Verdict
		diff    float64
	}{
		{"yes-ahead", known(500), known(200), VerdictYes, 300},
		{"no-ahead", known(-50), known(25.5), VerdictNo, 75.5},
		{"equal", known(10), known(10), VerdictEqual, 0},
		{"yes-unknown", OutcomeSummary{}, known(10), VerdictInsufficient, 0},
		{"no-unknown", known(10), OutcomeSummary{}, VerdictInsufficient, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.yes, tt.no)
			assert.Equal(t, tt.verdict, c.Verdict)
			assert.Equal(t, tt.diff, c.Difference)
			assert.NotEmpty(t, c.Headline())
		})
	}
}

func testAnalysis() *processor.Analysis {
	yes := holder(0, 1000, 0.4, holders.KnownPnL(2500, holders.PnLProfitAPI))
	no1 := holder(1, 500, 0.6, holders.KnownPnL(-75.25, holders.PnLDerived))
	no1.Market.Side = holders.SideNo
	no2 := holder(2, 200, 0.6, holders.UnknownPnL)
	no2.Market.Side = holders.SideNo

	return &processor.Analysis{
		RunID: "run-1",
		Event: &market.Event{
			Slug:  "very-long-event",
			Title: "What will the Federal Reserve announce at the December meeting of the FOMC?",
		},
		Market:     market.Market{Index: 1, ConditionID: "C1", Question: "Will the Fed cut 25bps?"},
		AnalyzedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Sides: []processor.Result{
			{Side: holders.SideYes, Holders: []holders.EnrichedHolder{yes}},
			{Side: holders.SideNo, Holders: []holders.EnrichedHolder{no1, no2}, Skipped: 1},
		},
	}
}

func TestBuild(t *testing.T) {
	r := Build(testAnalysis())

	require.Len(t, r.Sides, 2)
	require.NotNil(t, r.Comparison)
	assert.Equal(t, VerdictYes, r.Comparison.Verdict)
	assert.Equal(t, 1, r.Sides[1].Skipped)
	assert.Equal(t, 1, r.Sides[1].Summary.KnownPnL)
	assert.Equal(t, "C1", r.ConditionID)

	single := testAnalysis()
	single.Sides = single.Sides[:1]
	assert.Nil(t, Build(single).Comparison)
}

func TestShareText(t *testing.T) {
	r := Build(testAnalysis())

	assert.True(t, strings.HasPrefix(r.ShareText, "Top holders on What will the Federal Reserve announce at the December meeti..."))
	assert.Contains(t, r.ShareText, "Will the Fed cut 25bps?")
	assert.Contains(t, r.ShareText, "YES: avg all-time P&L +$2,500.00, capital $400.00")
	assert.Contains(t, r.ShareText, "Smart money leans YES")

	u, err := url.Parse(r.ShareURL)
	require.NoError(t, err)
	assert.Equal(t, "twitter.com", u.Host)
	assert.Equal(t, r.ShareText, u.Query().Get("text"))
}

func TestWriteCSV(t *testing.T) {
	r := Build(testAnalysis())
	no, ok := r.Side(holders.SideNo)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, no.Holders))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "-75.25", rows[1][11])
	assert.Equal(t, "derived_positions", rows[1][12])
	assert.Equal(t, "", rows[2][11])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Build(testAnalysis()), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "YES holders (1)")
	assert.Contains(t, out, "NO holders (2, 1 skipped without wallet)")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "-$75.25*")
	assert.Contains(t, out, "Weighted avg entry")
	assert.Contains(t, out, "Smart money leans YES")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteTableReportsWriteError(t *testing.T) {
	err := WriteTable(failingWriter{}, Build(testAnalysis()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Error(t, writeSummary(failingWriter{}, OutcomeSummary{Side: holders.SideYes}))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Build(testAnalysis()), FormatJSON))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Sides, 2)
	assert.False(t, decoded.Sides[1].Holders[1].AllTimePnL.Known)
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"table", "csv", "json"} {
		got, err := ParseFormat(f)
		require.NoError(t, err)
		assert.Equal(t, Format(f), got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
