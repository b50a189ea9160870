package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/report"
)

func TestParseSideFlag(t *testing.T) {
	sides, err := parseSideFlag("both")
	require.NoError(t, err)
	assert.Equal(t, holders.Sides, sides)

	sides, err = parseSideFlag("No")
	require.NoError(t, err)
	assert.Equal(t, []holders.Side{holders.SideNo}, sides)

	_, err = parseSideFlag("maybe")
	assert.Error(t, err)
}

func TestWriteCSVFiles(t *testing.T) {
	dir := t.TempDir()
	log, _ := test.NewNullLogger()
	r := &report.Report{
		EventSlug:   "fed-decision",
		ConditionID: "0xabcdef0123456789",
		GeneratedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Sides: []report.SideReport{
			{Side: holders.SideYes, Holders: []holders.EnrichedHolder{{Rank: 0, Wallet: "0x1", AllTimePnL: holders.UnknownPnL}}},
			{Side: holders.SideNo},
		},
	}

	require.NoError(t, writeCSVFiles(dir, r, log))

	yes, err := os.ReadFile(filepath.Join(dir, "fed-decision_abcdef01_yes_20261019T080000.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(yes, []byte("\n")))

	_, err = os.Stat(filepath.Join(dir, "fed-decision_abcdef01_no_20261019T080000.csv"))
	assert.NoError(t, err)
}

func TestPrintMarkets(t *testing.T) {
	var buf bytes.Buffer
	printMarkets(&buf, &market.Event{
		Slug:  "fed-decision",
		Title: "Fed decision",
		Markets: []market.Market{
			{Index: 1, ConditionID: "0xaaa", Question: "Cut?", Outcomes: []string{"Yes", "No"}, Prices: []string{"0.62", "0.38"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Fed decision (fed-decision)")
	assert.Contains(t, out, "0xaaa")
	assert.Contains(t, out, "Yes 0.62 / No 0.38")
}
