package pnl

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
	"github.com/liamashdown/holderscope/internal/polymarket/lbapi"
	"github.com/liamashdown/holderscope/internal/polymarket/profile"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixed(src holders.PnLSource, v float64, ok bool, err error, calls *[]holders.PnLSource) Strategy {
	return Strategy{
		Source: src,
		Lookup: func(ctx context.Context, wallet string) (float64, bool, error) {
			*calls = append(*calls, src)
			return v, ok, err
		},
	}
}

func TestResolveFirstSuccessWins(t *testing.T) {
	var calls []holders.PnLSource
	r := NewResolver(testLogger(),
		fixed(holders.PnLProfitAPI, 0, false, errors.New("boom"), &calls),
		fixed(holders.PnLLeaderboard, 0, false, nil, &calls),
		fixed(holders.PnLProfilePage, -50, true, nil, &calls),
		fixed(holders.PnLDerived, 99, true, nil, &calls),
	)

	got := r.Resolve(context.Background(), "0xabc")

	assert.Equal(t, holders.KnownPnL(-50, holders.PnLProfilePage), got)
	assert.Equal(t, []holders.PnLSource{holders.PnLProfitAPI, holders.PnLLeaderboard, holders.PnLProfilePage}, calls)
}

func TestResolveAllMissIsUnknown(t *testing.T) {
	var calls []holders.PnLSource
	r := NewResolver(testLogger(),
		fixed(holders.PnLProfitAPI, 0, false, errors.New("timeout"), &calls),
		fixed(holders.PnLDerived, 0, false, nil, &calls),
	)

	got := r.Resolve(context.Background(), "0xabc")

	assert.Equal(t, holders.UnknownPnL, got)
	assert.False(t, got.Known)
	assert.Len(t, calls, 2)
}

func TestResolveZeroIsKnown(t *testing.T) {
	var calls []holders.PnLSource
	r := NewResolver(testLogger(), fixed(holders.PnLProfitAPI, 0, true, nil, &calls))

	got := r.Resolve(context.Background(), "0xabc")
	assert.True(t, got.Known)
	assert.Equal(t, 0.0, got.Value)
}

func TestResolveIgnoresNonFinite(t *testing.T) {
	var calls []holders.PnLSource
	r := NewResolver(testLogger(),
		fixed(holders.PnLProfitAPI, math.NaN(), true, nil, &calls),
		fixed(holders.PnLLeaderboard, math.Inf(1), true, nil, &calls),
		fixed(holders.PnLDerived, 3, true, nil, &calls),
	)

	assert.Equal(t, holders.KnownPnL(3, holders.PnLDerived), r.Resolve(context.Background(), "0xabc"))
}

func TestResolveStrategyTimeout(t *testing.T) {
	slow := Strategy{
		Source:  holders.PnLProfilePage,
		Timeout: 20 * time.Millisecond,
		Lookup: func(ctx context.Context, wallet string) (float64, bool, error) {
			<-ctx.Done()
			return 0, false, ctx.Err()
		},
	}
	var calls []holders.PnLSource
	r := NewResolver(testLogger(), slow, fixed(holders.PnLDerived, 8, true, nil, &calls))

	start := time.Now()
	got := r.Resolve(context.Background(), "0xabc")

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, holders.KnownPnL(8, holders.PnLDerived), got)
}

func TestResolveCancelledContext(t *testing.T) {
	var calls []holders.PnLSource
	r := NewResolver(testLogger(), fixed(holders.PnLProfitAPI, 1, true, nil, &calls))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, holders.UnknownPnL, r.Resolve(ctx, "0xabc"))
	assert.Empty(t, calls)
}

type leaderboardStub struct {
	entries []dataapi.LeaderboardEntry
	err     error
}

func (s leaderboardStub) GetLeaderboardEntry(ctx context.Context, wallet string) ([]dataapi.LeaderboardEntry, error) {
	return s.entries, s.err
}

func TestLeaderboardStrategy(t *testing.T) {
	s := Leaderboard(leaderboardStub{entries: []dataapi.LeaderboardEntry{
		{ProxyWallet: "0xOTHER", PnL: 1},
		{ProxyWallet: "0xABC", PnL: -77.5},
	}}, time.Second)

	v, ok, err := s.Lookup(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -77.5, v)

	miss := Leaderboard(leaderboardStub{entries: []dataapi.LeaderboardEntry{{ProxyWallet: "0xOTHER", PnL: 1}}}, time.Second)
	_, ok, err = miss.Lookup(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.False(t, ok)
}

type positionsStub struct {
	positions []dataapi.Position
	err       error
	params    *dataapi.PositionParams
}

func (s positionsStub) GetPositions(ctx context.Context, params dataapi.PositionParams) ([]dataapi.Position, error) {
	if s.params != nil {
		*s.params = params
	}
	return s.positions, s.err
}

func TestDerivedPositionsStrategy(t *testing.T) {
	var params dataapi.PositionParams
	s := DerivedPositions(positionsStub{
		params: &params,
		positions: []dataapi.Position{
			{Size: 10, CurrentValue: 15.1, InitialValue: 10, RealizedPnl: 2.2},
			{Size: 0, CurrentValue: 0, InitialValue: 5, RealizedPnl: -1},
			{Size: 3, CurrentValue: 1, InitialValue: 4},
		},
	}, 500, time.Second)

	v, ok, err := s.Lookup(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.3, v)
	assert.Equal(t, dataapi.PositionParams{User: "0xabc", Limit: 500}, params)
	assert.Equal(t, holders.PnLDerived, s.Source)
}

func TestDerivedPositionsEmptyIsMiss(t *testing.T) {
	s := DerivedPositions(positionsStub{}, 500, time.Second)
	_, ok, err := s.Lookup(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.False(t, ok)

	failing := DerivedPositions(positionsStub{err: errors.New("502")}, 500, time.Second)
	_, ok, err = failing.Lookup(context.Background(), "0xabc")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDefaultResolverFallsThroughToProfilePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/profit":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/v1/leaderboard":
			_, _ = w.Write([]byte(`[]`))
		case strings.HasPrefix(r.URL.Path, "/profile/"):
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><div>Profit/Loss</div><div class="text-red-600">−$1,234.56</div></html>`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	cfg := &config.Config{
		DataAPIBaseURL:        server.URL,
		LBAPIBaseURL:          server.URL,
		ProfileBaseURL:        server.URL,
		DataAPIPositionsRPS:   100,
		DataAPILeaderboardRPS: 100,
		LBAPIRPS:              100,
		ProfileRPS:            100,
		ProfitAPITimeout:      time.Second,
		ProfileTimeout:        time.Second,
		DerivedPnLTimeout:     time.Second,
		DerivedPositionsLimit: 500,
	}
	data := dataapi.NewClient(cfg)
	r := NewDefaultResolver(cfg, Sources{
		Profit:      lbapi.NewClient(cfg),
		Leaderboard: data,
		Profile:     profile.NewClient(cfg),
		Positions:   data,
	}, testLogger())

	got := r.Resolve(context.Background(), "0x0000000000000000000000000000000000000001")

	assert.Equal(t, holders.KnownPnL(-1234.56, holders.PnLProfilePage), got)
	assert.Equal(t, []holders.PnLSource{
		holders.PnLProfitAPI, holders.PnLLeaderboard, holders.PnLProfilePage, holders.PnLDerived,
	}, r.Strategies())
}
