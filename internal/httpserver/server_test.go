package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/processor"
	"github.com/liamashdown/holderscope/internal/report"
)

type fakeResolver struct {
	event *market.Event
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, identifier string) (*market.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

type fakeAnalyzer struct {
	err  error
	req  processor.Request
	seen market.Market
}

func (f *fakeAnalyzer) DefaultOptions() processor.Options {
	return processor.Options{Workers: 2, Delay: time.Millisecond}
}

func (f *fakeAnalyzer) AnalyzeMarket(ctx context.Context, event *market.Event, m market.Market, req processor.Request) (*processor.Analysis, error) {
	f.req = req
	f.seen = m
	if f.err != nil {
		return nil, f.err
	}
	a := &processor.Analysis{RunID: req.Options.RunID, Event: event, Market: m, AnalyzedAt: time.Now().UTC()}
	for _, side := range req.Sides {
		h := holders.EnrichedHolder{
			Wallet:     "0x0000000000000000000000000000000000000001",
			Name:       "whale",
			Market:     m.Ref(event.Slug, side),
			AllTimePnL: holders.KnownPnL(100, holders.PnLProfitAPI),
		}
		a.Sides = append(a.Sides, processor.Result{Side: side, Holders: []holders.EnrichedHolder{h}})
	}
	return a, nil
}

func twoMarketEvent() *market.Event {
	return &market.Event{
		Slug:  "fed-decision",
		Title: "Fed decision",
		Markets: []market.Market{
			{Index: 1, ConditionID: "0xaaa", Question: "Cut?"},
			{Index: 2, ConditionID: "0xbbb", Question: "Hold?"},
		},
	}
}

func newTestRouter(resolver market.EventResolver, analyzer Analyzer) (http.Handler, *HealthChecker) {
	log, _ := test.NewNullLogger()
	health := NewHealthChecker()
	return NewRouter(&Config{
		Log:           log,
		HealthChecker: health,
		Events:        NewEventsHandler(resolver, analyzer, log),
	}), health
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndReady(t *testing.T) {
	h, health := newTestRouter(&fakeResolver{}, &fakeAnalyzer{})

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/ready").Code)

	health.SetReady(true)
	rec := get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(&fakeResolver{}, &fakeAnalyzer{})

	rec := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMarketsEndpoint(t *testing.T) {
	h, _ := newTestRouter(&fakeResolver{event: twoMarketEvent()}, &fakeAnalyzer{})

	rec := get(t, h, "/api/events/fed-decision/markets")
	require.Equal(t, http.StatusOK, rec.Code)

	var event market.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.Len(t, event.Markets, 2)
	assert.Equal(t, "0xbbb", event.Markets[1].ConditionID)
}

func TestHoldersEndpoint(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h, _ := newTestRouter(&fakeResolver{event: twoMarketEvent()}, analyzer)

	rec := get(t, h, "/api/events/fed-decision/holders?market=2&top=5")
	require.Equal(t, http.StatusOK, rec.Code)

	runID := rec.Header().Get("X-Run-ID")
	assert.NotEmpty(t, runID)
	assert.Equal(t, 5, analyzer.req.Top)
	assert.Equal(t, 2, analyzer.req.Options.Workers)
	assert.Equal(t, "0xbbb", analyzer.seen.ConditionID)

	var r report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, runID, r.RunID)
	require.Len(t, r.Sides, 2)
	require.NotNil(t, r.Comparison)
	assert.Equal(t, report.VerdictEqual, r.Comparison.Verdict)
}

func TestHoldersEndpointSingleSide(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	h, _ := newTestRouter(&fakeResolver{event: twoMarketEvent()}, analyzer)

	rec := get(t, h, "/api/events/fed-decision/holders?market=0xaaa&side=no")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []holders.Side{holders.SideNo}, analyzer.req.Sides)
	assert.Equal(t, 0, analyzer.req.Top)
}

func TestHoldersEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		resolver *fakeResolver
		analyzer *fakeAnalyzer
		path     string
		status   int
	}{
		{
			name:     "bad top",
			resolver: &fakeResolver{event: twoMarketEvent()},
			analyzer: &fakeAnalyzer{},
			path:     "/api/events/fed-decision/holders?market=1&top=0",
			status:   http.StatusBadRequest,
		},
		{
			name:     "bad side",
			resolver: &fakeResolver{event: twoMarketEvent()},
			analyzer: &fakeAnalyzer{},
			path:     "/api/events/fed-decision/holders?market=1&side=maybe",
			status:   http.StatusBadRequest,
		},
		{
			name:     "market not selected",
			resolver: &fakeResolver{event: twoMarketEvent()},
			analyzer: &fakeAnalyzer{},
			path:     "/api/events/fed-decision/holders",
			status:   http.StatusBadRequest,
		},
		{
			name:     "invalid reference",
			resolver: &fakeResolver{err: fmt.Errorf("parse: %w", market.ErrInvalidReference)},
			analyzer: &fakeAnalyzer{},
			path:     "/api/events/x/holders",
			status:   http.StatusBadRequest,
		},
		{
			name:     "not found",
			resolver: &fakeResolver{err: market.ErrNotFound},
			analyzer: &fakeAnalyzer{},
			path:     "/api/events/missing/holders?market=1",
			status:   http.StatusNotFound,
		},
		{
			name:     "no tradable markets",
			resolver: &fakeResolver{err: market.ErrNoTradableMarkets},
			analyzer: &fakeAnalyzer{},
			path:     "/api/events/closed/markets",
			status:   http.StatusNotFound,
		},
		{
			name:     "holder source failure",
			resolver: &fakeResolver{event: twoMarketEvent()},
			analyzer: &fakeAnalyzer{err: fmt.Errorf("fetch holders: %w: %w", processor.ErrHolderSource, errors.New("status 500"))},
			path:     "/api/events/fed-decision/holders?market=1",
			status:   http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(tt.resolver, tt.analyzer)
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestMarketNotSelectedListsMarkets(t *testing.T) {
	h, _ := newTestRouter(&fakeResolver{event: twoMarketEvent()}, &fakeAnalyzer{})

	rec := get(t, h, "/api/events/fed-decision/holders?market=9")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Markets, 2)
}
