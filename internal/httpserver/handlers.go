package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/processor"
	"github.com/liamashdown/holderscope/internal/report"
)

const maxTop = 100

// Analyzer enriches the holders of a selected market
type Analyzer interface {
	AnalyzeMarket(ctx context.Context, event *market.Event, m market.Market, req processor.Request) (*processor.Analysis, error)
	DefaultOptions() processor.Options
}

// EventsHandler serves the event and holder endpoints
type EventsHandler struct {
	resolver market.EventResolver
	analyzer Analyzer
	log      *logrus.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(resolver market.EventResolver, analyzer Analyzer, log *logrus.Logger) *EventsHandler {
	return &EventsHandler{
		resolver: resolver,
		analyzer: analyzer,
		log:      log,
	}
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string          `json:"error"`
	Markets []market.Market `json:"markets,omitempty"`
}

// HandleMarkets lists the tradable sub-markets of an event
func (h *EventsHandler) HandleMarkets(w http.ResponseWriter, r *http.Request) {
	event, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleHolders analyses one market of the event and returns the report
func (h *EventsHandler) HandleHolders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	top := 0
	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTop {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "top must be between 1 and 100"})
			return
		}
		top = n
	}

	sides, err := parseSides(q.Get("side"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	event, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err, nil)
		return
	}
	m, err := event.Select(q.Get("market"))
	if err != nil {
		h.writeError(w, r, err, event.Markets)
		return
	}

	opts := h.analyzer.DefaultOptions()
	opts.RunID = uuid.NewString()
	w.Header().Set("X-Run-ID", opts.RunID)

	analysis, err := h.analyzer.AnalyzeMarket(r.Context(), event, m, processor.Request{
		Top:     top,
		Sides:   sides,
		Options: opts,
	})
	if err != nil {
		h.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, report.Build(analysis))
}

func parseSides(v string) ([]holders.Side, error) {
	if v == "" || v == "both" {
		return holders.Sides, nil
	}
	side, err := holders.ParseSide(v)
	if err != nil {
		return nil, err
	}
	return []holders.Side{side}, nil
}

func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error, markets []market.Market) {
	status := statusFor(err)
	entry := h.log.WithError(err).WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Markets: markets})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrInvalidReference), errors.Is(err, market.ErrMarketNotSelected):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrNotFound), errors.Is(err, market.ErrNoTradableMarkets):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
