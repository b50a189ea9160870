package market

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/polymarket/gammaapi"
)

// EventSource looks events up by slug
type EventSource interface {
	GetEventsBySlug(ctx context.Context, slug string) ([]gammaapi.Event, error)
}

// EventResolver turns an identifier into a resolved event
type EventResolver interface {
	Resolve(ctx context.Context, identifier string) (*Event, error)
}

// Resolver resolves events straight from the source on every call
type Resolver struct {
	source EventSource
	log    *logrus.Logger
}

// NewResolver creates a new market resolver
func NewResolver(source EventSource, log *logrus.Logger) *Resolver {
	return &Resolver{
		source: source,
		log:    log,
	}
}

// Resolve extracts the slug, fetches the event and keeps only the markets
// with an order book. All sub-markets are returned; picking one is left to
// Event.Select.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*Event, error) {
	slug, err := ExtractSlug(identifier)
	if err != nil {
		return nil, err
	}

	events, err := r.source.GetEventsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve event %s: %w", slug, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}

	raw := events[0]
	event := &Event{
		Slug:        slug,
		Title:       raw.Title,
		Description: raw.Description,
	}
	for _, m := range raw.Markets {
		if !m.EnableOrderBook || m.ConditionID == "" {
			continue
		}
		event.Markets = append(event.Markets, Market{
			Index:       len(event.Markets) + 1,
			ConditionID: m.ConditionID,
			Question:    m.Question,
			Title:       m.GroupItemTitle,
			Outcomes:    m.OutcomeNames(),
			Prices:      m.Prices(),
		})
	}

	r.log.WithFields(logrus.Fields{
		"slug":          slug,
		"markets":       len(raw.Markets),
		"tradable":      len(event.Markets),
		"event_matches": len(events),
	}).Debug("Resolved event")

	if len(event.Markets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTradableMarkets, slug)
	}
	return event, nil
}
