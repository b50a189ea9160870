// Package market resolves a user-supplied event identifier into the binary
// sub-markets whose holders can be analysed.
package market

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/liamashdown/holderscope/internal/holders"
)

var (
	// ErrInvalidReference means no slug could be extracted from the identifier
	ErrInvalidReference = errors.New("invalid event reference")
	// ErrNotFound means the slug resolved to no event
	ErrNotFound = errors.New("event not found")
	// ErrNoTradableMarkets means the event has no order-book sub-market
	ErrNoTradableMarkets = errors.New("event has no tradable markets")
	// ErrMarketNotSelected means the caller has to pick one of several sub-markets
	ErrMarketNotSelected = errors.New("market not selected")
)

var (
	eventURLPattern = regexp.MustCompile(`polymarket\.com/event/([^?#/]+)`)
	rawSlugPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// ExtractSlug returns the event slug from an event URL or a bare slug
func ExtractSlug(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if m := eventURLPattern.FindStringSubmatch(identifier); m != nil {
		return m[1], nil
	}
	if rawSlugPattern.MatchString(identifier) {
		return identifier, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReference, identifier)
}

// Market is one binary sub-market of an event
type Market struct {
	Index       int      `json:"index"` // 1-based position among the event's tradable markets
	ConditionID string   `json:"condition_id"`
	Question    string   `json:"question"`
	Title       string   `json:"title,omitempty"`
	Outcomes    []string `json:"outcomes,omitempty"`
	Prices      []string `json:"prices,omitempty"`
}

// Ref builds the reference for one side of the market
func (m Market) Ref(eventSlug string, side holders.Side) holders.MarketRef {
	return holders.MarketRef{
		EventSlug:   eventSlug,
		ConditionID: m.ConditionID,
		Side:        side,
		Question:    m.Question,
	}
}

// Label returns the short title when the event groups markets, else the question
func (m Market) Label() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Question
}

// Event is a resolved event with its tradable sub-markets
type Event struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Markets     []Market `json:"markets"`
}

// Select picks a sub-market by 1-based index or condition ID. An empty
// selector only succeeds when the event has exactly one market.
func (e *Event) Select(selector string) (Market, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		if len(e.Markets) == 1 {
			return e.Markets[0], nil
		}
		return Market{}, fmt.Errorf("%w: event %s has %d markets", ErrMarketNotSelected, e.Slug, len(e.Markets))
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 1 || idx > len(e.Markets) {
			return Market{}, fmt.Errorf("%w: index %d out of range 1..%d", ErrMarketNotSelected, idx, len(e.Markets))
		}
		return e.Markets[idx-1], nil
	}

	for _, m := range e.Markets {
		if strings.EqualFold(m.ConditionID, selector) {
			return m, nil
		}
	}
	return Market{}, fmt.Errorf("%w: no market with condition id %s", ErrMarketNotSelected, selector)
}
