package gammaapi

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Market represents a Gamma API market
type Market struct {
	ID              string `json:"id"`
	ConditionID     string `json:"conditionId"`
	Slug            string `json:"slug"`
	Question        string `json:"question"`
	GroupItemTitle  string `json:"groupItemTitle"`
	EndDate         string `json:"endDate"`
	Active          bool   `json:"active"`
	Closed          bool   `json:"closed"`
	EnableOrderBook bool   `json:"enableOrderBook"`
	Outcomes        string `json:"outcomes"`      // e.g. "[\"Yes\", \"No\"]"
	OutcomePrices   string `json:"outcomePrices"` // e.g. "[\"0.02\", \"0.98\"]"
	ClobTokenIDs    string `json:"clobTokenIds"`
}

// OutcomeNames decodes the outcomes field, which gamma serialises either as a
// JSON array inside a string or as a plain comma-separated list
func (m *Market) OutcomeNames() []string {
	return decodeStringList(m.Outcomes)
}

// Prices decodes the outcomePrices field the same way as OutcomeNames
func (m *Market) Prices() []string {
	return decodeStringList(m.OutcomePrices)
}

func decodeStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Event represents a Gamma API event
type Event struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Markets     []Market `json:"markets"`
	EndDate     string   `json:"endDate"`
	Active      bool     `json:"active"`
	Closed      bool     `json:"closed"`
}
