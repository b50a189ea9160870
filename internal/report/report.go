package report

import (
	"time"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/processor"
)

// SideReport is one side's holders with its summary
type SideReport struct {
	Side    holders.Side             `json:"side"`
	Holders []holders.EnrichedHolder `json:"holders"`
	Skipped int                      `json:"skipped"`
	Summary OutcomeSummary           `json:"summary"`
}

// Report is everything rendered for one analysed market
type Report struct {
	RunID       string       `json:"run_id"`
	EventSlug   string       `json:"event_slug"`
	EventTitle  string       `json:"event_title"`
	ConditionID string       `json:"condition_id"`
	Question    string       `json:"question"`
	GeneratedAt time.Time    `json:"generated_at"`
	Sides       []SideReport `json:"sides"`
	Comparison  *Comparison  `json:"comparison,omitempty"` // only when both sides were analysed
	ShareText   string       `json:"share_text"`
	ShareURL    string       `json:"share_url"`
}

// Build summarises an analysis
func Build(a *processor.Analysis) *Report {
	r := &Report{
		RunID:       a.RunID,
		ConditionID: a.Market.ConditionID,
		Question:    a.Market.Question,
		GeneratedAt: a.AnalyzedAt,
	}
	if a.Event != nil {
		r.EventSlug = a.Event.Slug
		r.EventTitle = a.Event.Title
	}

	for _, res := range a.Sides {
		r.Sides = append(r.Sides, SideReport{
			Side:    res.Side,
			Holders: res.Holders,
			Skipped: res.Skipped,
			Summary: Summarize(res.Side, res.Holders),
		})
	}

	yes, okYes := r.Side(holders.SideYes)
	no, okNo := r.Side(holders.SideNo)
	if okYes && okNo {
		c := Compare(yes.Summary, no.Summary)
		r.Comparison = &c
	}

	r.ShareText = ShareText(r)
	r.ShareURL = IntentURL(r.ShareText)
	return r
}

// Side returns the report of one side, if present
func (r *Report) Side(side holders.Side) (SideReport, bool) {
	for _, s := range r.Sides {
		if s.Side == side {
			return s, true
		}
	}
	return SideReport{}, false
}
