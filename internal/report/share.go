package report

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	maxShareTitle = 60
	intentBaseURL = "https://twitter.com/intent/tweet"
)

// ShareText renders a short social post for the report
func ShareText(r *Report) string {
	var b strings.Builder

	title := r.EventTitle
	if title == "" {
		title = r.EventSlug
	}
	fmt.Fprintf(&b, "Top holders on %s\n", truncate(title, maxShareTitle))
	if r.Question != "" && r.Question != r.EventTitle {
		fmt.Fprintf(&b, "%s\n", r.Question)
	}

	for _, s := range r.Sides {
		fmt.Fprintf(&b, "%s: avg all-time P&L %s, capital %s\n",
			s.Side, avgPnLText(s.Summary), money(s.Summary.TotalValue))
	}

	if r.Comparison != nil {
		b.WriteString(r.Comparison.Headline())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// IntentURL returns a tweet composer link prefilled with text
func IntentURL(text string) string {
	q := url.Values{}
	q.Set("text", text)
	return intentBaseURL + "?" + q.Encode()
}

// Headline states the verdict in one line
func (c Comparison) Headline() string {
	switch c.Verdict {
	case VerdictYes, VerdictNo:
		return fmt.Sprintf("Smart money leans %s (avg all-time P&L %s higher)", c.Verdict, money(c.Difference))
	case VerdictEqual:
		return "Smart money is split evenly"
	default:
		return "Not enough P&L data to call smart money"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func avgPnLText(s OutcomeSummary) string {
	if !s.HasKnownPnL() {
		return "N/A"
	}
	return signedMoney(s.AvgAllTimePnL)
}
