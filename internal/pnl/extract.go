package pnl

import (
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const (
	profitLabel = "Profit/Loss"

	// windowRunes bounds the text inspected after the label
	windowRunes = 600
	// signRunes bounds where a leading minus still counts as the sign
	signRunes = 100
	// maxEmbeddedDepth bounds recursion into embedded page data
	maxEmbeddedDepth = 10
)

var (
	labelledAmount = regexp.MustCompile(`Profit/Loss[^$]*?([\x{2212}\-])?\s*\$\s*([\d,]+\.\d{2})`)
	windowAmount   = regexp.MustCompile(`\$\s*([\d,]+\.\d{2})`)
	windowMinus    = regexp.MustCompile(`\x{2212}|-\s*\$`)
	embeddedData   = regexp.MustCompile(`(?is)<script[^>]*type=["']application/(?:ld\+)?json["'][^>]*>(.*?)</script>`)

	// lossMarkers are tokens the profile page uses when styling a loss
	lossMarkers = []string{"text-red", "negative", "loss"}

	// profitKeys are the embedded data field names accepted as all-time P&L,
	// compared after normalizeKey
	profitKeys = map[string]bool{
		"profit":     true,
		"pnl":        true,
		"alltimepnl": true,
		"totalpnl":   true,
		"amount":     true,
	}
)

// ExtractProfit locates the all-time profit/loss figure in profile page
// markup. Strategies run in order: the amount attached to the Profit/Loss
// label, a bounded window after the label, then embedded JSON data. There is
// no generic dollar-amount fallback; ok is false when all three miss.
func ExtractProfit(markup string) (value float64, ok bool) {
	if v, ok := labelledProfit(markup); ok {
		return v, true
	}
	if v, ok := windowProfit(markup); ok {
		return v, true
	}
	return embeddedProfit(markup)
}

func labelledProfit(markup string) (float64, bool) {
	m := labelledAmount.FindStringSubmatch(markup)
	if m == nil {
		return 0, false
	}
	return signedAmount(m[2], m[1] != "")
}

func windowProfit(markup string) (float64, bool) {
	idx := strings.Index(markup, profitLabel)
	if idx < 0 {
		return 0, false
	}
	window := markup[idx+len(profitLabel):]
	if next := strings.Index(window, profitLabel); next >= 0 {
		window = window[:next]
	}
	window = truncateRunes(window, windowRunes)

	negative := false
	lower := strings.ToLower(window)
	for _, marker := range lossMarkers {
		if strings.Contains(lower, marker) {
			negative = true
			break
		}
	}
	if !negative && windowMinus.MatchString(truncateRunes(window, signRunes)) {
		negative = true
	}

	m := windowAmount.FindStringSubmatch(window)
	if m == nil {
		return 0, false
	}
	return signedAmount(m[1], negative)
}

func embeddedProfit(markup string) (float64, bool) {
	for _, m := range embeddedData.FindAllStringSubmatch(markup, -1) {
		var data interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &data); err != nil {
			continue
		}
		if v, ok := findProfit(data, 0); ok {
			return v, true
		}
	}
	return 0, false
}

// findProfit walks decoded JSON looking for a numeric field named in
// profitKeys. Keys at one level are checked before descending, in sorted
// order so the result does not depend on map iteration.
func findProfit(node interface{}, depth int) (float64, bool) {
	if depth > maxEmbeddedDepth {
		return 0, false
	}

	switch t := node.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if !profitKeys[normalizeKey(k)] {
				continue
			}
			if v, ok := numericValue(t[k]); ok {
				return v, true
			}
		}
		for _, k := range keys {
			if v, ok := findProfit(t[k], depth+1); ok {
				return v, true
			}
		}
	case []interface{}:
		for _, elem := range t {
			if v, ok := findProfit(elem, depth+1); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

func numericValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		neg := false
		if strings.HasPrefix(s, "−") {
			neg = true
			s = strings.TrimPrefix(s, "−")
		}
		s = strings.NewReplacer("$", "", ",", "").Replace(s)
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		if neg {
			d = d.Neg()
		}
		f, _ := d.Float64()
		return f, true
	}
	return 0, false
}

// signedAmount parses a 1,234.56 style amount exactly and applies the sign
func signedAmount(amount string, negative bool) (float64, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(amount, ",", ""))
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, true
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
