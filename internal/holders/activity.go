package holders

import (
	"strings"

	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
)

// SummarizeActivity filters a wallet's raw activity down to trades on ref's
// market and side, then totals buys and sells
func SummarizeActivity(records []dataapi.Activity, ref MarketRef) ActivitySummary {
	var s ActivitySummary
	idx := ref.Side.OutcomeIndex()

	for _, r := range records {
		if r.Type != "" && !strings.EqualFold(r.Type, "TRADE") {
			continue
		}
		if r.OutcomeIndex != idx {
			continue
		}
		if r.ConditionID != "" && ref.ConditionID != "" && !strings.EqualFold(r.ConditionID, ref.ConditionID) {
			continue
		}

		switch strings.ToUpper(r.Side) {
		case "BUY":
			s.Buys++
			s.BuyVolume += r.USDCSize
			s.BuyShares += r.Size
		case "SELL":
			s.Sells++
			s.SellVolume += r.USDCSize
			s.SellShares += r.Size
		}
	}
	return s
}
