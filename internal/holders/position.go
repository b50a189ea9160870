package holders

import (
	"strings"

	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
)

// SelectPosition picks the entry for ref's market and side out of a wallet's
// positions. A wallet that has exited returns the zero Position.
func SelectPosition(positions []dataapi.Position, ref MarketRef) Position {
	idx := ref.Side.OutcomeIndex()
	for _, p := range positions {
		if p.OutcomeIndex != idx {
			continue
		}
		if p.ConditionID != "" && ref.ConditionID != "" && !strings.EqualFold(p.ConditionID, ref.ConditionID) {
			continue
		}
		return Position{
			Shares:       p.Size,
			AvgPrice:     p.AvgPrice,
			CurPrice:     p.CurPrice,
			InitialValue: p.InitialValue,
			CurrentValue: p.CurrentValue,
		}
	}
	return Position{}
}

// MarketPnL is always current value minus cost basis. Upstream cashPnl is
// ignored because it has been seen to disagree with the value/cost pair.
func MarketPnL(p Position) float64 {
	return p.CurrentValue - p.InitialValue
}

// PercentPnL is MarketPnL relative to cost basis, 0 when there is no cost basis
func PercentPnL(p Position) float64 {
	if p.InitialValue == 0 {
		return 0
	}
	return MarketPnL(p) / p.InitialValue * 100
}
