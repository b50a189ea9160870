package holders

import (
	"strings"

	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
)

// StubsFromGroups splits the holder source response into a ranked stub list
// per side. A group's side comes from its first holder's outcome index; rank
// is the zero-based position inside the group as returned upstream.
func StubsFromGroups(groups []dataapi.HolderGroup) map[Side][]HolderStub {
	out := make(map[Side][]HolderStub, 2)
	for _, g := range groups {
		if len(g.Holders) == 0 {
			continue
		}
		side := SideFromIndex(g.Holders[0].OutcomeIndex)
		stubs := make([]HolderStub, 0, len(g.Holders))
		for i, h := range g.Holders {
			stubs = append(stubs, HolderStub{
				Rank:      i,
				Wallet:    strings.TrimSpace(h.ProxyWallet),
				Name:      h.Name,
				Pseudonym: h.Pseudonym,
				Bio:       h.Bio,
				Side:      side,
				Amount:    h.Amount,
			})
		}
		out[side] = stubs
	}
	return out
}
