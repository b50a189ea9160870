package holders

// SelectionPolicy decides which ranked holder entries are enriched for a side
type SelectionPolicy int

const (
	// Unmodified takes ranks 0..N-1
	Unmodified SelectionPolicy = iota
	// SkipFirst drops rank 0 and takes ranks 1..N
	SkipFirst
)

func (p SelectionPolicy) String() string {
	switch p {
	case SkipFirst:
		return "skip_first"
	default:
		return "unmodified"
	}
}

// Skip returns how many leading ranks the policy drops
func (p SelectionPolicy) Skip() int {
	if p == SkipFirst {
		return 1
	}
	return 0
}

// FetchLimit returns how many ranked entries must be requested upstream so
// that n remain after the policy is applied
func (p SelectionPolicy) FetchLimit(n int) int {
	return n + p.Skip()
}

// DefaultPolicy returns the policy for a side. The holders endpoint has been
// observed to put a spurious entry at rank 0 of the NO ranking only; the root
// cause is unverified, so confirm current upstream behaviour before changing
// this.
func DefaultPolicy(side Side) SelectionPolicy {
	if side == SideNo {
		return SkipFirst
	}
	return Unmodified
}

// Select applies policy to a ranked list and returns at most n entries.
// The input is not modified.
func Select(ranked []HolderStub, policy SelectionPolicy, n int) []HolderStub {
	if n <= 0 {
		return nil
	}
	start := policy.Skip()
	if start >= len(ranked) {
		return []HolderStub{}
	}
	end := start + n
	if end > len(ranked) {
		end = len(ranked)
	}
	out := make([]HolderStub, end-start)
	copy(out, ranked[start:end])
	return out
}
