package placement

import "sort"

// Step is the gap between consecutive order indices. Leaving gaps lets
// a single placement slot between two neighbours without renumbering
// the whole container.
const Step = 10

// NextIndex returns the order index for a placement appended to a
// container whose current maximum is max. An empty container starts
// from a -Step baseline so the first placement lands at 0.
func NextIndex(max int, hasAny bool) int {
	if !hasAny {
		max = -Step
	}
	return max + Step
}

// SequentialIndexes assigns gap-10 indices 0, 10, 20, ... for a full
// resequence of n placements.
func SequentialIndexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i * Step
	}
	return out
}

// MaxIndex returns the highest order index among ps and whether ps is
// non-empty.
func MaxIndex(ps []Placement) (int, bool) {
	if len(ps) == 0 {
		return 0, false
	}
	max := ps[0].OrderIndex
	for _, p := range ps[1:] {
		if p.OrderIndex > max {
			max = p.OrderIndex
		}
	}
	return max, true
}

// SortStable orders placements by order index ascending. Ties are
// broken by the supplied field key lookup so reads are deterministic
// even when an explicit reorder assigned duplicate indices.
func SortStable(ps []Placement, keyOf func(fieldID string) string) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].OrderIndex != ps[j].OrderIndex {
			return ps[i].OrderIndex < ps[j].OrderIndex
		}
		return keyOf(ps[i].FieldID) < keyOf(ps[j].FieldID)
	})
}
