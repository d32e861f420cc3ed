package schedule

import (
	"cmp"
	"slices"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
)

// Surplus returns the matches to drop so that no pair meets more than
// maxMeetings times. For each pair the earliest matches by round, then id,
// are kept.
func Surplus(matches []fixture.Match, maxMeetings int) []fixture.Match {
	ordered := slices.Clone(matches)
	slices.SortStableFunc(ordered, func(a, b fixture.Match) int {
		return cmp.Or(cmp.Compare(a.RoundNumber, b.RoundNumber), cmp.Compare(a.ID, b.ID))
	})

	seen := make(map[fixture.PairKey]int, len(ordered))
	var surplus []fixture.Match
	for _, m := range ordered {
		key := m.Pair()
		seen[key]++
		if seen[key] > maxMeetings {
			surplus = append(surplus, m)
		}
	}
	return surplus
}
