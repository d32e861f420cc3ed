package schedule

import "github.com/AdamBeresnev/op-fixtures/internal/fixture"

// Renumber moves one match to another round.
type Renumber struct {
	MatchID int64 `json:"match_id"`
	From    int   `json:"from"`
	To      int   `json:"to"`
}

// Compact places the second leg in the contiguous block right after the first
// leg, in the round each pair gets from a fresh circle-method pass over seats.
// secondLeg holds the stored matches past the first leg, ordered by id; when a
// pair appears more than once the last one wins. Nothing moves if any of them is
// locked. Applying the result and calling Compact again yields no changes.
func Compact(seats []int64, secondLeg []fixture.Match) []Renumber {
	rounds := RoundCount(seats)
	if rounds == 0 || len(secondLeg) == 0 {
		return nil
	}

	byPair := make(map[fixture.PairKey]*fixture.Match, len(secondLeg))
	for i := range secondLeg {
		m := &secondLeg[i]
		if m.Locked() {
			return nil
		}
		byPair[m.Pair()] = m
	}

	var moves []Renumber
	for r, pairs := range Rounds(seats) {
		target := rounds + r + 1
		for _, p := range pairs {
			m, ok := byPair[fixture.NewPairKey(p.First, p.Second)]
			if !ok || m.RoundNumber == target {
				continue
			}
			moves = append(moves, Renumber{MatchID: m.ID, From: m.RoundNumber, To: target})
		}
	}
	return moves
}
