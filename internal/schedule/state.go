package schedule

import "github.com/AdamBeresnev/op-fixtures/internal/fixture"

// State is what the scheduler knows about a tournament's existing calendar.
// It is computed once per generation run from the stored matches.
type State struct {
	HasExistingMatches bool
	MaxRound           int
	FirstLegRounds     int
	LockedMatches      int

	// FirstLegHome maps each pair with a first-leg match to its home team.
	FirstLegHome map[fixture.PairKey]int64
}

func NewState(matches []fixture.Match, firstLegRounds int) State {
	st := State{
		HasExistingMatches: len(matches) > 0,
		FirstLegRounds:     firstLegRounds,
		FirstLegHome:       make(map[fixture.PairKey]int64),
	}
	for i := range matches {
		m := &matches[i]
		if m.RoundNumber > st.MaxRound {
			st.MaxRound = m.RoundNumber
		}
		if m.RoundNumber <= firstLegRounds {
			st.FirstLegHome[m.Pair()] = m.HomeTeamID
		}
		if m.Locked() {
			st.LockedMatches++
		}
	}
	return st
}

// AnyLocked reports whether the organizer has committed to any match.
func (s State) AnyLocked() bool {
	return s.LockedMatches > 0
}
