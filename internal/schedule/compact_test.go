package schedule

import (
	"testing"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/AdamBeresnev/op-fixtures/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(matches []fixture.Match, moves []Renumber) {
	for _, mv := range moves {
		for i := range matches {
			if matches[i].ID == mv.MatchID {
				matches[i].RoundNumber = mv.To
			}
		}
	}
}

func scatteredSecondLeg() []fixture.Match {
	// Canonical second leg for seats 1..4 is {1,4},{2,3} -> 4, {1,3},{2,4} -> 5, {1,2},{3,4} -> 6.
	return []fixture.Match{
		{ID: 11, HomeTeamID: 4, AwayTeamID: 1, RoundNumber: 4},
		{ID: 12, HomeTeamID: 3, AwayTeamID: 2, RoundNumber: 9},
		{ID: 13, HomeTeamID: 3, AwayTeamID: 1, RoundNumber: 7},
		{ID: 14, HomeTeamID: 4, AwayTeamID: 2, RoundNumber: 7},
		{ID: 15, HomeTeamID: 2, AwayTeamID: 1, RoundNumber: 8},
		{ID: 16, HomeTeamID: 4, AwayTeamID: 3, RoundNumber: 6},
	}
}

func TestCompactMovesSecondLegIntoCanonicalRounds(t *testing.T) {
	seats := []int64{1, 2, 3, 4}
	matches := scatteredSecondLeg()

	moves := Compact(seats, matches)
	assert.ElementsMatch(t, []Renumber{
		{MatchID: 12, From: 9, To: 4},
		{MatchID: 13, From: 7, To: 5},
		{MatchID: 14, From: 7, To: 5},
		{MatchID: 15, From: 8, To: 6},
	}, moves)

	apply(matches, moves)
	assert.Empty(t, Compact(seats, matches), "second pass must be a no-op")

	perRound := make(map[int]int)
	for _, m := range matches {
		perRound[m.RoundNumber]++
	}
	assert.Equal(t, map[int]int{4: 2, 5: 2, 6: 2}, perRound)
}

func TestCompactSkipsWhenSecondLegLocked(t *testing.T) {
	matches := scatteredSecondLeg()
	matches[3].HomeScore = utils.Ptr(2)

	assert.Nil(t, Compact([]int64{1, 2, 3, 4}, matches))
}

func TestCompactIgnoresUnknownPairs(t *testing.T) {
	matches := []fixture.Match{
		{ID: 1, HomeTeamID: 2, AwayTeamID: 1, RoundNumber: 12},
		{ID: 2, HomeTeamID: 8, AwayTeamID: 9, RoundNumber: 12},
	}
	moves := Compact([]int64{1, 2, 3, 4}, matches)
	require.Len(t, moves, 1)
	assert.Equal(t, Renumber{MatchID: 1, From: 12, To: 6}, moves[0])
}

func TestCompactWithBye(t *testing.T) {
	seats, err := Seats([]int64{1, 2, 3})
	require.NoError(t, err)

	// Canonical rounds for seats 1,2,3,Bye: {2,3} -> 4, {1,3} -> 5, {1,2} -> 6.
	matches := []fixture.Match{
		{ID: 1, HomeTeamID: 3, AwayTeamID: 1, RoundNumber: 4},
		{ID: 2, HomeTeamID: 2, AwayTeamID: 1, RoundNumber: 4},
		{ID: 3, HomeTeamID: 3, AwayTeamID: 2, RoundNumber: 5},
	}
	moves := Compact(seats, matches)
	apply(matches, moves)

	rounds := map[int64]int{}
	for _, m := range matches {
		rounds[m.ID] = m.RoundNumber
	}
	assert.Equal(t, map[int64]int{1: 5, 2: 6, 3: 4}, rounds)
	assert.Empty(t, Compact(seats, matches))
}

func TestCompactNothingToDo(t *testing.T) {
	assert.Nil(t, Compact([]int64{1, 2}, nil))
	assert.Nil(t, Compact(nil, scatteredSecondLeg()))
}
