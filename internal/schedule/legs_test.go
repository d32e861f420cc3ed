package schedule

import (
	"math/rand/v2"
	"testing"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byLeg(plan Plan, leg fixture.Leg) []fixture.Candidate {
	var out []fixture.Candidate
	for _, c := range plan.Candidates {
		if c.Leg == leg {
			out = append(out, c)
		}
	}
	return out
}

func homeByPair(cs []fixture.Candidate) map[fixture.PairKey]int64 {
	out := make(map[fixture.PairKey]int64)
	for _, c := range cs {
		out[fixture.NewPairKey(c.HomeTeamID, c.AwayTeamID)] = c.HomeTeamID
	}
	return out
}

func TestLegsSingleFreshAlternatesHomeByRound(t *testing.T) {
	plan := Legs(LegRequest{
		TournamentID: 9,
		Seats:        []int64{1, 2, 3, 4},
		Mode:         fixture.SingleRoundRobin,
		Reset:        true,
	}, NoShuffle{})

	expected := []fixture.Candidate{
		{TournamentID: 9, HomeTeamID: 1, AwayTeamID: 4, RoundNumber: 1, Leg: fixture.FirstLeg},
		{TournamentID: 9, HomeTeamID: 2, AwayTeamID: 3, RoundNumber: 1, Leg: fixture.FirstLeg},
		{TournamentID: 9, HomeTeamID: 3, AwayTeamID: 1, RoundNumber: 2, Leg: fixture.FirstLeg},
		{TournamentID: 9, HomeTeamID: 2, AwayTeamID: 4, RoundNumber: 2, Leg: fixture.FirstLeg},
		{TournamentID: 9, HomeTeamID: 1, AwayTeamID: 2, RoundNumber: 3, Leg: fixture.FirstLeg},
		{TournamentID: 9, HomeTeamID: 3, AwayTeamID: 4, RoundNumber: 3, Leg: fixture.FirstLeg},
	}
	assert.Equal(t, expected, plan.Candidates)
	assert.Zero(t, plan.Fallbacks)
}

func TestLegsDoubleFreshMirrorsFirstLeg(t *testing.T) {
	seats, err := Seats(teamIDs(6))
	require.NoError(t, err)

	plan := Legs(LegRequest{Seats: seats, Mode: fixture.DoubleRoundRobin}, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, plan.Candidates, 30)

	first := byLeg(plan, fixture.FirstLeg)
	second := byLeg(plan, fixture.SecondLeg)
	require.Len(t, first, 15)
	require.Len(t, second, 15)

	firstHome := homeByPair(first)
	for _, c := range second {
		key := fixture.NewPairKey(c.HomeTeamID, c.AwayTeamID)
		assert.NotEqual(t, firstHome[key], c.HomeTeamID, "pair %v keeps its home side", key)
		assert.GreaterOrEqual(t, c.RoundNumber, 6)
		assert.LessOrEqual(t, c.RoundNumber, 10)
	}
	for _, c := range first {
		assert.GreaterOrEqual(t, c.RoundNumber, 1)
		assert.LessOrEqual(t, c.RoundNumber, 5)
	}
}

func TestLegsShuffleOnlyReordersWithinRound(t *testing.T) {
	req := LegRequest{Seats: teamIDs(8), Mode: fixture.DoubleRoundRobin, Reset: true}
	plain := Legs(req, NoShuffle{})
	mixed := Legs(req, rand.New(rand.NewPCG(7, 7)))

	assert.ElementsMatch(t, plain.Candidates, mixed.Candidates)

	lastRound := 0
	for _, c := range mixed.Candidates {
		assert.GreaterOrEqual(t, c.RoundNumber, lastRound)
		lastRound = c.RoundNumber
	}
}

func TestLegsAppendSecondLegToExistingCalendar(t *testing.T) {
	// First leg stored from a different team order than the one used now.
	stored := []fixture.Match{
		{ID: 1, HomeTeamID: 4, AwayTeamID: 1, RoundNumber: 1},
		{ID: 2, HomeTeamID: 3, AwayTeamID: 2, RoundNumber: 1},
		{ID: 3, HomeTeamID: 1, AwayTeamID: 3, RoundNumber: 2},
		{ID: 4, HomeTeamID: 2, AwayTeamID: 4, RoundNumber: 2},
		{ID: 5, HomeTeamID: 2, AwayTeamID: 1, RoundNumber: 3},
		{ID: 6, HomeTeamID: 4, AwayTeamID: 3, RoundNumber: 3},
	}
	seats := []int64{1, 2, 3, 4}
	plan := Legs(LegRequest{
		Seats: seats,
		Mode:  fixture.DoubleRoundRobin,
		State: NewState(stored, RoundCount(seats)),
	}, NoShuffle{})

	assert.Empty(t, byLeg(plan, fixture.FirstLeg))
	second := byLeg(plan, fixture.SecondLeg)
	require.Len(t, second, 6)
	assert.Zero(t, plan.Fallbacks)

	storedHome := make(map[fixture.PairKey]int64)
	for _, m := range stored {
		storedHome[m.Pair()] = m.HomeTeamID
	}
	for _, c := range second {
		key := fixture.NewPairKey(c.HomeTeamID, c.AwayTeamID)
		assert.NotEqual(t, storedHome[key], c.HomeTeamID, "pair %v", key)
		assert.Contains(t, []int{4, 5, 6}, c.RoundNumber)
	}
}

func TestLegsAppendStartsAfterMaxRound(t *testing.T) {
	stored := []fixture.Match{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 2, RoundNumber: 1},
		{ID: 2, HomeTeamID: 2, AwayTeamID: 1, RoundNumber: 5},
	}
	seats := []int64{1, 2, 3, 4}
	plan := Legs(LegRequest{
		Seats: seats,
		Mode:  fixture.DoubleRoundRobin,
		State: NewState(stored, RoundCount(seats)),
	}, NoShuffle{})

	second := byLeg(plan, fixture.SecondLeg)
	require.Len(t, second, 6)
	for _, c := range second {
		assert.Contains(t, []int{6, 7, 8}, c.RoundNumber)
	}
	// Only the 1-2 pair has a first-leg record.
	assert.Equal(t, 5, plan.Fallbacks)
	for _, c := range second {
		if fixture.NewPairKey(c.HomeTeamID, c.AwayTeamID) == fixture.NewPairKey(1, 2) {
			assert.Equal(t, int64(2), c.HomeTeamID)
		}
	}
}

func TestLegsSingleModeRefillsFirstLegWithoutReset(t *testing.T) {
	stored := []fixture.Match{{ID: 1, HomeTeamID: 1, AwayTeamID: 2, RoundNumber: 3}}
	seats := []int64{1, 2, 3, 4}
	plan := Legs(LegRequest{
		Seats: seats,
		Mode:  fixture.SingleRoundRobin,
		State: NewState(stored, RoundCount(seats)),
	}, NoShuffle{})

	assert.Len(t, byLeg(plan, fixture.FirstLeg), 6)
	assert.Empty(t, byLeg(plan, fixture.SecondLeg))
}

func TestLegsNotEnoughTeams(t *testing.T) {
	testCases := []struct {
		name  string
		seats []int64
	}{
		{name: "no teams", seats: nil},
		{name: "one team", seats: []int64{5, Bye}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan := Legs(LegRequest{Seats: tc.seats, Mode: fixture.DoubleRoundRobin, Reset: true}, NoShuffle{})
			assert.Empty(t, plan.Candidates)
		})
	}
}
