package schedule

import (
	"testing"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/AdamBeresnev/op-fixtures/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestNewState(t *testing.T) {
	matches := []fixture.Match{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 2, RoundNumber: 1, ScheduledDate: utils.Ptr("2026-11-01")},
		{ID: 2, HomeTeamID: 3, AwayTeamID: 1, RoundNumber: 2},
		{ID: 3, HomeTeamID: 2, AwayTeamID: 1, RoundNumber: 4, AwayScore: utils.Ptr(0)},
		{ID: 4, HomeTeamID: 1, AwayTeamID: 3, RoundNumber: 5},
	}

	st := NewState(matches, 3)
	assert.True(t, st.HasExistingMatches)
	assert.Equal(t, 5, st.MaxRound)
	assert.Equal(t, 3, st.FirstLegRounds)
	assert.Equal(t, 2, st.LockedMatches)
	assert.True(t, st.AnyLocked())
	assert.Equal(t, map[fixture.PairKey]int64{
		fixture.NewPairKey(1, 2): 1,
		fixture.NewPairKey(1, 3): 3,
	}, st.FirstLegHome)
}

func TestNewStateEmpty(t *testing.T) {
	st := NewState(nil, 5)
	assert.False(t, st.HasExistingMatches)
	assert.Zero(t, st.MaxRound)
	assert.False(t, st.AnyLocked())
	assert.Empty(t, st.FirstLegHome)
}
