package service

import (
	"maps"
	"slices"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/google/uuid"
)

type GenerateOptions struct {
	// Reset deletes every match of the tournament and draws a new calendar.
	Reset bool
}

// Report describes one generation run.
type Report struct {
	RunID           uuid.UUID    `json:"run_id"`
	TournamentID    int64        `json:"tournament_id"`
	Mode            fixture.Mode `json:"mode"`
	CreatedCount    int          `json:"created_count"`
	RenumberedCount int          `json:"renumbered_count"`
	TeamCount       int          `json:"team_count"`
	ExpectedTotal   int          `json:"expected_total"`
	UniquePairs     int          `json:"unique_pairs"`
	DuplicateCount  int          `json:"duplicate_count"`
	// Rounds is the calendar's match count per round after the run.
	Rounds []fixture.RoundCount `json:"rounds"`
	// CreatedRounds counts the matches this run inserted, by the round they
	// were inserted into.
	CreatedRounds []fixture.RoundCount `json:"created_rounds"`
	Blocked       bool                 `json:"blocked"`
}

func newReport(t *fixture.Tournament) *Report {
	return &Report{
		RunID:         uuid.New(),
		TournamentID:  t.ID,
		Mode:          t.Mode,
		Rounds:        []fixture.RoundCount{},
		CreatedRounds: []fixture.RoundCount{},
	}
}

func (r *Report) addCreatedRounds(created map[int]int) {
	rounds := make([]fixture.RoundCount, 0, len(created))
	for round, n := range created {
		rounds = append(rounds, fixture.RoundCount{RoundNumber: round, MatchCount: n})
	}
	r.CreatedRounds = mergeRounds(r.CreatedRounds, rounds)
}

// mergeRounds sums two per-round tallies, ordered by round.
func mergeRounds(a, b []fixture.RoundCount) []fixture.RoundCount {
	byRound := make(map[int]int, len(a)+len(b))
	for _, rc := range slices.Concat(a, b) {
		byRound[rc.RoundNumber] += rc.MatchCount
	}
	out := make([]fixture.RoundCount, 0, len(byRound))
	for _, round := range slices.Sorted(maps.Keys(byRound)) {
		out = append(out, fixture.RoundCount{RoundNumber: round, MatchCount: byRound[round]})
	}
	return out
}

// ModeChange describes a SetMode call.
type ModeChange struct {
	TournamentID int64        `json:"tournament_id"`
	From         fixture.Mode `json:"from"`
	To           fixture.Mode `json:"to"`
	Changed      bool         `json:"changed"`
	Blocked      bool         `json:"blocked"`
	DeletedCount int64        `json:"deleted_count"`
	Report       *Report      `json:"report,omitempty"`
}

// Diagnostics is a read-only summary of a tournament's calendar.
type Diagnostics struct {
	TournamentID  int64                `json:"tournament_id"`
	Mode          fixture.Mode         `json:"mode"`
	TeamCount     int                  `json:"team_count"`
	ExpectedTotal int                  `json:"expected_total"`
	Total         int                  `json:"total"`
	LockedCount   int                  `json:"locked_count"`
	Rounds        []fixture.RoundCount `json:"rounds"`
	PairsWithOne  int                  `json:"pairs_with_one"`
	PairsWithTwo  int                  `json:"pairs_with_two"`
	PairsOverTwo  int                  `json:"pairs_over_two"`
	// Pairs with more matches than the mode allows.
	Overfull []fixture.PairCount `json:"overfull"`
}
