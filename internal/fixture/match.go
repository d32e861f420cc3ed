package fixture

import "time"

type Leg int

const (
	FirstLeg  Leg = 1
	SecondLeg Leg = 2
)

type Match struct {
	ID           int64 `db:"id" json:"id"`
	TournamentID int64 `db:"tournament_id" json:"tournament_id"`

	HomeTeamID  int64 `db:"home_team_id" json:"home_team_id"`
	AwayTeamID  int64 `db:"away_team_id" json:"away_team_id"`
	RoundNumber int   `db:"round_number" json:"round_number"`

	ScheduledDate *string `db:"scheduled_date" json:"scheduled_date,omitempty"`
	ScheduledTime *string `db:"scheduled_time" json:"scheduled_time,omitempty"`
	HomeScore     *int    `db:"home_score" json:"home_score,omitempty"`
	AwayScore     *int    `db:"away_score" json:"away_score,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Locked reports whether the organizer has already committed to this match.
// Locked matches are never deleted or renumbered by the scheduler.
func (m *Match) Locked() bool {
	return m.ScheduledDate != nil || m.ScheduledTime != nil || m.HomeScore != nil || m.AwayScore != nil
}

func (m *Match) Pair() PairKey {
	return NewPairKey(m.HomeTeamID, m.AwayTeamID)
}

// PairKey identifies an unordered pair of teams, Low < High.
type PairKey struct {
	Low  int64
	High int64
}

func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// Candidate is a match the scheduler wants to exist.
type Candidate struct {
	TournamentID int64
	HomeTeamID   int64
	AwayTeamID   int64
	RoundNumber  int
	Leg          Leg
}

type PairCount struct {
	LowTeamID  int64 `db:"low_team_id" json:"low_team_id"`
	HighTeamID int64 `db:"high_team_id" json:"high_team_id"`
	Matches    int   `db:"matches" json:"matches"`
}

type RoundCount struct {
	RoundNumber int `db:"round_number" json:"round_number"`
	MatchCount  int `db:"match_count" json:"match_count"`
}
