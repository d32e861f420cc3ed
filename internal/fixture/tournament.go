package fixture

import (
	"fmt"
	"time"
)

type Mode string

const (
	// SingleRoundRobin: every pair meets once.
	SingleRoundRobin Mode = "single"
	// DoubleRoundRobin: every pair meets twice with home and away swapped.
	DoubleRoundRobin Mode = "double"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case SingleRoundRobin, DoubleRoundRobin:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown tournament mode %q", s)
}

// MaxMeetings is how many matches a pair of teams may have in this mode.
func (m Mode) MaxMeetings() int {
	if m == DoubleRoundRobin {
		return 2
	}
	return 1
}

// ExpectedMatches is the size of a complete calendar for teamCount real teams.
func (m Mode) ExpectedMatches(teamCount int) int {
	if teamCount < 2 {
		return 0
	}
	perLeg := teamCount * (teamCount - 1) / 2
	if m == DoubleRoundRobin {
		return perLeg * 2
	}
	return perLeg
}

type Tournament struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Mode      Mode      `db:"mode" json:"mode"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
