package schedule

import "github.com/AdamBeresnev/op-fixtures/internal/fixture"

type LegRequest struct {
	TournamentID int64
	// Seats is the team order for this run, Bye-padded (see Seats).
	Seats []int64
	Mode  fixture.Mode
	Reset bool
	State State
}

type Plan struct {
	Candidates []fixture.Candidate
	// Fallbacks counts second-leg pairings whose first-leg match was missing
	// and whose orientation came from round parity instead.
	Fallbacks int
}

// appending is true when the run extends a calendar that already exists.
func (r LegRequest) appending() bool {
	return !r.Reset && r.State.HasExistingMatches
}

func (r LegRequest) wantsFirstLeg() bool {
	return r.Reset || r.Mode == fixture.SingleRoundRobin || !r.State.HasExistingMatches
}

// Legs decides which legs to generate and orients every pairing. Candidates come
// back in insertion order; within a round that order is shuffled and carries no
// meaning. Whether a candidate is actually stored is up to the storage layer's
// duplicate rule for the mode.
func Legs(req LegRequest, shuffle Shuffler) Plan {
	var plan Plan
	rounds := RoundCount(req.Seats)
	if rounds == 0 {
		return plan
	}

	if req.wantsFirstLeg() {
		for r, pairs := range Rounds(req.Seats) {
			oriented := make([]fixture.Candidate, 0, len(pairs))
			for _, p := range pairs {
				home, away := p.First, p.Second
				if r%2 == 1 {
					home, away = away, home
				}
				oriented = append(oriented, req.candidate(home, away, r+1, fixture.FirstLeg))
			}
			plan.Candidates = append(plan.Candidates, shuffled(oriented, shuffle)...)
		}
	}

	if req.Mode != fixture.DoubleRoundRobin {
		return plan
	}

	base := rounds
	if req.appending() {
		base = req.State.MaxRound
	}
	for r, pairs := range Rounds(req.Seats) {
		oriented := make([]fixture.Candidate, 0, len(pairs))
		for _, p := range pairs {
			home, away, fallback := req.secondLegOrientation(r, p)
			if fallback {
				plan.Fallbacks++
			}
			oriented = append(oriented, req.candidate(home, away, base+r+1, fixture.SecondLeg))
		}
		plan.Candidates = append(plan.Candidates, shuffled(oriented, shuffle)...)
	}
	return plan
}

// secondLegOrientation mirrors the stored first-leg match when there is one.
// Otherwise it uses the opposite of the first-leg parity rule, which is the
// mirror of what a first leg over the same order would have produced.
func (r LegRequest) secondLegOrientation(round int, p Pairing) (home, away int64, fallback bool) {
	if r.appending() {
		if firstHome, ok := r.State.FirstLegHome[fixture.NewPairKey(p.First, p.Second)]; ok {
			if firstHome == p.First {
				return p.Second, p.First, false
			}
			return p.First, p.Second, false
		}
		fallback = true
	}
	if round%2 == 0 {
		return p.Second, p.First, fallback
	}
	return p.First, p.Second, fallback
}

func (r LegRequest) candidate(home, away int64, round int, leg fixture.Leg) fixture.Candidate {
	return fixture.Candidate{
		TournamentID: r.TournamentID,
		HomeTeamID:   home,
		AwayTeamID:   away,
		RoundNumber:  round,
		Leg:          leg,
	}
}

func shuffled(c []fixture.Candidate, shuffle Shuffler) []fixture.Candidate {
	if shuffle != nil {
		shuffle.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })
	}
	return c
}
