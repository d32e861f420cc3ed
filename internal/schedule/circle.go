package schedule

import (
	"fmt"
	"iter"
)

// Bye is the placeholder seat added when the team count is odd. Team ids are
// positive, so it never collides with a real team.
const Bye int64 = 0

// Pairing is two seats facing each other in a round, in circle order.
type Pairing struct {
	First  int64
	Second int64
}

// Seats copies teamIDs and appends Bye when the count is odd.
func Seats(teamIDs []int64) ([]int64, error) {
	seats := make([]int64, 0, len(teamIDs)+1)
	for _, id := range teamIDs {
		if id <= 0 {
			return nil, fmt.Errorf("invalid team id %d", id)
		}
		seats = append(seats, id)
	}
	if len(seats)%2 == 1 {
		seats = append(seats, Bye)
	}
	return seats, nil
}

// RoundCount is the number of rounds in one leg for the given seats.
func RoundCount(seats []int64) int {
	if len(seats) < 2 {
		return 0
	}
	return len(seats) - 1
}

// LogicalTeams is the number of real teams among seats.
func LogicalTeams(seats []int64) int {
	n := 0
	for _, s := range seats {
		if s != Bye {
			n++
		}
	}
	return n
}

// Rounds yields one leg of the circle method over seats: the first seat stays
// put, seat i plays seat n-1-i, and after every round the last seat moves to
// the second position. Pairings involving Bye are left out. seats must have
// even length.
func Rounds(seats []int64) iter.Seq2[int, []Pairing] {
	return func(yield func(int, []Pairing) bool) {
		n := len(seats)
		if n < 2 || n%2 != 0 {
			return
		}
		circle := make([]int64, n)
		copy(circle, seats)

		for r := 0; r < n-1; r++ {
			pairs := make([]Pairing, 0, n/2)
			for i := 0; i < n/2; i++ {
				a, b := circle[i], circle[n-1-i]
				if a == Bye || b == Bye {
					continue
				}
				pairs = append(pairs, Pairing{First: a, Second: b})
			}
			if !yield(r, pairs) {
				return
			}
			rotate(circle)
		}
	}
}

func rotate(circle []int64) {
	last := circle[len(circle)-1]
	copy(circle[2:], circle[1:len(circle)-1])
	circle[1] = last
}
