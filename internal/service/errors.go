package service

import "errors"

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrInvalidMode        = errors.New("invalid tournament mode")
	ErrInvalidTournament  = errors.New("invalid tournament id")

	// ErrInvariantViolation means generation left a pair with more matches than
	// the mode allows. The transaction is rolled back.
	ErrInvariantViolation = errors.New("fixture invariant violated")
)
