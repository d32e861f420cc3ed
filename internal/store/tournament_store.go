package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/AdamBeresnev/op-fixtures/internal/utils"
	"github.com/jmoiron/sqlx"
)

// The writes below belong to the organizer-facing CRUD layer. The scheduler
// never calls them; the CLI and tests use them to set up tournaments.

func (s *FixtureStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *fixture.Tournament) error {
	if tournament.Mode == "" {
		tournament.Mode = fixture.SingleRoundRobin
	}
	return tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO tournaments (name, mode) VALUES (?, ?)
		RETURNING id, created_at`), tournament.Name, tournament.Mode).
		Scan(&tournament.ID, &tournament.CreatedAt)
}

func (s *FixtureStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *fixture.Team) error {
	return tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO teams (name) VALUES (?) RETURNING id, created_at`), team.Name).
		Scan(&team.ID, &team.CreatedAt)
}

// EnrollTeam adds the team to the tournament or changes its enrollment status.
func (s *FixtureStore) EnrollTeam(ctx context.Context, tx *sqlx.Tx, e fixture.Enrollment) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_teams (tournament_id, team_id, status)
		VALUES (:tournament_id, :team_id, :status)
		ON CONFLICT (tournament_id, team_id) DO UPDATE SET status = excluded.status`, e)
	return err
}

// ScheduleMatch sets or clears the match's date and time. Blank values are
// stored as NULL so they do not lock the match.
func (s *FixtureStore) ScheduleMatch(ctx context.Context, matchID int64, date, clock *string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE matches SET scheduled_date = ?, scheduled_time = ? WHERE id = ?`), blankToNil(date), blankToNil(clock), matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, fmt.Errorf("match %d: %w", matchID, ErrNotFound))
}

func (s *FixtureStore) RecordScore(ctx context.Context, matchID int64, home, away *int) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE matches SET home_score = ?, away_score = ? WHERE id = ?`), home, away, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, fmt.Errorf("match %d: %w", matchID, ErrNotFound))
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.StringOrNil(*s)
}
