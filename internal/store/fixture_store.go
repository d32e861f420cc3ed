package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("record not found")

// FixtureStore is the storage gateway for tournaments, enrollments and matches.
// Methods take the querier to run on, so the same calls work inside a locked
// transaction or directly against the pool. Queries use ? placeholders and are
// rebound for the handle's driver.
type FixtureStore struct {
	db     *sqlx.DB
	locker Locker
}

func NewFixtureStore(db *sqlx.DB) *FixtureStore {
	return &FixtureStore{db: db, locker: NewLocker(db.DriverName())}
}

func (s *FixtureStore) DB() *sqlx.DB {
	return s.db
}

const matchColumns = `id, tournament_id, home_team_id, away_team_id, round_number,
	scheduled_date, scheduled_time, home_score, away_score, created_at`

const (
	getTournamentQuery = `SELECT id, name, mode, created_at FROM tournaments WHERE id = ?`
	acceptedTeamsQuery = `
		SELECT team_id FROM tournament_teams
		WHERE tournament_id = ? AND status = 'accepted'
		ORDER BY team_id ASC`
	listMatchesQuery = `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = ? AND round_number >= ?
		ORDER BY round_number ASC, id ASC`
	listMatchesByIDQuery = `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = ? AND round_number >= ?
		ORDER BY id ASC`

	// The insert only happens when the pair has fewer than maxMeetings
	// matches and the exact home/away orientation is not taken yet.
	insertMatchIfAbsentQuery = `
		INSERT INTO matches (tournament_id, home_team_id, away_team_id, round_number)
		SELECT CAST(? AS BIGINT), CAST(? AS BIGINT), CAST(? AS BIGINT), CAST(? AS INTEGER)
		WHERE NOT EXISTS (
			SELECT 1 FROM matches
			WHERE tournament_id = ? AND home_team_id = ? AND away_team_id = ?
		)
		AND (
			SELECT COUNT(*) FROM matches
			WHERE tournament_id = ?
			  AND ((home_team_id = ? AND away_team_id = ?) OR (home_team_id = ? AND away_team_id = ?))
		) < ?`

	pairCountsQuery = `
		SELECT
			CASE WHEN home_team_id < away_team_id THEN home_team_id ELSE away_team_id END AS low_team_id,
			CASE WHEN home_team_id < away_team_id THEN away_team_id ELSE home_team_id END AS high_team_id,
			COUNT(*) AS matches
		FROM matches
		WHERE tournament_id = ?
		GROUP BY 1, 2
		ORDER BY 3 DESC, 1 ASC, 2 ASC`
	roundCountsQuery = `
		SELECT round_number, COUNT(*) AS match_count
		FROM matches
		WHERE tournament_id = ?
		GROUP BY round_number
		ORDER BY round_number ASC`
	lockedCountQuery = `
		SELECT COUNT(*) FROM matches
		WHERE tournament_id = ? AND round_number >= ?
		  AND (scheduled_date IS NOT NULL OR scheduled_time IS NOT NULL
		       OR home_score IS NOT NULL OR away_score IS NOT NULL)`
)

func (s *FixtureStore) GetTournament(ctx context.Context, q sqlx.QueryerContext, id int64) (*fixture.Tournament, error) {
	var t fixture.Tournament
	err := sqlx.GetContext(ctx, q, &t, rebind(q, getTournamentQuery), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AcceptedTeamIDs lists the teams taking part in fixture generation, ascending.
func (s *FixtureStore) AcceptedTeamIDs(ctx context.Context, q sqlx.QueryerContext, tournamentID int64) ([]int64, error) {
	ids := []int64{}
	err := sqlx.SelectContext(ctx, q, &ids, rebind(q, acceptedTeamsQuery), tournamentID)
	return ids, err
}

// ListMatches returns the matches from fromRound on, ordered by round then id.
func (s *FixtureStore) ListMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID int64, fromRound int) ([]fixture.Match, error) {
	matches := []fixture.Match{}
	err := sqlx.SelectContext(ctx, q, &matches, rebind(q, listMatchesQuery), tournamentID, fromRound)
	return matches, err
}

// ListMatchesByID is ListMatches in insertion order.
func (s *FixtureStore) ListMatchesByID(ctx context.Context, q sqlx.QueryerContext, tournamentID int64, fromRound int) ([]fixture.Match, error) {
	matches := []fixture.Match{}
	err := sqlx.SelectContext(ctx, q, &matches, rebind(q, listMatchesByIDQuery), tournamentID, fromRound)
	return matches, err
}

// CountLocked counts scheduled or scored matches from fromRound on.
func (s *FixtureStore) CountLocked(ctx context.Context, q sqlx.QueryerContext, tournamentID int64, fromRound int) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, rebind(q, lockedCountQuery), tournamentID, fromRound)
	return n, err
}

// InsertMatchIfAbsent stores c unless the mode's duplicate rule forbids it and
// reports whether a row was written.
func (s *FixtureStore) InsertMatchIfAbsent(ctx context.Context, tx *sqlx.Tx, c fixture.Candidate, mode fixture.Mode) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(insertMatchIfAbsentQuery),
		c.TournamentID, c.HomeTeamID, c.AwayTeamID, c.RoundNumber,
		c.TournamentID, c.HomeTeamID, c.AwayTeamID,
		c.TournamentID, c.HomeTeamID, c.AwayTeamID, c.AwayTeamID, c.HomeTeamID,
		mode.MaxMeetings(),
	)
	if err != nil {
		return false, fmt.Errorf("insert match %d-%d round %d: %w", c.HomeTeamID, c.AwayTeamID, c.RoundNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n > 0, nil
}

func (s *FixtureStore) UpdateMatchRound(ctx context.Context, tx *sqlx.Tx, matchID int64, round int) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE matches SET round_number = ? WHERE id = ?`), round, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, fmt.Errorf("match %d: %w", matchID, ErrNotFound))
}

// DeleteMatches removes every match of the tournament from fromRound on.
func (s *FixtureStore) DeleteMatches(ctx context.Context, tx *sqlx.Tx, tournamentID int64, fromRound int) (int64, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM matches WHERE tournament_id = ? AND round_number >= ?`), tournamentID, fromRound)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteMatchesByID removes the given matches of the tournament.
func (s *FixtureStore) DeleteMatchesByID(ctx context.Context, tx *sqlx.Tx, tournamentID int64, matchIDs []int64) (int64, error) {
	if len(matchIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM matches WHERE tournament_id = ? AND id IN (?)`, tournamentID, matchIDs)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PairCounts groups the tournament's matches by unordered pair.
func (s *FixtureStore) PairCounts(ctx context.Context, q sqlx.QueryerContext, tournamentID int64) ([]fixture.PairCount, error) {
	counts := []fixture.PairCount{}
	err := sqlx.SelectContext(ctx, q, &counts, rebind(q, pairCountsQuery), tournamentID)
	return counts, err
}

func (s *FixtureStore) RoundCounts(ctx context.Context, q sqlx.QueryerContext, tournamentID int64) ([]fixture.RoundCount, error) {
	counts := []fixture.RoundCount{}
	err := sqlx.SelectContext(ctx, q, &counts, rebind(q, roundCountsQuery), tournamentID)
	return counts, err
}

func (s *FixtureStore) SetTournamentMode(ctx context.Context, tx *sqlx.Tx, tournamentID int64, mode fixture.Mode) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE tournaments SET mode = ? WHERE id = ?`), mode, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, fmt.Errorf("tournament %d: %w", tournamentID, ErrNotFound))
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func rebind(q sqlx.QueryerContext, query string) string {
	if b, ok := q.(interface{ Rebind(string) string }); ok {
		return b.Rebind(query)
	}
	return query
}
