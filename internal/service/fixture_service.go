package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/AdamBeresnev/op-fixtures/internal/metrics"
	"github.com/AdamBeresnev/op-fixtures/internal/schedule"
	"github.com/AdamBeresnev/op-fixtures/internal/store"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// FixtureService is the single entry point for building round-robin calendars.
type FixtureService struct {
	store   *store.FixtureStore
	logger  *slog.Logger
	shuffle schedule.Shuffler
}

func NewFixtureService(st *store.FixtureStore, logger *slog.Logger) *FixtureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixtureService{store: st, logger: logger, shuffle: schedule.DefaultShuffler}
}

// WithShuffler sets the randomness used for reset draws and the insertion
// order inside a round.
func (s *FixtureService) WithShuffler(sh schedule.Shuffler) *FixtureService {
	s.shuffle = sh
	return s
}

// GenerateFixtures brings the tournament's calendar in line with its mode and
// accepted teams. The whole run happens in one transaction holding the
// tournament lock; a blocked run is reported, not returned as an error.
func (s *FixtureService) GenerateFixtures(ctx context.Context, tournamentID int64, opts GenerateOptions) (*Report, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}
	start := time.Now()

	var report *Report
	err := s.store.WithTournamentLock(ctx, tournamentID, func(tx *sqlx.Tx) error {
		t, err := s.tournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		report, err = s.generate(ctx, tx, t, opts)
		return err
	})
	s.observe(start, report, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("fixtures generated",
		slog.Int64("tournament_id", tournamentID),
		slog.String("run_id", report.RunID.String()),
		slog.String("mode", string(report.Mode)),
		slog.Bool("reset", opts.Reset),
		slog.Int("created", report.CreatedCount),
		slog.Int("renumbered", report.RenumberedCount),
		slog.Bool("blocked", report.Blocked),
	)
	return report, nil
}

// generate runs the pipeline inside tx. The caller holds the tournament lock.
func (s *FixtureService) generate(ctx context.Context, tx *sqlx.Tx, t *fixture.Tournament, opts GenerateOptions) (*Report, error) {
	report := newReport(t)

	teamIDs, err := s.store.AcceptedTeamIDs(ctx, tx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted teams: %w", err)
	}
	seats, err := schedule.Seats(teamIDs)
	if err != nil {
		return nil, err
	}
	rounds := schedule.RoundCount(seats)

	existing, err := s.store.ListMatchesByID(ctx, tx, t.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	state := schedule.NewState(existing, rounds)

	report.TeamCount = len(teamIDs)
	report.ExpectedTotal = t.Mode.ExpectedMatches(len(teamIDs))

	// A second leg may not be added next to a calendar the organizer has
	// already started to fill in.
	if !opts.Reset && t.Mode == fixture.DoubleRoundRobin && state.AnyLocked() {
		report.Blocked = true
		return report, nil
	}

	if opts.Reset {
		if _, err := s.store.DeleteMatches(ctx, tx, t.ID, 1); err != nil {
			return nil, fmt.Errorf("failed to delete matches: %w", err)
		}
		state = schedule.NewState(nil, rounds)
	}

	if len(teamIDs) >= 2 {
		if opts.Reset {
			drawn := append([]int64(nil), teamIDs...)
			s.shuffle.Shuffle(len(drawn), func(i, j int) { drawn[i], drawn[j] = drawn[j], drawn[i] })
			if seats, err = schedule.Seats(drawn); err != nil {
				return nil, err
			}
		}
		if err := s.applyLegs(ctx, tx, t, seats, opts, state, report); err != nil {
			return nil, err
		}
	}

	if err := s.summarize(ctx, tx, t, report); err != nil {
		return nil, err
	}
	if report.DuplicateCount > 0 {
		return nil, fmt.Errorf("%w: tournament %d has %d pairs above %d meetings",
			ErrInvariantViolation, t.ID, report.DuplicateCount, t.Mode.MaxMeetings())
	}
	return report, nil
}

func (s *FixtureService) applyLegs(ctx context.Context, tx *sqlx.Tx, t *fixture.Tournament, seats []int64, opts GenerateOptions, state schedule.State, report *Report) error {
	plan := schedule.Legs(schedule.LegRequest{
		TournamentID: t.ID,
		Seats:        seats,
		Mode:         t.Mode,
		Reset:        opts.Reset,
		State:        state,
	}, s.shuffle)

	if plan.Fallbacks > 0 {
		s.logger.Warn("second leg oriented by round parity, first-leg match missing",
			slog.Int64("tournament_id", t.ID),
			slog.String("run_id", report.RunID.String()),
			slog.Int("pairs", plan.Fallbacks),
		)
	}

	created := make(map[int]int)
	for _, c := range plan.Candidates {
		inserted, err := s.store.InsertMatchIfAbsent(ctx, tx, c, t.Mode)
		if err != nil {
			return err
		}
		if inserted {
			report.CreatedCount++
			created[c.RoundNumber]++
		}
	}
	report.addCreatedRounds(created)

	if t.Mode != fixture.DoubleRoundRobin {
		return nil
	}

	rounds := schedule.RoundCount(seats)
	secondLeg, err := s.store.ListMatchesByID(ctx, tx, t.ID, rounds+1)
	if err != nil {
		return fmt.Errorf("failed to list second leg: %w", err)
	}
	for _, mv := range schedule.Compact(seats, secondLeg) {
		if err := s.store.UpdateMatchRound(ctx, tx, mv.MatchID, mv.To); err != nil {
			return fmt.Errorf("failed to move match %d to round %d: %w", mv.MatchID, mv.To, err)
		}
		report.RenumberedCount++
	}
	return nil
}

func (s *FixtureService) summarize(ctx context.Context, q sqlx.QueryerContext, t *fixture.Tournament, report *Report) error {
	pairs, err := s.store.PairCounts(ctx, q, t.ID)
	if err != nil {
		return fmt.Errorf("failed to count pairs: %w", err)
	}
	report.UniquePairs = len(pairs)
	for _, p := range pairs {
		if p.Matches > t.Mode.MaxMeetings() {
			report.DuplicateCount++
		}
	}

	rounds, err := s.store.RoundCounts(ctx, q, t.ID)
	if err != nil {
		return fmt.Errorf("failed to count rounds: %w", err)
	}
	if len(rounds) > 0 {
		report.Rounds = rounds
	}
	return nil
}

// SetMode switches between single and double round-robin and regenerates the
// calendar without a reset, all under the tournament lock. Turning the second
// leg on is blocked once any match is scheduled or scored. Turning it off keeps
// each pair's earliest match and is blocked when any other one is locked. A
// blocked call changes nothing.
func (s *FixtureService) SetMode(ctx context.Context, tournamentID int64, mode fixture.Mode) (*ModeChange, error) {
	if _, err := fixture.ParseMode(string(mode)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, err)
	}
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}
	start := time.Now()

	var change *ModeChange
	err := s.store.WithTournamentLock(ctx, tournamentID, func(tx *sqlx.Tx) error {
		t, err := s.tournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		change = &ModeChange{TournamentID: t.ID, From: t.Mode, To: mode}
		if t.Mode == mode {
			return nil
		}

		existing, err := s.store.ListMatchesByID(ctx, tx, t.ID, 1)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}

		switch mode {
		case fixture.DoubleRoundRobin:
			for i := range existing {
				if existing[i].Locked() {
					change.Blocked = true
					return nil
				}
			}
		case fixture.SingleRoundRobin:
			// Each pair keeps its earliest match, wherever the first-leg
			// boundary falls for the current team count.
			surplus := schedule.Surplus(existing, fixture.SingleRoundRobin.MaxMeetings())
			matchIDs := make([]int64, 0, len(surplus))
			for i := range surplus {
				if surplus[i].Locked() {
					change.Blocked = true
					return nil
				}
				matchIDs = append(matchIDs, surplus[i].ID)
			}
			if change.DeletedCount, err = s.store.DeleteMatchesByID(ctx, tx, t.ID, matchIDs); err != nil {
				return fmt.Errorf("failed to delete second leg: %w", err)
			}
		}

		if err := s.store.SetTournamentMode(ctx, tx, t.ID, mode); err != nil {
			return err
		}
		t.Mode = mode
		change.Changed = true

		change.Report, err = s.generate(ctx, tx, t, GenerateOptions{})
		return err
	})
	if change != nil {
		s.observe(start, change.Report, err)
	}
	if err != nil {
		return nil, err
	}
	if change.Blocked {
		metrics.GenerationRuns.WithLabelValues(metrics.OutcomeBlocked).Inc()
	}

	s.logger.Info("tournament mode change",
		slog.Int64("tournament_id", tournamentID),
		slog.String("from", string(change.From)),
		slog.String("to", string(change.To)),
		slog.Bool("changed", change.Changed),
		slog.Bool("blocked", change.Blocked),
		slog.Int64("deleted", change.DeletedCount),
	)
	return change, nil
}

// Reseed redraws the whole calendar as a double round-robin: the tournament
// is switched to single mode, regenerated from scratch and then given its
// second leg, all in one transaction. Locked matches are deleted too.
func (s *FixtureService) Reseed(ctx context.Context, tournamentID int64) (*Report, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTournament, tournamentID)
	}
	start := time.Now()

	var report *Report
	err := s.store.WithTournamentLock(ctx, tournamentID, func(tx *sqlx.Tx) error {
		t, err := s.tournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		t.Mode = fixture.SingleRoundRobin
		if err := s.store.SetTournamentMode(ctx, tx, t.ID, t.Mode); err != nil {
			return err
		}
		first, err := s.generate(ctx, tx, t, GenerateOptions{Reset: true})
		if err != nil {
			return err
		}

		t.Mode = fixture.DoubleRoundRobin
		if err := s.store.SetTournamentMode(ctx, tx, t.ID, t.Mode); err != nil {
			return err
		}
		report, err = s.generate(ctx, tx, t, GenerateOptions{})
		if err != nil {
			return err
		}
		report.CreatedCount += first.CreatedCount
		report.CreatedRounds = mergeRounds(first.CreatedRounds, report.CreatedRounds)
		return nil
	})
	s.observe(start, report, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament reseeded",
		slog.Int64("tournament_id", tournamentID),
		slog.String("run_id", report.RunID.String()),
		slog.Int("created", report.CreatedCount),
		slog.Int("renumbered", report.RenumberedCount),
	)
	return report, nil
}

// Diagnose summarizes the stored calendar. It takes no lock.
func (s *FixtureService) Diagnose(ctx context.Context, tournamentID int64) (*Diagnostics, error) {
	database := s.store.DB()
	t, err := s.tournament(ctx, database, tournamentID)
	if err != nil {
		return nil, err
	}

	d := &Diagnostics{TournamentID: t.ID, Mode: t.Mode, Overfull: []fixture.PairCount{}}
	var pairs []fixture.PairCount

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teamIDs, err := s.store.AcceptedTeamIDs(gCtx, database, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list accepted teams: %w", err)
		}
		d.TeamCount = len(teamIDs)
		d.ExpectedTotal = t.Mode.ExpectedMatches(len(teamIDs))
		return nil
	})
	g.Go(func() error {
		var err error
		d.Rounds, err = s.store.RoundCounts(gCtx, database, t.ID)
		return err
	})
	g.Go(func() error {
		var err error
		pairs, err = s.store.PairCounts(gCtx, database, t.ID)
		return err
	})
	g.Go(func() error {
		var err error
		d.LockedCount, err = s.store.CountLocked(gCtx, database, t.ID, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range d.Rounds {
		d.Total += r.MatchCount
	}
	for _, p := range pairs {
		switch {
		case p.Matches == 1:
			d.PairsWithOne++
		case p.Matches == 2:
			d.PairsWithTwo++
		default:
			d.PairsOverTwo++
		}
		if p.Matches > t.Mode.MaxMeetings() {
			d.Overfull = append(d.Overfull, p)
		}
	}
	return d, nil
}

// ListFixtures returns the calendar ordered by round.
func (s *FixtureService) ListFixtures(ctx context.Context, tournamentID int64) ([]fixture.Match, error) {
	if _, err := s.tournament(ctx, s.store.DB(), tournamentID); err != nil {
		return nil, err
	}
	return s.store.ListMatches(ctx, s.store.DB(), tournamentID, 1)
}

func (s *FixtureService) tournament(ctx context.Context, q sqlx.QueryerContext, id int64) (*fixture.Tournament, error) {
	t, err := s.store.GetTournament(ctx, q, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrTournamentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *FixtureService) observe(start time.Time, report *Report, err error) {
	metrics.GenerationSeconds.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.GenerationRuns.WithLabelValues(metrics.OutcomeError).Inc()
		if errors.Is(err, ErrInvariantViolation) {
			metrics.InvariantViolations.Inc()
			s.logger.Error("fixture generation left duplicate pairs", slog.Any("error", err))
		}
	case report == nil:
	case report.Blocked:
		metrics.GenerationRuns.WithLabelValues(metrics.OutcomeBlocked).Inc()
	default:
		metrics.GenerationRuns.WithLabelValues(metrics.OutcomeGenerated).Inc()
		metrics.MatchesCreated.Add(float64(report.CreatedCount))
		metrics.MatchesRenumbered.Add(float64(report.RenumberedCount))
	}
}
