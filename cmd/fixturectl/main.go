// Command fixturectl runs fixture generation and calendar checks from the
// command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/AdamBeresnev/op-fixtures/internal/config"
	"github.com/AdamBeresnev/op-fixtures/internal/db"
	"github.com/AdamBeresnev/op-fixtures/internal/service"
	"github.com/AdamBeresnev/op-fixtures/internal/store"
	"github.com/jmoiron/sqlx"
)

const usage = `usage: fixturectl <command> [flags]

commands:
  generate   -tournament N [-reset]   generate fixtures for the tournament's mode
  second-leg -tournament N            add the missing second leg without a reset
  reseed     -tournament N            redraw the calendar as a double round-robin
  diagnose   -tournament N            print calendar statistics
  migrate                             apply database migrations
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("fixturectl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}
	command, args := args[0], args[1:]

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	tournamentID := fs.Int64("tournament", 0, "tournament id")
	reset := fs.Bool("reset", false, "delete every match and draw a new calendar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	database, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer database.Close()

	if command == "migrate" {
		if err := db.RunMigrations(database); err != nil {
			return err
		}
		logger.Info("migrations applied", slog.String("driver", cfg.DBDriver))
		return nil
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			return err
		}
	}
	if *tournamentID <= 0 {
		return fmt.Errorf("%s: -tournament is required", command)
	}

	out, err := dispatch(ctx, newService(database, logger), command, *tournamentID, *reset)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newService(database *sqlx.DB, logger *slog.Logger) *service.FixtureService {
	return service.NewFixtureService(store.NewFixtureStore(database), logger)
}

func dispatch(ctx context.Context, svc *service.FixtureService, command string, tournamentID int64, reset bool) (any, error) {
	switch command {
	case "generate":
		return svc.GenerateFixtures(ctx, tournamentID, service.GenerateOptions{Reset: reset})
	case "second-leg":
		return svc.GenerateFixtures(ctx, tournamentID, service.GenerateOptions{})
	case "reseed":
		return svc.Reseed(ctx, tournamentID)
	case "diagnose":
		return svc.Diagnose(ctx, tournamentID)
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}
