package commands

import (
	"database/sql"

	"github.com/veldtlabs/cadence/config"
	"github.com/veldtlabs/cadence/db"
	"github.com/veldtlabs/cadence/errors"
	"github.com/veldtlabs/cadence/executor"
	"github.com/veldtlabs/cadence/logger"
	"github.com/veldtlabs/cadence/schedule"
)

// openDatabase opens and migrates the Cadence database. If dbPath is empty
// the configured path is used.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		dbPath = path
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	return database, nil
}

// newScheduler wires a scheduler with the script executor over an open
// database, using the given application config.
func newScheduler(database *sql.DB, cfg *config.Config) *schedule.Scheduler {
	store := schedule.NewStore(database)
	runs := schedule.NewRunStore(database)

	exec := executor.New(runs, executor.Config{
		LogDir:      cfg.GetLogDir(),
		Interpreter: cfg.Scheduler.Interpreter,
		VenvDir:     cfg.Scheduler.VenvDir,
	}, logger.Logger)

	sched := schedule.NewScheduler(store, exec, logger.Logger)
	sched.SetLogDir(cfg.GetLogDir())
	return sched
}
