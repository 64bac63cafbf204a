// Package retention prunes old log artifacts and run history.
package retention

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/veldtlabs/cadence/errors"
	"github.com/veldtlabs/cadence/logger"
	"github.com/veldtlabs/cadence/schedule"
)

// OverrideFileName is the per-directory retention override. A directory
// containing one keeps its files for the configured number of days
// instead of the global default.
const OverrideFileName = ".retention.toml"

// lastSweepKey stores the previous sweep time in the global config table
const lastSweepKey = "last_sweep_at"

// sweepInterval gates how often a non-forced sweep actually runs
const sweepInterval = 24 * time.Hour

// override is the parsed shape of a .retention.toml file
type override struct {
	Days int `toml:"days"`
}

// Result summarizes one sweep
type Result struct {
	Skipped      bool // gated by the 24h interval
	FilesDeleted int
	RunsDeleted  int
}

// Sweeper deletes log files past their retention period. Age is judged by
// modification time, which for append-per-day artifacts only ever retains
// files longer than strictly required - the safe direction.
type Sweeper struct {
	store         *schedule.Store
	runs          *schedule.RunStore
	logDir        string
	retentionDays int
	log           *zap.SugaredLogger
}

// NewSweeper creates a sweeper with the global retention default
func NewSweeper(store *schedule.Store, runs *schedule.RunStore, logDir string, retentionDays int, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		store:         store,
		runs:          runs,
		logDir:        logDir,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Sweep deletes expired log files and prunes old run records.
//
// Unless forced, a sweep runs at most once per 24 hours; the gate is
// persisted so restarts don't reset it. Deletion is best-effort: a file
// that cannot be removed is logged and skipped.
func (s *Sweeper) Sweep(now time.Time, force bool) (Result, error) {
	var res Result

	if !force {
		lastSweep, err := s.lastSweepAt()
		if err != nil {
			return res, err
		}
		if !lastSweep.IsZero() && now.Sub(lastSweep) < sweepInterval {
			res.Skipped = true
			s.log.Debugw("Sweep skipped",
				"last_sweep_at", lastSweep.Format(time.RFC3339))
			return res, nil
		}
	}

	s.log.Infow("Sweeping old log files [sweep]",
		logger.FieldPath, s.logDir,
		logger.FieldRetentionDays, s.retentionDays)

	deleted, err := s.sweepDir(now)
	if err != nil {
		return res, err
	}
	res.FilesDeleted = deleted

	runsDeleted, err := s.runs.CleanupOldRuns(s.retentionDays, now)
	if err != nil {
		return res, err
	}
	res.RunsDeleted = runsDeleted

	// The gate is stamped only after a full sweep, so a failed attempt
	// is retried on the next tick instead of in 24 hours.
	if err := s.store.SetConfigValue(lastSweepKey, now.UTC().Format(time.RFC3339)); err != nil {
		return res, err
	}

	s.log.Infow("Sweep complete [sweep]",
		logger.FieldDeleted, deleted,
		"runs_deleted", runsDeleted)

	return res, nil
}

// lastSweepAt reads the persisted sweep gate, zero when never swept
func (s *Sweeper) lastSweepAt() (time.Time, error) {
	value, err := s.store.GetConfigValue(lastSweepKey)
	if err != nil || value == "" {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "corrupt %s value %q", lastSweepKey, value)
	}
	return t, nil
}

// sweepDir walks the log tree deleting files older than the effective
// retention for their directory.
func (s *Sweeper) sweepDir(now time.Time) (int, error) {
	if _, err := os.Stat(s.logDir); os.IsNotExist(err) {
		return 0, nil // nothing to sweep yet
	}

	jobDays, err := s.jobRetention()
	if err != nil {
		return 0, err
	}

	// Per-directory retention, resolved lazily
	dirDays := map[string]int{}

	deleted := 0
	err = filepath.WalkDir(s.logDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warnw("Sweep cannot access path", logger.FieldPath, path, logger.FieldError, err)
			return nil
		}
		if d.IsDir() || d.Name() == OverrideFileName {
			return nil
		}

		dir := filepath.Dir(path)
		days, ok := dirDays[dir]
		if !ok {
			days = s.effectiveRetention(dir, jobDays)
			dirDays[dir] = days
		}

		info, err := d.Info()
		if err != nil {
			s.log.Warnw("Sweep cannot stat file", logger.FieldPath, path, logger.FieldError, err)
			return nil
		}

		cutoff := now.AddDate(0, 0, -days)
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			s.log.Warnw("Failed to delete log file", logger.FieldPath, path, logger.FieldError, err)
			return nil
		}

		deleted++
		s.log.Infow("Log file deleted [sweep]",
			logger.FieldPath, path,
			logger.FieldRetentionDays, days)
		return nil
	})

	return deleted, err
}

// jobRetention maps each job's log directory to its retention window.
// Deactivated jobs count too, so their leftover logs still age out on
// the window they were created with.
func (s *Sweeper) jobRetention() (map[string]int, error) {
	jobs, err := s.store.ListJobs(true)
	if err != nil {
		return nil, err
	}

	days := make(map[string]int, len(jobs))
	for _, job := range jobs {
		if job.LogPath != "" && job.LogRetentionDays >= 1 {
			days[filepath.Clean(job.LogPath)] = job.LogRetentionDays
		}
	}
	return days, nil
}

// effectiveRetention resolves a directory's window: a valid
// .retention.toml wins, then the owning job's retention, then the
// global default.
func (s *Sweeper) effectiveRetention(dir string, jobDays map[string]int) int {
	fallback := s.retentionDays
	if days, ok := jobDays[filepath.Clean(dir)]; ok {
		fallback = days
	}

	data, err := os.ReadFile(filepath.Join(dir, OverrideFileName))
	if err != nil {
		return fallback
	}

	var o override
	if err := toml.Unmarshal(data, &o); err != nil || o.Days < 1 {
		s.log.Warnw("Ignoring invalid retention override",
			logger.FieldPath, filepath.Join(dir, OverrideFileName),
			logger.FieldError, err)
		return fallback
	}

	return o.Days
}
