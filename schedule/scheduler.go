package schedule

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/veldtlabs/cadence/errors"
	"github.com/veldtlabs/cadence/logger"
)

// Executor runs a job's script once. Implementations record the run;
// the scheduler only cares whether launch-and-wait succeeded.
type Executor interface {
	Execute(job *Job, now time.Time) error
}

// Scheduler owns schedule arithmetic: first-run computation, due detection
// and phase-preserving advancement. All times flow through explicit `now`
// parameters so tests can drive the clock.
type Scheduler struct {
	store    *Store
	executor Executor
	log      *zap.SugaredLogger
	logDir   string
	now      func() time.Time
}

// NewScheduler creates a scheduler over the given store and executor
func NewScheduler(store *Store, executor Executor, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		store:    store,
		executor: executor,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the wall clock, for tests
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SetLogDir sets the root under which per-job log directories are assigned
func (s *Scheduler) SetLogDir(dir string) {
	s.logDir = dir
}

// Store returns the underlying job store
func (s *Scheduler) Store() *Store {
	return s.store
}

// nextAligned returns the earliest instant of the form anchor + k*interval
// (k >= 0) that is strictly after now. Computed arithmetically so a
// 1-second job that was down for a month doesn't spin.
func nextAligned(anchor time.Time, interval time.Duration, now time.Time) time.Time {
	if anchor.After(now) {
		return anchor
	}
	steps := now.Sub(anchor)/interval + 1
	return anchor.Add(steps * interval)
}

// FirstRun computes a job's initial run time: the earliest instant aligned
// to today's start-time anchor that is strictly after now.
func FirstRun(clock ClockTime, interval Interval, now time.Time) time.Time {
	return nextAligned(clock.OnDay(now), interval.Duration(), now)
}

// ScheduleJob computes the job's first run time and persists it.
// The job's StartTime and RepeatInterval must already be canonical.
func (s *Scheduler) ScheduleJob(job *Job) error {
	clock, err := job.StartClock()
	if err != nil {
		return err
	}
	interval, err := job.Interval()
	if err != nil {
		return err
	}

	now := s.now()
	firstRun := FirstRun(clock, interval, now)
	job.NextRunAt = &firstRun
	job.Active = true

	// Log location is assigned once at first schedule and stable after
	if job.LogPath == "" && s.logDir != "" {
		job.LogPath = filepath.Join(s.logDir, job.Name)
	}

	if err := s.store.CreateJob(job); err != nil {
		return err
	}

	s.log.Infow("Job scheduled",
		logger.FieldJobName, job.Name,
		logger.FieldJobID, job.ID,
		logger.FieldInterval, job.RepeatInterval,
		logger.FieldNextRun, firstRun.Format(time.RFC3339))

	return nil
}

// Reschedule recomputes a modified job's next run time and persists the
// changed fields. Used after `modify` changes the start time or interval.
func (s *Scheduler) Reschedule(job *Job) error {
	clock, err := job.StartClock()
	if err != nil {
		return err
	}
	interval, err := job.Interval()
	if err != nil {
		return err
	}

	now := s.now()
	nextRun := FirstRun(clock, interval, now)
	job.NextRunAt = &nextRun

	if err := s.store.UpdateJob(job); err != nil {
		return err
	}

	s.log.Infow("Job rescheduled",
		logger.FieldJobName, job.Name,
		logger.FieldJobID, job.ID,
		logger.FieldInterval, job.RepeatInterval,
		logger.FieldNextRun, nextRun.Format(time.RFC3339))

	return nil
}

// NextDue returns the soonest scheduled job, or nil when nothing is scheduled
func (s *Scheduler) NextDue() (*Job, error) {
	return s.store.GetNextScheduledJob()
}

// Tick fires every due job exactly once, then advances its schedule past
// now by whole interval multiples. Missed occurrences are never backfilled:
// a job that was due five times while the process was busy still runs once.
func (s *Scheduler) Tick(now time.Time) error {
	jobs, err := s.store.ListJobsDue(now)
	if err != nil {
		return errors.Wrap(err, "failed to list due jobs")
	}

	for _, job := range jobs {
		if err := s.executor.Execute(job, now); err != nil {
			// A failed run is recorded by the executor; the schedule
			// must advance regardless so the job keeps its cadence.
			s.log.Errorw("Job execution failed",
				logger.FieldJobName, job.Name,
				logger.FieldJobID, job.ID,
				logger.FieldScript, job.ScriptPath,
				logger.FieldError, err)
		}

		if err := s.advance(job, now); err != nil {
			s.log.Errorw("Failed to advance job schedule",
				logger.FieldJobName, job.Name,
				logger.FieldJobID, job.ID,
				logger.FieldError, err)
		}
	}

	return nil
}

// advance moves a fired job's next_run_at past now, preserving phase
func (s *Scheduler) advance(job *Job, now time.Time) error {
	interval, err := job.Interval()
	if err != nil {
		return err
	}
	if job.NextRunAt == nil {
		return errors.Newf("job %s has no schedule to advance", job.ID)
	}

	nextRun := nextAligned(*job.NextRunAt, interval.Duration(), now)
	if err := s.store.UpdateJobSchedule(job.ID, nextRun); err != nil {
		return err
	}
	job.NextRunAt = &nextRun

	s.log.Debugw("Job schedule advanced",
		logger.FieldJobName, job.Name,
		logger.FieldNextRun, nextRun.Format(time.RFC3339))

	return nil
}

// RecoverFromStore fast-forwards stale schedules after a restart without
// executing anything. Occurrences missed while the process was down are
// skipped; each job's phase anchor is preserved.
func (s *Scheduler) RecoverFromStore(now time.Time) error {
	jobs, err := s.store.ListJobs(false)
	if err != nil {
		return errors.Wrap(err, "failed to list jobs for recovery")
	}

	recovered := 0
	for _, job := range jobs {
		interval, err := job.Interval()
		if err != nil {
			s.log.Warnw("Skipping job with unparseable interval",
				logger.FieldJobName, job.Name,
				logger.FieldInterval, job.RepeatInterval,
				logger.FieldError, err)
			continue
		}

		var nextRun time.Time
		if job.NextRunAt == nil {
			// Never scheduled (shouldn't happen for active jobs); compute fresh
			clock, err := job.StartClock()
			if err != nil {
				s.log.Warnw("Skipping job with unparseable start time",
					logger.FieldJobName, job.Name,
					logger.FieldError, err)
				continue
			}
			nextRun = FirstRun(clock, interval, now)
		} else if job.NextRunAt.After(now) {
			continue // Schedule is still in the future
		} else {
			nextRun = nextAligned(*job.NextRunAt, interval.Duration(), now)
		}

		if err := s.store.UpdateJobSchedule(job.ID, nextRun); err != nil {
			// One job failing to persist must not block the rest of the
			// schedule from recovering.
			s.log.Warnw("Skipping job whose schedule could not be persisted",
				logger.FieldJobName, job.Name,
				logger.FieldJobID, job.ID,
				logger.FieldError, err)
			continue
		}
		recovered++

		s.log.Infow("Job schedule recovered",
			logger.FieldJobName, job.Name,
			logger.FieldNextRun, nextRun.Format(time.RFC3339))
	}

	if recovered > 0 {
		s.log.Infow("Schedule recovery complete", "jobs_recovered", recovered)
	}

	return nil
}
