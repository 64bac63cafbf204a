package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/veldtlabs/cadence/logger"
)

// Ticker drives the scheduler: it wakes at the configured interval,
// fires due jobs through Scheduler.Tick and logs countdown status.
// Execution is synchronous inside the tick, one job at a time.
type Ticker struct {
	scheduler       *Scheduler
	interval        time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *zap.SugaredLogger
	sweep           func(now time.Time)
	mu              sync.Mutex
	lastTickAt      time.Time
	ticksSinceStart int64
	lastStatus      string // last logged countdown line, to suppress repeats
}

// TickerConfig contains configuration for the control loop
type TickerConfig struct {
	Interval time.Duration // How often to check for due jobs (default: 1 second)
}

// DefaultTickerConfig returns sensible defaults
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		Interval: 1 * time.Second,
	}
}

// NewTicker creates a new control loop ticker
func NewTicker(scheduler *Scheduler, cfg TickerConfig, log *zap.SugaredLogger) *Ticker {
	return NewTickerWithContext(context.Background(), scheduler, cfg, log)
}

// NewTickerWithContext creates a ticker with a parent context
func NewTickerWithContext(ctx context.Context, scheduler *Scheduler, cfg TickerConfig, log *zap.SugaredLogger) *Ticker {
	tickerCtx, cancel := context.WithCancel(ctx)

	return &Ticker{
		scheduler: scheduler,
		interval:  cfg.Interval,
		ctx:       tickerCtx,
		cancel:    cancel,
		log:       log,
	}
}

// SetSweepFunc installs a hook invoked after every tick. The retention
// sweeper gates itself to once per day, so calling it each tick is cheap.
func (t *Ticker) SetSweepFunc(fn func(now time.Time)) {
	t.sweep = fn
}

// Start begins the ticker loop
func (t *Ticker) Start() {
	t.wg.Add(1)
	go t.run()
	t.log.Infow("Cadence ticker started", logger.FieldInterval, t.interval)
}

// Stop gracefully stops the ticker, waiting for any in-flight tick so the
// final schedule write lands before the database is closed.
func (t *Ticker) Stop() {
	t.cancel()
	t.wg.Wait()
	t.log.Infow("Cadence ticker stopped")
}

// run is the main ticker loop
func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case tickTime := <-ticker.C:
			t.mu.Lock()
			t.lastTickAt = tickTime
			t.ticksSinceStart++
			tick := t.ticksSinceStart
			t.mu.Unlock()

			t.logNextJobInfo(tickTime)

			if err := t.scheduler.Tick(tickTime); err != nil {
				// Don't spam logs - log errors at warn level
				t.log.Warnw("Tick error", logger.FieldError, err, logger.FieldTick, tick)
			}

			if t.sweep != nil {
				t.sweep(tickTime)
			}
		}
	}
}

// logNextJobInfo logs a countdown to the next scheduled job, with memory
// stats. Repeats of the same line are suppressed so an idle daemon stays
// quiet between transitions.
func (t *Ticker) logNextJobInfo(now time.Time) {
	nextJob, err := t.scheduler.NextDue()
	if err != nil {
		t.log.Warnw("Failed to get next scheduled job", logger.FieldError, err)
		return
	}

	var msg string
	if nextJob == nil || nextJob.NextRunAt == nil {
		msg = "Cadence - no scheduled runs"
	} else {
		timeUntil := nextJob.NextRunAt.Sub(now)
		if timeUntil < 0 {
			timeUntil = 0
		}
		msg = fmt.Sprintf("Cadence - next run [job:%s] in %s", nextJob.Name, timeUntil.Round(time.Second))
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		msg += fmt.Sprintf(" │ Mem: %.1f/%.1fGB (%.0f%%)",
			float64(vm.Used)/1e9, float64(vm.Total)/1e9, vm.UsedPercent)
	}

	t.mu.Lock()
	changed := msg != t.lastStatus
	t.lastStatus = msg
	t.mu.Unlock()

	if changed {
		t.log.Infow(msg)
	}
}

// GetStats returns ticker statistics
func (t *Ticker) GetStats() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return map[string]interface{}{
		"last_tick_at":      t.lastTickAt,
		"ticks_since_start": t.ticksSinceStart,
		"interval":          t.interval,
	}
}
