package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/config"
	"github.com/veldtlabs/cadence/logger"
	"github.com/veldtlabs/cadence/retention"
	"github.com/veldtlabs/cadence/schedule"
)

// RunCmd runs the scheduler daemon in the foreground
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler daemon",
	Long: `Run the Cadence daemon in foreground mode.

The daemon will:
- Fast-forward stale schedules from the database without executing them
- Fire due jobs once per tick and advance their schedules phase-preservingly
- Sweep old log files at most once per day
- Run until interrupted (Ctrl+C), waiting for the in-flight tick on shutdown

Example:
  cadence run
  cadence run -v    # with per-run log output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func runDaemon() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	runs := schedule.NewRunStore(database)
	sched := newScheduler(database, cfg)

	// The store is the source of truth: recompute stale schedules before
	// the first tick so a long downtime never causes a burst of runs.
	if err := sched.RecoverFromStore(time.Now()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tickerCfg := schedule.DefaultTickerConfig()
	if cfg.Scheduler.TickIntervalSeconds > 0 {
		tickerCfg.Interval = time.Duration(cfg.Scheduler.TickIntervalSeconds) * time.Second
	}
	ticker := schedule.NewTickerWithContext(ctx, sched, tickerCfg, logger.Logger)

	// The sweeper gates itself to once per 24h; the reference is swapped
	// atomically when the config watcher delivers new retention settings.
	var sweeper atomic.Pointer[retention.Sweeper]
	sweeper.Store(retention.NewSweeper(store, runs, cfg.GetLogDir(), cfg.Logs.RetentionDays, logger.Logger))
	ticker.SetSweepFunc(func(now time.Time) {
		if _, err := sweeper.Load().Sweep(now, false); err != nil {
			logger.Warnw("Retention sweep failed", "error", err)
		}
	})

	watcher := watchConfig(&sweeper, store, runs)
	if watcher != nil {
		defer watcher.Stop()
	}

	ticker.Start()

	fmt.Printf("Cadence daemon started\n")
	fmt.Printf("  Database:      %s\n", cfg.GetDatabasePath())
	fmt.Printf("  Log directory: %s\n", cfg.GetLogDir())
	fmt.Printf("  Tick interval: %v\n", tickerCfg.Interval)
	fmt.Printf("\nPress Ctrl+C for graceful shutdown\n\n")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Printf("\nShutting down...\n")

	// Stop waits for the in-flight tick so the final schedule write lands
	// before the deferred database close.
	ticker.Stop()

	fmt.Printf("Cadence daemon stopped\n")
	return nil
}

// watchConfig watches the project config file, if one exists, and swaps in
// a sweeper with the new retention settings on change. Returns nil when
// there is nothing to watch.
func watchConfig(sweeper *atomic.Pointer[retention.Sweeper], store *schedule.Store, runs *schedule.RunStore) *config.ConfigWatcher {
	configPath := config.ProjectConfigPath()
	if configPath == "" {
		return nil
	}

	watcher, err := config.NewConfigWatcher(configPath)
	if err != nil {
		logger.Warnw("Config watching disabled", "path", configPath, "error", err)
		return nil
	}

	watcher.OnReload(func(newCfg *config.Config) error {
		sweeper.Store(retention.NewSweeper(store, runs, newCfg.GetLogDir(), newCfg.Logs.RetentionDays, logger.Logger))
		logger.Infow("Configuration reloaded",
			"log_dir", newCfg.GetLogDir(),
			"retention_days", newCfg.Logs.RetentionDays)
		return nil
	})

	watcher.Start()
	logger.Debugw("Watching config file", "path", configPath)
	return watcher
}
