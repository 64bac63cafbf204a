package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/config"
	"github.com/veldtlabs/cadence/logger"
	"github.com/veldtlabs/cadence/retention"
	"github.com/veldtlabs/cadence/schedule"
)

// SweepCmd forces a retention sweep
var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep old log files",
	Long: `Delete log files and run records past their retention window.

The daemon sweeps automatically at most once per day; this command runs
the same sweep on demand. Without --force the daily gate still applies.

Retention resolves per directory: a .retention.toml override wins, then
the owning job's retention, then the global default.

Examples:
  cadence sweep            # respects the daily gate
  cadence sweep --force    # sweeps unconditionally`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return runSweep(force)
	},
}

func init() {
	SweepCmd.Flags().BoolP("force", "f", false, "Bypass the once-per-day gate")
}

func runSweep(force bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	runs := schedule.NewRunStore(database)

	sweeper := retention.NewSweeper(store, runs, cfg.GetLogDir(), cfg.Logs.RetentionDays, logger.Logger)
	res, err := sweeper.Sweep(time.Now(), force)
	if err != nil {
		return err
	}

	if res.Skipped {
		pterm.Info.Println("Sweep skipped: already swept within the last 24 hours (use --force)")
		return nil
	}

	pterm.Success.Printf("Sweep complete: %d log file(s) and %d run record(s) deleted\n",
		res.FilesDeleted, res.RunsDeleted)
	return nil
}
