package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/cmd/cadence/commands"
	"github.com/veldtlabs/cadence/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence - persistent script scheduler",
	Long: `Cadence - persistent script scheduler.

Cadence runs external scripts on recurring schedules (absolute start time
plus fixed repeat interval), records every run in SQLite and survives
restarts by fast-forwarding missed schedules without backfilling.

Available commands:
  add     - Schedule a new job
  modify  - Change an existing job's schedule
  ls      - List jobs
  show    - Show a job and its recent runs
  rm      - Deactivate a job (run history is kept)
  run     - Run the scheduler daemon in the foreground
  sweep   - Force a retention sweep of old log files
  config  - Read or write global configuration values
  version - Show version information

Examples:
  cadence add --name backup --script /opt/scripts/backup.py --start 02:00:00 --every 6h
  cadence add --file jobs/backup.json
  cadence run
  cadence show backup`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.AddCmd)
	rootCmd.AddCommand(commands.ModifyCmd)
	rootCmd.AddCommand(commands.LsCmd)
	rootCmd.AddCommand(commands.ShowCmd)
	rootCmd.AddCommand(commands.RmCmd)
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.SweepCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
