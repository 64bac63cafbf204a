package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/schedule"
)

// ShowCmd shows a job and its recent runs
var ShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a job and its recent runs",
	Long: `Display a job's schedule and its most recent run history.

Runs can be filtered by status (running, success, error).

Examples:
  cadence show backup
  cadence show backup --limit 50
  cadence show backup --status error`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")
		return runShow(args[0], limit, status)
	},
}

func init() {
	ShowCmd.Flags().Int("limit", 20, "Maximum number of runs to display")
	ShowCmd.Flags().String("status", "", "Filter runs by status (running, success, error)")
}

func runShow(name string, limit int, statusFilter string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	runs := schedule.NewRunStore(database)

	job, err := store.GetJobByName(name)
	if err != nil {
		return err
	}

	fmt.Printf("Job: %s\n", job.Name)
	fmt.Printf("  ID:        %s\n", job.ID)
	fmt.Printf("  Script:    %s\n", job.ScriptPath)
	fmt.Printf("  Start:     %s\n", job.StartTime)
	fmt.Printf("  Every:     %s\n", job.RepeatInterval)
	fmt.Printf("  Retention: %dd\n", job.LogRetentionDays)
	if job.LogPath != "" {
		fmt.Printf("  Logs:      %s\n", job.LogPath)
	}
	if job.Venv != "" {
		fmt.Printf("  Venv:      %s\n", job.Venv)
	}
	if job.PythonExec != "" {
		fmt.Printf("  Python:    %s\n", job.PythonExec)
	}
	if job.WorkingDir != "" {
		fmt.Printf("  Workdir:   %s\n", job.WorkingDir)
	}
	if job.NextRunAt != nil {
		fmt.Printf("  Next run:  %s\n", job.NextRunAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\n")

	history, total, err := runs.ListRuns(job.ID, limit, 0, statusFilter)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		pterm.Info.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-22s %-9s %-10s %-6s %s\n", "STARTED", "STATUS", "DURATION", "EXIT", "LOG FILE")
	fmt.Printf("%-22s %-9s %-10s %-6s %s\n", "-------", "------", "--------", "----", "--------")

	for _, run := range history {
		exit := "-"
		if run.ExitCode != nil {
			exit = fmt.Sprintf("%d", *run.ExitCode)
		}
		logFile := "-"
		if run.LogFile != nil {
			logFile = *run.LogFile
		}

		fmt.Printf("%-22s %-9s %-10s %-6s %s\n",
			run.StartedAt,
			run.Status,
			formatDuration(run.DurationMs),
			exit,
			logFile)

		if run.ErrorMessage != nil {
			fmt.Printf("    %s\n", pterm.Red(*run.ErrorMessage))
		}
	}

	fmt.Printf("\nShowing %d of %d run(s)\n", len(history), total)
	return nil
}
