package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/schedule"
)

// LsCmd lists jobs
var LsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List jobs",
	Long: `List scheduled jobs with their next run time.

Deactivated jobs are hidden unless --all is given.

Examples:
  cadence ls
  cadence ls --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return runLs(all)
	},
}

func init() {
	LsCmd.Flags().BoolP("all", "a", false, "Include deactivated jobs")
}

func runLs(includeInactive bool) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	jobs, err := store.ListJobs(includeInactive)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		pterm.Info.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-20s %-10s %-10s %-8s %-20s %s\n", "NAME", "START", "EVERY", "ACTIVE", "NEXT RUN", "SCRIPT")
	fmt.Printf("%-20s %-10s %-10s %-8s %-20s %s\n", "----", "-----", "-----", "------", "--------", "------")

	for _, job := range jobs {
		nextRun := "-"
		if job.NextRunAt != nil {
			nextRun = job.NextRunAt.Local().Format("2006-01-02 15:04:05")
		}

		active := "yes"
		if !job.Active {
			active = "no"
		}

		fmt.Printf("%-20s %-10s %-10s %-8s %-20s %s\n",
			truncate(job.Name, 20),
			job.StartTime,
			job.RepeatInterval,
			active,
			nextRun,
			job.ScriptPath)
	}

	fmt.Printf("\nTotal: %d job(s)\n", len(jobs))
	return nil
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatDuration renders an optional run duration for display
func formatDuration(ms *int) string {
	if ms == nil {
		return "-"
	}
	return (time.Duration(*ms) * time.Millisecond).String()
}
