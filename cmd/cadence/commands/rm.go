package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/schedule"
)

// RmCmd deactivates a job
var RmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Deactivate a job",
	Long: `Deactivate a job so it no longer runs.

This is a soft delete: the job row and its run history stay in the
database and remain visible via 'cadence ls --all' and 'cadence show'.

Example:
  cadence rm backup`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRm(args[0])
	},
}

func runRm(name string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)

	job, err := store.GetJobByName(name)
	if err != nil {
		return err
	}

	if err := store.DeactivateJob(job.ID); err != nil {
		return err
	}

	pterm.Success.Printf("Job %s deactivated\n", job.Name)
	pterm.Info.Println("Run history is kept; see 'cadence show' or 'cadence ls --all'")
	return nil
}
