package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/config"
	"github.com/veldtlabs/cadence/executor"
	"github.com/veldtlabs/cadence/schedule"
)

// ModifyCmd changes an existing job's schedule
var ModifyCmd = &cobra.Command{
	Use:   "modify <name>",
	Short: "Change an existing job's schedule",
	Long: `Change an active job's script, start time, interval or retention.

Only the flags given are changed; the next run time is recomputed from
the updated schedule. The job's log location never changes.

Examples:
  cadence modify backup --every 12h
  cadence modify backup --start 03:00:00 --retention 7
  cadence modify backup --venv /opt/backup/venv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, _ := cmd.Flags().GetString("script")
		start, _ := cmd.Flags().GetString("start")
		every, _ := cmd.Flags().GetString("every")
		retention, _ := cmd.Flags().GetInt("retention")
		pythonExec, _ := cmd.Flags().GetString("python-exec")
		venv, _ := cmd.Flags().GetString("venv")
		workingDir, _ := cmd.Flags().GetString("working-dir")
		return runModify(args[0], script, start, every, retention, pythonExec, venv, workingDir)
	},
}

func init() {
	ModifyCmd.Flags().String("script", "", "New script path")
	ModifyCmd.Flags().String("start", "", "New daily phase anchor, HH:MM:SS")
	ModifyCmd.Flags().String("every", "", "New repeat interval, e.g. 6h, 30m")
	ModifyCmd.Flags().Int("retention", 0, "New log retention in days")
	ModifyCmd.Flags().String("python-exec", "", "New per-job interpreter")
	ModifyCmd.Flags().String("venv", "", "New per-job virtualenv root")
	ModifyCmd.Flags().String("working-dir", "", "New working directory for the script")
}

func runModify(name, script, start, every string, retention int, pythonExec, venv, workingDir string) error {
	if script == "" && start == "" && every == "" && retention <= 0 &&
		pythonExec == "" && venv == "" && workingDir == "" {
		return fmt.Errorf("nothing to modify: give at least one of --script, --start, --every, --retention, --python-exec, --venv, --working-dir")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	sched := newScheduler(database, cfg)

	job, err := sched.Store().GetJobByName(name)
	if err != nil {
		return err
	}

	if start != "" {
		clock, err := schedule.ParseStartTime(start)
		if err != nil {
			return err
		}
		job.StartTime = clock.String()
	}
	if every != "" {
		interval, err := schedule.ParseInterval(every)
		if err != nil {
			return err
		}
		job.RepeatInterval = interval.String()
	}
	if script != "" {
		if err := executor.ValidateScriptPath(script); err != nil {
			return err
		}
		job.ScriptPath = script
	}
	if retention > 0 {
		job.LogRetentionDays = retention
	}
	if pythonExec != "" {
		job.PythonExec = pythonExec
	}
	if venv != "" {
		job.Venv = venv
	}
	if workingDir != "" {
		job.WorkingDir = workingDir
	}

	if err := sched.Reschedule(job); err != nil {
		return err
	}

	pterm.Success.Printf("Job %s updated\n", job.Name)
	pterm.Info.Printf("Next run: %s\n", job.NextRunAt.Local().Format(time.RFC3339))
	return nil
}
