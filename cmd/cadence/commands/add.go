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

// AddCmd schedules a new job
var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a new job",
	Long: `Schedule a new recurring job.

The job fires at the first start-time-aligned instant strictly after now
and every interval after that. The interval is <n><h|m|s>, e.g. 6h, 30m.

A job can be given inline via flags or loaded from a JSON definition file
with keys {name, script, start_time, repeat_time, log_retention} and
optionally {python_exec, venv, working_dir}.

Examples:
  cadence add --name backup --script /opt/scripts/backup.py --start 02:00:00 --every 6h
  cadence add --name backup --script /opt/scripts/backup.py --start 02:00:00 --every 6h --retention 14
  cadence add --name etl --script /opt/etl/run.py --start 00:00:00 --every 1h --venv /opt/etl/venv
  cadence add --file jobs/backup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		var def *config.JobFile
		if file != "" {
			jf, err := config.LoadJobFile(file)
			if err != nil {
				return err
			}
			def = jf
		} else {
			def = &config.JobFile{}
			def.Name, _ = cmd.Flags().GetString("name")
			def.Script, _ = cmd.Flags().GetString("script")
			def.StartTime, _ = cmd.Flags().GetString("start")
			def.RepeatTime, _ = cmd.Flags().GetString("every")
			def.LogRetention, _ = cmd.Flags().GetInt("retention")
			def.PythonExec, _ = cmd.Flags().GetString("python-exec")
			def.Venv, _ = cmd.Flags().GetString("venv")
			def.WorkingDir, _ = cmd.Flags().GetString("working-dir")
		}

		return runAdd(def)
	},
}

func init() {
	AddCmd.Flags().String("name", "", "Job name (unique among active jobs)")
	AddCmd.Flags().String("script", "", "Path to the .py script to run")
	AddCmd.Flags().String("start", "", "Daily phase anchor, HH:MM:SS")
	AddCmd.Flags().String("every", "", "Repeat interval, e.g. 6h, 30m, 45s")
	AddCmd.Flags().Int("retention", 0, "Log retention in days (0 = global default)")
	AddCmd.Flags().String("python-exec", "", "Interpreter for this job (default: resolved at run time)")
	AddCmd.Flags().String("venv", "", "Virtualenv root for this job (its bin/python beats --python-exec)")
	AddCmd.Flags().String("working-dir", "", "Working directory for the script (default: the script's directory)")
	AddCmd.Flags().String("file", "", "JSON job definition file instead of flags")
}

func runAdd(def *config.JobFile) error {
	if def.Name == "" {
		return fmt.Errorf("job name is required")
	}

	// Validate and canonicalize before anything is persisted
	clock, err := schedule.ParseStartTime(def.StartTime)
	if err != nil {
		return err
	}
	interval, err := schedule.ParseInterval(def.RepeatTime)
	if err != nil {
		return err
	}
	if err := executor.ValidateScriptPath(def.Script); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	retention := def.LogRetention
	if retention <= 0 {
		retention = cfg.Logs.RetentionDays
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	sched := newScheduler(database, cfg)

	job := &schedule.Job{
		ID:               schedule.NewJobID(),
		Name:             def.Name,
		ScriptPath:       def.Script,
		StartTime:        clock.String(),
		RepeatInterval:   interval.String(),
		PythonExec:       def.PythonExec,
		Venv:             def.Venv,
		WorkingDir:       def.WorkingDir,
		LogRetentionDays: retention,
	}

	if err := sched.ScheduleJob(job); err != nil {
		return err
	}

	pterm.Success.Printf("Job %s scheduled\n", job.Name)
	pterm.Info.Printf("Next run: %s\n", job.NextRunAt.Local().Format(time.RFC3339))
	return nil
}
