// Package config loads the Cadence application configuration.
//
// Configuration is TOML read through Viper, merged in precedence order
// (system < user < project < environment). Job definitions are a separate
// surface, see jobfile.go.
package config

// Config represents the core Cadence configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logs      LogsConfig      `mapstructure:"logs"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogsConfig configures script log artifacts and their retention
type LogsConfig struct {
	Dir           string `mapstructure:"dir"`            // root directory for per-job log files
	RetentionDays int    `mapstructure:"retention_days"` // global default, overridable per directory
}

// SchedulerConfig configures the control loop and script execution
type SchedulerConfig struct {
	TickIntervalSeconds int    `mapstructure:"tick_interval_seconds"` // how often due jobs are checked (default: 1)
	Interpreter         string `mapstructure:"interpreter"`           // fallback interpreter when no venv is found
	VenvDir             string `mapstructure:"venv_dir"`              // virtualenv directory name looked up next to scripts
}
