package config

import "github.com/spf13/viper"

// Default filesystem permissions for created directories
const DefaultDirPermissions = 0755

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "cadence.db")

	// Log artifact defaults
	v.SetDefault("logs.dir", "logs")
	v.SetDefault("logs.retention_days", 30)

	// Scheduler defaults
	v.SetDefault("scheduler.tick_interval_seconds", 1)
	v.SetDefault("scheduler.interpreter", "python3")
	v.SetDefault("scheduler.venv_dir", "venv")
}

// BindSensitiveEnvVars explicitly binds deployment-specific configuration
// to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "CADENCE_DATABASE_PATH")
	v.BindEnv("logs.dir", "CADENCE_LOGS_DIR")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "cadence.db" // Fallback default
	}
	return c.Database.Path
}

// GetLogDir returns the configured log directory
func (c *Config) GetLogDir() string {
	if c.Logs.Dir == "" {
		return "logs"
	}
	return c.Logs.Dir
}
