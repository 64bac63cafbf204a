package config

import "github.com/veldtlabs/cadence/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Database path is optional - empty defaults to "cadence.db" per defaults.go

	// Retention: 0 would delete every log on each sweep, negative is nonsense
	if c.Logs.RetentionDays < 1 {
		return errors.Newf("logs.retention_days must be >= 1, got %d", c.Logs.RetentionDays)
	}

	// Tick interval: 0 = no periodic ticking, negative = invalid
	if c.Scheduler.TickIntervalSeconds < 0 {
		return errors.Newf("scheduler.tick_interval_seconds must be >= 0, got %d", c.Scheduler.TickIntervalSeconds)
	}

	if c.Scheduler.Interpreter == "" {
		return errors.New("scheduler.interpreter cannot be empty")
	}

	return nil
}
