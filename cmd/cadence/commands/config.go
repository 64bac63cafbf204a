package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/cadence/schedule"
)

// ConfigCmd manages global configuration values
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or write global configuration values",
	Long: `Read or write the global key/value configuration stored in the
database (log_retention_days, log_dir). Defaults are seeded on first
initialization.

Examples:
  cadence config get log_retention_days
  cadence config set log_retention_days 14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// ConfigGetCmd reads a configuration value
var ConfigGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGet(args[0])
	},
}

// ConfigSetCmd writes a configuration value
var ConfigSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSet(args[0], args[1])
	},
}

func init() {
	ConfigCmd.AddCommand(ConfigGetCmd)
	ConfigCmd.AddCommand(ConfigSetCmd)
}

func runConfigGet(key string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	value, err := store.GetConfigValue(key)
	if err != nil {
		return err
	}
	if value == "" {
		return fmt.Errorf("no value set for %s", key)
	}

	fmt.Println(value)
	return nil
}

func runConfigSet(key, value string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	if err := store.SetConfigValue(key, value); err != nil {
		return err
	}

	pterm.Success.Printf("%s = %s\n", key, value)
	return nil
}
