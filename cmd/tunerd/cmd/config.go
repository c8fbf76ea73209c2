package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ottkit/tunerd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing tunerd configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the default configuration",
	Long: `Dump the default configuration values in YAML format.

This shows all available configuration options with their default values.
You can redirect this output to a file to create a configuration template:

  tunerd config dump > config.yaml

Configuration can be set via:
  - Config file (config.yaml, .tunerd.yaml, /etc/tunerd/config.yaml)
  - Environment variables (TUNERD_DATABASE_DSN, TUNERD_LOGGING_LEVEL, etc.)
  - Command-line flags (for some options)

Environment variables use the TUNERD_ prefix and underscores for nesting.
Example: database.dsn -> TUNERD_DATABASE_DSN`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

func runConfigDump(_ *cobra.Command, _ []string) error {
	v := viper.New()
	config.SetDefaults(v)

	out, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling default configuration: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
