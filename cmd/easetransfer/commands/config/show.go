package config

import (
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/cli/output"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Print the effective hub configuration: file values merged with
environment overrides and defaults.

Examples:
  # Effective config as YAML
  easetransfer config show

  # As JSON
  easetransfer config show --output json

  # For a specific file
  easetransfer config show --config /etc/easetransfer/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// The --config flag is persistent on the root command.
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
