// Package config implements the config subcommands: starter-file
// generation, display, and JSON schema export.
package config

import "github.com/spf13/cobra"

// Cmd groups the configuration subcommands under 'easetransfer config'.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect and manage the easeTransfer configuration.

'config init' writes an annotated starter file, 'config show' prints the
effective configuration after defaults and environment overrides, and
'config schema' exports a JSON schema for editor validation.`,
}

func init() {
	Cmd.AddCommand(initCmd, showCmd, schemaCmd)
}
