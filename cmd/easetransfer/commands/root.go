// Package commands implements the easetransfer CLI.
package commands

import (
	configcmd "github.com/rohitbhushankumariift2022-coder/easeTransfer/cmd/easetransfer/commands/config"
	"github.com/spf13/cobra"
)

// cfgFile holds the --config persistent flag shared by every subcommand.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "easetransfer",
	Short: "easeTransfer - LAN file relay hub",
	Long: `easeTransfer is a local-network file relay. It runs one hub process
that devices on the same network connect to over WebSocket; files are
relayed through memory between session members and never leave the LAN.

Devices pair by typing or scanning a six-character session code - no
accounts, no cloud, nothing stored on disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. main calls this once.
func Execute() error {
	return rootCmd.Execute()
}

// GetConfigFile returns the path passed via --config, empty when unset.
func GetConfigFile() string {
	return cfgFile
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/easetransfer/config.yaml)")

	rootCmd.AddCommand(
		startCmd,
		stopCmd,
		statusCmd,
		logsCmd,
		feedbackCmd,
		configcmd.Cmd,
		completionCmd,
		versionCmd,
	)

	// The completion command above replaces the cobra builtin.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
