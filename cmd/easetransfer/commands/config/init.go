package config

import (
	"fmt"
	"os"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/cli/prompt"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Write an annotated starter configuration file.

Every setting appears in the file with its default value; most lines are
commented out, so the file documents each knob without changing anything.

The file lands at $XDG_CONFIG_HOME/easetransfer/config.yaml unless --config
names another path. An existing file is only replaced after confirmation,
or unconditionally with --force.`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file without asking")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	// The --config flag is persistent on the root command.
	configFile, _ := cmd.Flags().GetString("config")

	targetPath := configFile
	if targetPath == "" {
		targetPath = config.GetDefaultConfigPath()
	}

	force := initForce
	if _, err := os.Stat(targetPath); err == nil {
		ok, err := prompt.ConfirmWithForce(
			fmt.Sprintf("Config file already exists at %s, overwrite", targetPath), force)
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
		force = true
	}

	if err := config.InitConfigToPath(targetPath, force); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at %s\n", targetPath)
	if configFile == "" {
		fmt.Println("The hub picks this file up automatically on the next 'easetransfer start'.")
	} else {
		fmt.Printf("Start the hub with it: easetransfer start --config %s\n", targetPath)
	}

	return nil
}
