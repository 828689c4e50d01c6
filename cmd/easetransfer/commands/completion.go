package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a completion script for easetransfer.

The script is written to stdout; where to install it depends on the shell:

  # bash (Linux)
  easetransfer completion bash | sudo tee /etc/bash_completion.d/easetransfer > /dev/null

  # bash (macOS with Homebrew)
  easetransfer completion bash > $(brew --prefix)/etc/bash_completion.d/easetransfer

  # zsh
  easetransfer completion zsh > "${fpath[1]}/_easetransfer"

  # fish
  easetransfer completion fish > ~/.config/fish/completions/easetransfer.fish

  # PowerShell
  easetransfer completion powershell | Out-String | Invoke-Expression

zsh users may need 'autoload -U compinit; compinit' in ~/.zshrc first.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(os.Stdout)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		default:
			return root.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
