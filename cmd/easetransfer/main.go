package main

import (
	"fmt"
	"os"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/cmd/easetransfer/commands"
)

// Injected at release time via -ldflags "-X main.version=v1.2.3 ...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetBuildInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
