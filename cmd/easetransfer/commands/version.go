package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build identity. Release builds inject these through ldflags; plain
// source builds keep the defaults and fall back to the module metadata
// stamped by the Go toolchain.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetBuildInfo records the build identity shown by the version command
// and reported on /health.
func SetBuildInfo(version, commit, date string) {
	buildVersion, buildCommit, buildDate = version, commit, date
}

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the easetransfer version, build information, and system details.`,
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(buildVersion)
			return
		}

		fmt.Printf("easetransfer %s\n", buildVersion)
		fmt.Printf("  Commit:     %s\n", vcsCommit())
		fmt.Printf("  Built:      %s\n", buildDate)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show only version number")
}

// vcsCommit prefers the ldflags commit and falls back to the revision the
// toolchain recorded for 'go build' binaries.
func vcsCommit() string {
	if buildCommit != "none" {
		return buildCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return buildCommit
}
