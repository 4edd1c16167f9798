package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X go.dot.industries/workspace-env/cmd.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(info))
	},
}

// versionString describes the binary. Unset ldflags fall back to the module
// version and VCS settings recorded by the Go toolchain.
func versionString(info *debug.BuildInfo) string {
	v, c, d := version, commit, date

	if info != nil {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && c == "none":
				c = s.Value
			case s.Key == "vcs.time" && d == "unknown":
				d = s.Value
			}
		}
	}

	if len(c) > 12 {
		c = c[:12]
	}

	return fmt.Sprintf("workspace-env %s (%s) built %s", v, c, d)
}
