package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/willfong/atmsim/internal/ui"
)

// Version information - set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		u := ui.New()
		if noColor {
			u.SetNoColor(true)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, u.Header("ATM Simulator"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, u.KeyValue("Version", Version))
		fmt.Fprintln(out, u.KeyValue("Git Commit", GitCommit))
		fmt.Fprintln(out, u.KeyValue("Built", BuildDate))
		fmt.Fprintln(out, u.KeyValue("Go Version", runtime.Version()))
		fmt.Fprintln(out, u.KeyValue("OS/Arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(versionCmd)
}
