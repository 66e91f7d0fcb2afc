package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display detailed version information including build details.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fprintf(out, "relgraph version %s\n", Version)
	fprintf(out, "  Commit: %s\n", Commit)
	fprintf(out, "  Go version: %s\n", runtime.Version())
	fprintf(out, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
