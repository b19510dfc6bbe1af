// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionlock/actionlock/utils"
)

// Variables to hold build information, populated at build time via ldflags.
var (
	Version string // Application version
	Date    string // Build date
	Commit  string // Git commit hash
	BuiltBy string // Builder identifier

	verbose bool // Enable debug-level logging
)

// init sets the version information for the root command using build-time
// variables, and registers the persistent flags shared by every
// subcommand.
func init() {
	rootCmd.Version = utils.BuildVersion(Version, Commit, Date, BuiltBy)
	rootCmd.SetVersionTemplate(`{{printf "Version %s" .Version}}`)
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitOperationalError)
	}
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "actionlock",
	Short: "actionlock pins GitHub Actions workflow dependencies to verified commit SHAs.",
	Long: `actionlock generates and verifies a lockfile for the GitHub Actions used
by a repository's workflows. It resolves every action and reusable
workflow reference, including transitive dependencies pulled in by
composite actions, to a commit SHA and an integrity digest of the
commit's archive, so that a later verify run can detect drift.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.CreateLogger(verbose)
	},
}
