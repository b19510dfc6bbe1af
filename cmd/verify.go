// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionlock/actionlock/actionlock"
)

var (
	verifyWorkflowDir    string
	verifyLockfilePath   string
	verifySkipSHA        bool
	verifySkipIntegrity  bool
	verifySkipAdvisories bool
)

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().
		StringVarP(&verifyWorkflowDir, "workflows", "w", "", "workflow directory (default: discovered by walking up from the current directory)")
	verifyCmd.Flags().
		StringVarP(&verifyLockfilePath, "lockfile", "l", "actionlock.lock.json", "path to the lockfile to verify against")
	verifyCmd.Flags().
		BoolVar(&verifySkipSHA, "skip-sha", false, "skip re-resolving pinned references to detect drift")
	verifyCmd.Flags().
		BoolVar(&verifySkipIntegrity, "skip-integrity", false, "skip re-digesting commit archives")
	verifyCmd.Flags().
		BoolVar(&verifySkipAdvisories, "skip-advisories", false, "reserved; advisory lookups are not part of this build")
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a lockfile against the current workflows and, unless skipped, the hosting service",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowDir := verifyWorkflowDir
		if workflowDir == "" {
			dir, err := actionlock.DiscoverWorkflowDir(actionlock.DefaultWorkflowSegment)
			dieOnErr(err)
			workflowDir = dir
		}

		opts := actionlock.VerifyOptions{
			WorkflowDir:    workflowDir,
			LockfilePath:   verifyLockfilePath,
			Token:          os.Getenv("GITHUB_TOKEN"),
			SkipSHA:        verifySkipSHA,
			SkipIntegrity:  verifySkipIntegrity,
			SkipAdvisories: verifySkipAdvisories,
		}

		report, err := actionlock.Verify(cmd.Context(), opts)
		dieOnErr(err)

		printVerifyReport(report)

		if !report.Match() {
			os.Exit(exitVerificationFail)
		}
		return nil
	},
}

func printVerifyReport(report *actionlock.VerifyReport) {
	if s := report.Structural; s != nil {
		for _, a := range s.NewActions {
			fmt.Printf("new: %s@%s\n", a.FullName, a.Version)
		}
		for _, a := range s.Removed {
			fmt.Printf("removed: %s@%s\n", a.FullName, a.Version)
		}
		for _, c := range s.Changed {
			fmt.Printf("changed: %s %s -> %s\n", c.FullName, c.FromVersion, c.ToVersion)
		}
	}
	if shas := report.SHAs; shas != nil {
		for _, m := range shas.Failures {
			fmt.Printf("drift: %s@%s locked %s, now resolves to %s\n", m.FullName, m.Version, m.LockedSHA, m.CurrentSHA)
		}
	}
	if integ := report.Integrity; integ != nil {
		for _, m := range integ.Failures {
			fmt.Printf("integrity mismatch: %s@%s (%s) expected %s, got %s\n", m.FullName, m.Version, m.SHA, m.Expected, m.Actual)
		}
	}
	if report.Match() {
		fmt.Println("ok")
	}
}
