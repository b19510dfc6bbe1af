// SPDX-License-Identifier: MIT

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/actionlock/actionlock/actionlock"
	"github.com/actionlock/actionlock/utils"
)

var (
	genWorkflowDir string
	genOutputPath  string
	genRequireSHA  bool
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().
		StringVarP(&genWorkflowDir, "workflows", "w", "", "workflow directory (default: discovered by walking up from the current directory)")
	generateCmd.Flags().
		StringVarP(&genOutputPath, "output", "o", "actionlock.lock.json", "path to write the lockfile to")
	generateCmd.Flags().
		BoolVar(&genRequireSHA, "require-sha", false, "fail if any workflow references an action by a tag or branch rather than a commit SHA")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Resolve every action reference to a commit SHA and write a lockfile",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowDir := genWorkflowDir
		if workflowDir == "" {
			dir, err := actionlock.DiscoverWorkflowDir(actionlock.DefaultWorkflowSegment)
			dieOnErr(err)
			workflowDir = dir
		}

		opts := actionlock.GenerateOptions{
			WorkflowDir: workflowDir,
			OutputPath:  genOutputPath,
			Token:       os.Getenv("GITHUB_TOKEN"),
			RequireSHA:  genRequireSHA,
		}

		lf, err := actionlock.Generate(cmd.Context(), opts, utils.Logger.Warnf)
		dieOnErr(err)

		utils.Logger.Infof("wrote %d action(s) to %s", len(lf.Actions), genOutputPath)
		return nil
	},
}
