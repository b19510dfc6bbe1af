// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionlock/actionlock/actionlock"
)

var listLockfilePath string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().
		StringVarP(&listLockfilePath, "lockfile", "l", "actionlock.lock.json", "path to the lockfile to render")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the actions and transitive dependencies recorded in a lockfile",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := actionlock.List(actionlock.ListOptions{LockfilePath: listLockfilePath})
		dieOnErr(err)
		fmt.Print(out)
		return nil
	},
}
