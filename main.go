// SPDX-License-Identifier: MIT

package main

import "github.com/actionlock/actionlock/cmd"

func main() {
	cmd.Execute()
}
