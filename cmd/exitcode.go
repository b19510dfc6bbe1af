// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"os"

	"github.com/actionlock/actionlock/result"
	"github.com/actionlock/actionlock/utils"
)

// Exit codes for the CLI boundary: 0 on success, 1 when the operation ran
// to completion but found a verification mismatch or a requireSha policy
// violation, 2 for anything that kept the operation from running at all
// (I/O, parsing, a remote the client couldn't reach).
const (
	exitSuccess          = 0
	exitVerificationFail = 1
	exitOperationalError = 2
)

// exitCodeForErr maps an error returned from the actionlock package to one
// of the exit codes above.
func exitCodeForErr(err error) int {
	var coreErr *result.Error
	if errors.As(err, &coreErr) {
		switch coreErr.Kind {
		case result.KindPolicyViolation, result.KindVerificationMismatch:
			return exitVerificationFail
		default:
			return exitOperationalError
		}
	}
	return exitOperationalError
}

// dieOnErr logs err and exits with the code exitCodeForErr assigns it. A nil
// err is a no-op.
func dieOnErr(err error) {
	if err == nil {
		return
	}
	utils.Logger.Errorf("%v", err)
	os.Exit(exitCodeForErr(err))
}
