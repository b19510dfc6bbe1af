// SPDX-License-Identifier: MIT

package actionlock

import (
	"context"
	"fmt"

	"github.com/actionlock/actionlock/githubclient"
	"github.com/actionlock/actionlock/lockfile"
	"github.com/actionlock/actionlock/result"
	"github.com/actionlock/actionlock/utils"
	"github.com/actionlock/actionlock/workflow"
)

// VerifyReport bundles every verification dimension's result. Dimensions
// skipped via options are left nil.
type VerifyReport struct {
	Structural *result.VerifyResult
	SHAs       *result.ShaValidationResult
	Integrity  *result.IntegrityResult
}

// Match reports whether every dimension that ran passed clean.
func (r *VerifyReport) Match() bool {
	if r.Structural != nil && !r.Structural.Match {
		return false
	}
	if r.SHAs != nil && !r.SHAs.Passed {
		return false
	}
	if r.Integrity != nil && !r.Integrity.Passed {
		return false
	}
	return true
}

// Verify diffs the current workflow set against the stored lockfile
// (structural), and, unless skipped, re-checks drift and integrity
// against the hosting service.
func Verify(ctx context.Context, opts VerifyOptions) (*VerifyReport, error) {
	workflows, parseErrs := workflow.ParseWorkflowDir(opts.WorkflowDir)
	if len(parseErrs) > 0 && len(workflows) == 0 {
		return nil, result.Wrap(result.KindInputMalformed, "verify", parseErrs[0])
	}

	lf, err := lockfile.Read(opts.LockfilePath)
	if err != nil {
		return nil, result.Wrap(result.KindInputMalformed, "verify", fmt.Errorf("reading lockfile: %w", err))
	}

	report := &VerifyReport{
		Structural: lockfile.Verify(workflows, lf),
	}

	if opts.SkipSHA && opts.SkipIntegrity {
		return report, nil
	}

	client, err := githubclient.NewClient(githubclient.WithToken(opts.Token))
	if err != nil {
		return nil, result.Wrap(result.KindRemoteTransient, "verify", err)
	}
	githubclient.CheckRateLimit(ctx, client, utils.Logger.Debugf)

	if !opts.SkipSHA {
		report.SHAs = lockfile.VerifySHAs(ctx, lf, client)
	}
	if !opts.SkipIntegrity {
		report.Integrity = lockfile.VerifyIntegrity(ctx, lf, client)
	}

	return report, nil
}
