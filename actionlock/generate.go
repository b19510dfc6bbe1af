// SPDX-License-Identifier: MIT

package actionlock

import (
	"context"
	"fmt"
	"time"

	"github.com/actionlock/actionlock/actionref"
	"github.com/actionlock/actionlock/githubclient"
	"github.com/actionlock/actionlock/lockfile"
	"github.com/actionlock/actionlock/resolver"
	"github.com/actionlock/actionlock/result"
	"github.com/actionlock/actionlock/utils"
	"github.com/actionlock/actionlock/workflow"
)

// Generate discovers workflows under opts.WorkflowDir, resolves every
// action reference (and its transitive dependencies) to a Lockfile, and
// writes it to opts.OutputPath. warnf receives non-fatal diagnostics
// (malformed workflow files, unresolved descriptors, unavailable
// integrity digests); it may be nil.
func Generate(ctx context.Context, opts GenerateOptions, warnf func(format string, args ...any)) (*lockfile.Lockfile, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	workflows, parseErrs := workflow.ParseWorkflowDir(opts.WorkflowDir)
	for _, e := range parseErrs {
		warnf("%v", e)
	}
	if len(workflows) == 0 {
		return nil, result.Wrap(result.KindInputMalformed, "generate",
			fmt.Errorf("no workflow files found under %q", opts.WorkflowDir))
	}

	refs := workflow.ExtractActionRefs(workflows)

	if opts.RequireSHA {
		for _, ref := range refs {
			if !actionref.IsSHA(ref.Ref) {
				return nil, result.Wrap(result.KindPolicyViolation, "generate",
					fmt.Errorf("reference %q is not pinned to a commit SHA", actionref.FormatBack(ref)))
			}
		}
	}

	client, err := githubclient.NewClient(githubclient.WithToken(opts.Token))
	if err != nil {
		return nil, result.Wrap(result.KindRemoteTransient, "generate", err)
	}
	githubclient.CheckRateLimit(ctx, client, utils.Logger.Debugf)

	r := resolver.New(client, warnf)
	lf, err := r.ResolveAll(ctx, refs, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	if err := lockfile.Write(opts.OutputPath, lf); err != nil {
		return nil, result.Wrap(result.KindInputMalformed, "generate", err)
	}

	return lf, nil
}
