// SPDX-License-Identifier: MIT

package lockfile

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/actionlock/actionlock/actionref"
	"github.com/actionlock/actionlock/result"
	"github.com/actionlock/actionlock/workflow"
)

// RemoteSource is the subset of githubclient.Client the verifier needs for
// drift and integrity checks. Declared here, at the point of use, rather
// than imported from githubclient, so this package stays free to be tested
// against a fake.
type RemoteSource interface {
	ResolveRef(ctx context.Context, owner, repo, ref string) (string, error)
	GetArchiveSHA256(ctx context.Context, owner, repo, sha string) (string, error)
}

// Verify computes the structural diff between the current reference set
// extracted from workflows and what lf has pinned. Transitive
// dependencies are not re-extracted from workflows; they're carried
// implicitly by the lockfile and validated by VerifySHAs/VerifyIntegrity.
//
// Each fullName is compared on one version per side: the first version
// the workflows request and the first version lf records under that name.
// Further versions of the same fullName, on either side, are not compared.
func Verify(workflows []workflow.Workflow, lf *Lockfile) *result.VerifyResult {
	current := make(map[string]string) // fullName -> version, first occurrence wins
	var currentOrder []string
	for _, ref := range workflow.ExtractActionRefs(workflows) {
		fullName := actionref.FullName(ref)
		if _, ok := current[fullName]; !ok {
			currentOrder = append(currentOrder, fullName)
			current[fullName] = ref.Ref
		}
	}

	locked := make(map[string]string) // fullName -> first version recorded
	for _, fullName := range slices.Sorted(maps.Keys(lf.Actions)) {
		versions := lf.Actions[fullName]
		if len(versions) == 0 {
			continue
		}
		locked[fullName] = versions[0].Version
	}

	res := &result.VerifyResult{}

	for _, fullName := range currentOrder {
		version := current[fullName]
		lockedVersion, inLock := locked[fullName]
		switch {
		case !inLock:
			res.NewActions = append(res.NewActions, result.ActionVersion{FullName: fullName, Version: version})
		case lockedVersion != version:
			res.Changed = append(res.Changed, result.ChangedAction{
				FullName:    fullName,
				FromVersion: lockedVersion,
				ToVersion:   version,
			})
		}
	}

	for _, fullName := range slices.Sorted(maps.Keys(locked)) {
		if _, inWorkflows := current[fullName]; !inWorkflows {
			res.Removed = append(res.Removed, result.ActionVersion{FullName: fullName, Version: locked[fullName]})
		}
	}

	res.Match = len(res.NewActions) == 0 && len(res.Removed) == 0 && len(res.Changed) == 0
	return res
}

// VerifySHAs re-resolves every pinned reference in lf against source and
// compares the result to the recorded sha, detecting mutable-tag
// retargeting after lock time. A network failure for a particular record
// is best-effort: it is neither a pass nor a failure, and Checked is not
// incremented for it.
func VerifySHAs(ctx context.Context, lf *Lockfile, source RemoteSource) *result.ShaValidationResult {
	res := &result.ShaValidationResult{}

	for _, fullName := range slices.Sorted(maps.Keys(lf.Actions)) {
		owner, repo := splitOwnerRepo(fullName)
		for _, action := range lf.Actions[fullName] {
			checkOne(ctx, source, res, fullName, action.Version, owner, repo, action.SHA)
			for _, dep := range action.Dependencies {
				depRef := actionref.ParseActionRef(dep.Ref)
				if depRef == nil {
					continue
				}
				checkOne(ctx, source, res, actionref.FullName(depRef), depRef.Ref, depRef.Owner, depRef.Repo, dep.SHA)
			}
		}
	}

	res.Passed = len(res.Failures) == 0
	return res
}

func checkOne(ctx context.Context, source RemoteSource, res *result.ShaValidationResult, fullName, version, owner, repo, lockedSHA string) {
	current, err := source.ResolveRef(ctx, owner, repo, version)
	if err != nil {
		// best-effort: network failures are neither a pass nor a failure
		return
	}
	res.Checked++
	if current != lockedSHA {
		res.Failures = append(res.Failures, result.ShaMismatch{
			FullName:   fullName,
			Version:    version,
			LockedSHA:  lockedSHA,
			CurrentSHA: current,
		})
	}
}

// VerifyIntegrity re-digests the commit archive for every record with a
// non-empty integrity value and compares it to what's recorded. Records
// with empty integrity are skipped and not counted. Best-effort like
// VerifySHAs.
func VerifyIntegrity(ctx context.Context, lf *Lockfile, source RemoteSource) *result.IntegrityResult {
	res := &result.IntegrityResult{}

	for _, fullName := range slices.Sorted(maps.Keys(lf.Actions)) {
		owner, repo := splitOwnerRepo(fullName)
		for _, action := range lf.Actions[fullName] {
			checkIntegrityOne(ctx, source, res, fullName, action.Version, owner, repo, action.SHA, action.Integrity)
			for _, dep := range action.Dependencies {
				if dep.Integrity == "" {
					continue
				}
				depRef := actionref.ParseActionRef(dep.Ref)
				if depRef == nil {
					continue
				}
				checkIntegrityOne(ctx, source, res, actionref.FullName(depRef), depRef.Ref, depRef.Owner, depRef.Repo, dep.SHA, dep.Integrity)
			}
		}
	}

	res.Passed = len(res.Failures) == 0
	return res
}

func checkIntegrityOne(ctx context.Context, source RemoteSource, res *result.IntegrityResult, fullName, version, owner, repo, sha, expected string) {
	if expected == "" {
		return
	}
	actual, err := source.GetArchiveSHA256(ctx, owner, repo, sha)
	if err != nil {
		// best-effort: network failures are neither a pass nor a failure
		return
	}
	res.Checked++
	if actual != expected {
		res.Failures = append(res.Failures, result.IntegrityMismatch{
			FullName: fullName,
			Version:  version,
			SHA:      sha,
			Expected: expected,
			Actual:   actual,
		})
	}
}

// splitOwnerRepo extracts the leading owner/repo from a fullName of the
// form "owner/repo[/path]".
func splitOwnerRepo(fullName string) (owner, repo string) {
	parts := strings.SplitN(fullName, "/", 3) //nolint:mnd
	if len(parts) < 2 {                       //nolint:mnd
		return fullName, ""
	}
	return parts[0], parts[1]
}
