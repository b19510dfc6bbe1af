// SPDX-License-Identifier: MIT

// Package resolver walks a reference set to an immutable commit identifier
// and transitive dependency graph, composing a Lockfile. It
// does not write to disk.
package resolver

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/actionlock/actionlock/actionref"
	"github.com/actionlock/actionlock/githubclient"
	"github.com/actionlock/actionlock/lockfile"
	"github.com/actionlock/actionlock/result"
)

// MaxDepth bounds transitive descriptor recursion. Exceeding it is fatal:
// it means a malformed or adversarial dependency graph, not a legitimate
// deep action tree.
const MaxDepth = 10

// RemoteSource is the subset of githubclient.Client the resolver needs.
// Declared here, at the point of use, so this package is testable against
// a fake without depending on the concrete client.
type RemoteSource interface {
	ResolveRef(ctx context.Context, owner, repo, ref string) (string, error)
	GetArchiveSHA256(ctx context.Context, owner, repo, sha string) (string, error)
	GetActionDescriptor(ctx context.Context, owner, repo, sha, path string) (*githubclient.ActionDescriptor, error)
}

// Warnf receives non-fatal diagnostics (a missing descriptor, an empty
// integrity digest, a malformed dependency literal). A nil Warnf is
// permitted; warnings are simply discarded.
type Warnf func(format string, args ...any)

// Resolver walks action references to a Lockfile, recursing into composite
// actions and reusable workflows for transitive dependencies. Every
// reference, whether a top-level input or a transitive dependency, is
// resolved on its own goroutine via errgroup.WithContext; the concurrency
// limiter on the RemoteSource caps how many of those are ever in flight to
// the hosting service at once. mu guards the two pieces of shared state
// those goroutines touch: the visited set and the Lockfile being built.
type Resolver struct {
	source RemoteSource
	warnf  Warnf

	mu      sync.Mutex
	visited map[string]bool // keyed by literal "owner/repo[/path]@ref"
}

// New returns a Resolver backed by source. warnf may be nil.
func New(source RemoteSource, warnf Warnf) *Resolver {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Resolver{
		source:  source,
		warnf:   warnf,
		visited: make(map[string]bool),
	}
}

// ResolveAll produces a fully populated Lockfile for refs. Every reference
// is resolved on its own goroutine; the first error encountered cancels
// the rest and is returned. generated stamps the lockfile's Generated
// field.
func (r *Resolver) ResolveAll(ctx context.Context, refs []*actionref.Reference, generated string) (*lockfile.Lockfile, error) {
	lf := lockfile.New(generated)
	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			return r.resolveOne(gctx, ref, 0, lf)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lf, nil
}

// resolveOne resolves a single reference into lf, recursing into its
// transitive dependencies. Sibling dependencies are fanned out to their
// own goroutines and awaited together, so a composite action's dependency
// list is resolved concurrently up to the RemoteSource's own concurrency
// cap, while insertion order into lf.Dependencies still follows descriptor
// discovery order rather than completion order.
func (r *Resolver) resolveOne(ctx context.Context, ref *actionref.Reference, depth int, lf *lockfile.Lockfile) error {
	if depth > MaxDepth {
		return result.Wrap(result.KindReferenceDepthExceeded, actionref.FormatBack(ref),
			fmt.Errorf("exceeds max depth %d", MaxDepth))
	}

	literal := actionref.FormatBack(ref)
	if !r.markVisited(literal) {
		return nil
	}

	fullName := actionref.FullName(ref)
	if _, ok := r.findLocked(lf, fullName, ref.Ref); ok {
		return nil // tie-break: same fullName+version already recorded
	}

	sha, err := r.source.ResolveRef(ctx, ref.Owner, ref.Repo, ref.Ref)
	if err != nil {
		return result.Wrap(result.KindRemoteTransient, "resolveRef "+literal, err)
	}

	integrity, err := r.source.GetArchiveSHA256(ctx, ref.Owner, ref.Repo, sha)
	if err != nil {
		r.warnf("could not digest archive for %s: %v", literal, err)
		integrity = ""
	}

	deps, err := r.collectDependencies(ctx, ref, sha)
	if err != nil {
		return err
	}

	locked := make([]lockfile.LockedDependency, len(deps))
	g, gctx := errgroup.WithContext(ctx)
	for i, dep := range deps {
		i, dep := i, dep
		g.Go(func() error {
			if err := r.resolveOne(gctx, dep, depth+1, lf); err != nil {
				return err
			}
			depFullName := actionref.FullName(dep)
			if depAction, ok := r.findLocked(lf, depFullName, dep.Ref); ok {
				locked[i] = lockfile.LockedDependency{
					Ref:       actionref.FormatBack(dep),
					SHA:       depAction.SHA,
					Integrity: depAction.Integrity,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	resolved := locked[:0]
	for _, dep := range locked {
		if dep.Ref != "" {
			resolved = append(resolved, dep)
		}
	}

	r.insertLocked(lf, fullName, lockfile.LockedAction{
		Version:      ref.Ref,
		SHA:          sha,
		Integrity:    integrity,
		Dependencies: resolved,
	})
	return nil
}

// collectDependencies fetches ref's descriptor at sha and extracts its
// transitive action references, in descriptor discovery order.
func (r *Resolver) collectDependencies(ctx context.Context, ref *actionref.Reference, sha string) ([]*actionref.Reference, error) {
	descriptor, err := r.source.GetActionDescriptor(ctx, ref.Owner, ref.Repo, sha, ref.Path)
	if err != nil {
		return nil, result.Wrap(result.KindRemoteTransient, "getActionDescriptor "+actionref.FormatBack(ref), err)
	}
	if descriptor == nil {
		r.warnf("no descriptor found for %s", actionref.FormatBack(ref))
		return nil, nil
	}

	var literals []string
	switch {
	case descriptor.IsComposite():
		for _, step := range descriptor.Runs.Steps {
			literals = append(literals, step.Uses)
		}
	case descriptor.IsReusableWorkflow():
		for _, jobName := range slices.Sorted(maps.Keys(descriptor.Jobs)) {
			job := descriptor.Jobs[jobName]
			if job.Uses != "" {
				literals = append(literals, job.Uses)
			}
			for _, step := range job.Steps {
				literals = append(literals, step.Uses)
			}
		}
	}

	var deps []*actionref.Reference
	for _, literal := range literals {
		if literal == "" || actionref.IsSkip(literal) {
			continue
		}
		dep := actionref.ParseActionRef(literal)
		if dep == nil {
			r.warnf("unparseable dependency reference %q in %s", literal, actionref.FormatBack(ref))
			continue
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func (r *Resolver) markVisited(literal string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visited[literal] {
		return false
	}
	r.visited[literal] = true
	return true
}

// findLocked and insertLocked serialize every access to lf: resolveOne
// calls run concurrently across goroutines, and Lockfile's map fields
// aren't otherwise safe for concurrent use.

func (r *Resolver) findLocked(lf *lockfile.Lockfile, fullName, version string) (lockfile.LockedAction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lf.Find(fullName, version)
}

func (r *Resolver) insertLocked(lf *lockfile.Lockfile, fullName string, action lockfile.LockedAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lf.Actions[fullName] = append(lf.Actions[fullName], action)
}
