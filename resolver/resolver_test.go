// SPDX-License-Identifier: MIT

package resolver_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlock/actionlock/actionref"
	"github.com/actionlock/actionlock/githubclient"
	"github.com/actionlock/actionlock/resolver"
)

type fakeSource struct {
	mu sync.Mutex

	shas        map[string]string // "owner/repo@ref" -> sha
	integrity   map[string]string // "owner/repo@sha" -> digest
	descriptors map[string]*githubclient.ActionDescriptor // "owner/repo@sha" -> descriptor
	resolveCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		shas:         make(map[string]string),
		integrity:    make(map[string]string),
		descriptors:  make(map[string]*githubclient.ActionDescriptor),
		resolveCalls: make(map[string]int),
	}
}

func (f *fakeSource) ResolveRef(_ context.Context, owner, repo, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := owner + "/" + repo + "@" + ref
	f.resolveCalls[key]++
	return f.shas[key], nil
}

func (f *fakeSource) GetArchiveSHA256(_ context.Context, owner, repo, sha string) (string, error) {
	return f.integrity[owner+"/"+repo+"@"+sha], nil
}

func (f *fakeSource) GetActionDescriptor(_ context.Context, owner, repo, sha, _ string) (*githubclient.ActionDescriptor, error) {
	return f.descriptors[owner+"/"+repo+"@"+sha], nil
}

// single action, no dependencies.
func TestResolveAll_SingleActionNoDeps(t *testing.T) {
	source := newFakeSource()
	source.shas["actions/checkout@v4"] = "b4ffde65f46336ab88eb53be808477a3936bae11"
	source.integrity["actions/checkout@b4ffde65f46336ab88eb53be808477a3936bae11"] = "sha256-XYZ="

	r := resolver.New(source, nil)
	refs := []*actionref.Reference{actionref.ParseActionRef("actions/checkout@v4")}

	lf, err := r.ResolveAll(context.Background(), refs, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	require.Len(t, lf.Actions["actions/checkout"], 1)
	entry := lf.Actions["actions/checkout"][0]
	assert.Equal(t, "v4", entry.Version)
	assert.Equal(t, "b4ffde65f46336ab88eb53be808477a3936bae11", entry.SHA)
	assert.Equal(t, "sha256-XYZ=", entry.Integrity)
	assert.Empty(t, entry.Dependencies)
}

// composite action with one transitive dependency.
func TestResolveAll_CompositeWithTransitive(t *testing.T) {
	source := newFakeSource()
	source.shas["a/b@v1"] = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	source.shas["c/d@v2"] = "cccccccccccccccccccccccccccccccccccccccc"[:40]
	source.descriptors["a/b@aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"] = &githubclient.ActionDescriptor{
		Runs: &githubclient.RunsBlock{
			Using: "composite",
			Steps: []githubclient.DescriptorStep{{Uses: "c/d@v2"}},
		},
	}

	r := resolver.New(source, nil)
	refs := []*actionref.Reference{actionref.ParseActionRef("a/b@v1")}

	lf, err := r.ResolveAll(context.Background(), refs, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	require.Len(t, lf.Actions["a/b"], 1)
	require.Len(t, lf.Actions["a/b"][0].Dependencies, 1)
	assert.Equal(t, "c/d@v2", lf.Actions["a/b"][0].Dependencies[0].Ref)

	require.Len(t, lf.Actions["c/d"], 1)
	assert.Equal(t, "cccccccccccccccccccccccccccccccccccccccc", lf.Actions["c/d"][0].SHA)
}

// every produced sha is 40-hex, every non-empty integrity is SRI form.
func TestResolveAll_ShaAndIntegrityShape(t *testing.T) {
	source := newFakeSource()
	source.shas["actions/checkout@v4"] = "b4ffde65f46336ab88eb53be808477a3936bae11"
	source.integrity["actions/checkout@b4ffde65f46336ab88eb53be808477a3936bae11"] = "sha256-XYZ="

	r := resolver.New(source, nil)
	refs := []*actionref.Reference{actionref.ParseActionRef("actions/checkout@v4")}
	lf, err := r.ResolveAll(context.Background(), refs, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	for _, versions := range lf.Actions {
		for _, v := range versions {
			assert.Len(t, v.SHA, 40)
			if v.Integrity != "" {
				assert.Regexp(t, `^sha256-`, v.Integrity)
			}
		}
	}
}

// every dependency reference also exists as a top-level LockedAction
// under the same fullName and version.
func TestResolveAll_DependenciesHaveTopLevelEntries(t *testing.T) {
	source := newFakeSource()
	source.shas["a/b@v1"] = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	source.shas["c/d@v2"] = "cccccccccccccccccccccccccccccccccccccccc"
	source.descriptors["a/b@aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"] = &githubclient.ActionDescriptor{
		Runs: &githubclient.RunsBlock{Using: "composite", Steps: []githubclient.DescriptorStep{{Uses: "c/d@v2"}}},
	}

	r := resolver.New(source, nil)
	lf, err := r.ResolveAll(context.Background(), []*actionref.Reference{actionref.ParseActionRef("a/b@v1")}, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	for _, versions := range lf.Actions {
		for _, v := range versions {
			for _, dep := range v.Dependencies {
				depRef := actionref.ParseActionRef(dep.Ref)
				require.NotNil(t, depRef)
				_, ok := lf.Find(actionref.FullName(depRef), depRef.Ref)
				assert.True(t, ok)
			}
		}
	}
}

// resolveRef is called at most once per distinct literal reference.
func TestResolveAll_ResolveRefCalledOnceEvenWithDuplicateRefs(t *testing.T) {
	source := newFakeSource()
	source.shas["actions/checkout@v4"] = "b4ffde65f46336ab88eb53be808477a3936bae11"

	r := resolver.New(source, nil)
	refs := []*actionref.Reference{
		actionref.ParseActionRef("actions/checkout@v4"),
		actionref.ParseActionRef("actions/checkout@v4"),
	}
	_, err := r.ResolveAll(context.Background(), refs, "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, 1, source.resolveCalls["actions/checkout@v4"])
}

func TestResolveAll_DepthExceededIsFatal(t *testing.T) {
	source := newFakeSource()
	// A chain of distinct fullNames ownera/b -> ownerb/b -> ... so each
	// hop is a fresh literal the visited set won't cut short, forcing
	// depth past MaxDepth.
	const chainLen = 12
	for i := 0; i < chainLen; i++ {
		owner := ownerAt(i)
		sha := shaAt(i)
		source.shas[owner+"/b@v1"] = sha
		next := ownerAt(i + 1)
		if i < chainLen-1 {
			source.descriptors[owner+"/b@"+sha] = &githubclient.ActionDescriptor{
				Runs: &githubclient.RunsBlock{Using: "composite", Steps: []githubclient.DescriptorStep{{Uses: next + "/b@v1"}}},
			}
		}
	}

	r := resolver.New(source, nil)
	_, err := r.ResolveAll(context.Background(), []*actionref.Reference{actionref.ParseActionRef(ownerAt(0) + "/b@v1")}, "2026-01-01T00:00:00Z")
	assert.Error(t, err)
}

func ownerAt(i int) string {
	return "owner" + string(rune('a'+i))
}

func shaAt(i int) string {
	base := "0000000000000000000000000000000000000"
	return base + string(rune('0'+i%10))
}
