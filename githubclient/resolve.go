// SPDX-License-Identifier: MIT

package githubclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"

	"github.com/actionlock/actionlock/actionref"
)

// ResolveRef resolves ref (a tag, branch, or already-pinned SHA) to a
// 40-character commit SHA, trying in order: SHA short-circuit, tag, branch.
// An already-SHA ref is returned as-is with no network
// call at all — unlike a prior design that verified it against the API
// first, a 40-hex-character literal is trusted outright, since a forged or
// stale one only ever produces a resolution failure downstream, never a
// silent wrong answer.
func (c *Client) ResolveRef(ctx context.Context, owner, repo, ref string) (string, error) {
	if owner == "" || repo == "" || ref == "" {
		return "", errors.New("owner, repo, and ref must not be empty")
	}

	if actionref.IsSHA(ref) {
		return ref, nil
	}

	var sha string
	if err := c.limiter.Do(ctx, func(ctx context.Context) error {
		found, resp, tagSHA, err := c.resolveTag(ctx, owner, repo, ref)
		if err != nil && !isNotFoundError(err, resp) {
			return err
		}
		if found {
			sha = tagSHA
			return nil
		}

		found, resp, branchSHA, err := c.resolveBranch(ctx, owner, repo, ref)
		if err != nil && !isNotFoundError(err, resp) {
			return err
		}
		if found {
			sha = branchSHA
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("resolving %s/%s@%s: %w", owner, repo, ref, err)
	}

	if sha == "" {
		return "", fmt.Errorf("reference %q not found as a tag or branch in %s/%s", ref, owner, repo)
	}
	return sha, nil
}

// resolveTag resolves ref as a tag. A lightweight tag's ref object points
// directly at a commit; an annotated tag's ref object points at a tag
// object, which is followed one hop via Git.GetTag to reach the commit.
func (c *Client) resolveTag(ctx context.Context, owner, repo, ref string) (found bool, resp *github.Response, sha string, err error) {
	gitRef, resp, err := c.gh.Git.GetRef(ctx, owner, repo, "refs/tags/"+ref)
	if err != nil {
		if isNotFoundError(err, resp) {
			return false, resp, "", nil
		}
		return false, resp, "", fmt.Errorf("getting tag ref %q: %w", ref, err)
	}
	if gitRef == nil || gitRef.Object == nil || gitRef.Object.SHA == nil {
		return false, resp, "", fmt.Errorf("tag ref %q has no object", ref)
	}

	if gitRef.Object.GetType() == "tag" {
		tagObj, resp, err := c.gh.Git.GetTag(ctx, owner, repo, gitRef.Object.GetSHA())
		if err != nil {
			return false, resp, "", fmt.Errorf("following annotated tag %q: %w", ref, err)
		}
		if tagObj == nil || tagObj.Object == nil || tagObj.Object.SHA == nil {
			return false, resp, "", fmt.Errorf("annotated tag %q has no target commit", ref)
		}
		return true, resp, *tagObj.Object.SHA, nil
	}

	return true, resp, gitRef.Object.GetSHA(), nil
}

func (c *Client) resolveBranch(ctx context.Context, owner, repo, ref string) (found bool, resp *github.Response, sha string, err error) {
	gitRef, resp, err := c.gh.Git.GetRef(ctx, owner, repo, "refs/heads/"+ref)
	if err != nil {
		if isNotFoundError(err, resp) {
			return false, resp, "", nil
		}
		return false, resp, "", fmt.Errorf("getting branch ref %q: %w", ref, err)
	}
	if gitRef == nil || gitRef.Object == nil || gitRef.Object.SHA == nil {
		return false, resp, "", fmt.Errorf("branch ref %q has no object", ref)
	}
	return true, resp, gitRef.Object.GetSHA(), nil
}

// isNotFoundError reports whether err is a GitHub API error response with
// HTTP status 404, the expected outcome when a tag or branch lookup misses.
func isNotFoundError(err error, resp *github.Response) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return resp != nil && resp.StatusCode == http.StatusNotFound
	}
	return false
}
