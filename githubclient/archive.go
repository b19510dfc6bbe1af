// SPDX-License-Identifier: MIT

package githubclient

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v80/github"
)

// GetArchiveSHA256 fetches the repository's canonical source tarball at sha
// and returns its integrity digest in SRI form, "sha256-<base64>", computed
// over the exact bytes served.
func (c *Client) GetArchiveSHA256(ctx context.Context, owner, repo, sha string) (string, error) {
	var digest string
	err := c.limiter.Do(ctx, func(ctx context.Context) error {
		url, _, err := c.gh.Repositories.GetArchiveLink(ctx, owner, repo, github.Tarball, &github.RepositoryContentGetOptions{Ref: sha}, 3) //nolint:mnd
		if err != nil {
			return fmt.Errorf("getting archive link for %s/%s@%s: %w", owner, repo, sha, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
		if err != nil {
			return fmt.Errorf("building archive request for %s/%s@%s: %w", owner, repo, sha, err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetching archive for %s/%s@%s: %w", owner, repo, sha, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetching archive for %s/%s@%s: unexpected status %s", owner, repo, sha, resp.Status)
		}

		h := sha256.New()
		if _, err := io.Copy(h, resp.Body); err != nil {
			return fmt.Errorf("reading archive for %s/%s@%s: %w", owner, repo, sha, err)
		}
		digest = "sha256-" + base64.StdEncoding.EncodeToString(h.Sum(nil))
		return nil
	})
	if err != nil {
		return "", err
	}
	return digest, nil
}
