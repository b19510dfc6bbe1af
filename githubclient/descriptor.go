// SPDX-License-Identifier: MIT

package githubclient

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/go-github/v80/github"
	"gopkg.in/yaml.v3"
)

// ActionDescriptor is the parsed metadata document addressed by
// (owner, repo, commit, path?): either a runs block naming a composite
// action's steps, or a jobs mapping for a reusable workflow.
type ActionDescriptor struct {
	Runs *RunsBlock            `yaml:"runs,omitempty"`
	Jobs map[string]DescriptorJob `yaml:"jobs,omitempty"`
}

// RunsBlock is a composite action's runs block. Using names the action's
// kind; only "composite" carries nested steps worth recursing into.
type RunsBlock struct {
	Using string             `yaml:"using"`
	Steps []DescriptorStep `yaml:"steps,omitempty"`
}

// DescriptorJob is one job in a reusable workflow's jobs mapping.
type DescriptorJob struct {
	Uses  string             `yaml:"uses,omitempty"`
	Steps []DescriptorStep `yaml:"steps,omitempty"`
}

// DescriptorStep is one step inside a composite action or a reusable
// workflow's job; only Uses is meaningful here.
type DescriptorStep struct {
	Uses string `yaml:"uses,omitempty"`
}

// IsComposite reports whether d describes a composite action.
func (d *ActionDescriptor) IsComposite() bool {
	return d.Runs != nil && d.Runs.Using == "composite"
}

// IsReusableWorkflow reports whether d describes a reusable workflow.
func (d *ActionDescriptor) IsReusableWorkflow() bool {
	return d.Jobs != nil
}

// candidateDescriptorPaths returns the repository paths to probe for an
// action descriptor, in GitHub's own lookup order: {dir}/action.yml,
// {dir}/action.yaml, and, when actionPath itself names a .yml/.yaml file,
// that file directly (a reusable workflow referenced by its own path).
func candidateDescriptorPaths(actionPath string) []string {
	ext := strings.ToLower(path.Ext(actionPath))
	if ext == ".yml" || ext == ".yaml" {
		return []string{actionPath}
	}
	dir := actionPath
	if dir == "" {
		return []string{"action.yml", "action.yaml"}
	}
	return []string{
		path.Join(dir, "action.yml"),
		path.Join(dir, "action.yaml"),
	}
}

// GetActionDescriptor fetches and decodes the action descriptor for
// (owner, repo, sha, actionPath), trying each candidate path in order and
// decoding the first 200 response. A descriptor found at none of the
// candidate paths yields (nil, nil); any other failure surfaces.
func (c *Client) GetActionDescriptor(ctx context.Context, owner, repo, sha, actionPath string) (*ActionDescriptor, error) {
	var descriptor *ActionDescriptor
	err := c.limiter.Do(ctx, func(ctx context.Context) error {
		for _, candidate := range candidateDescriptorPaths(actionPath) {
			content, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, candidate, &github.RepositoryContentGetOptions{Ref: sha})
			if err != nil {
				if isNotFoundError(err, resp) {
					continue
				}
				return fmt.Errorf("fetching descriptor %s/%s/%s@%s: %w", owner, repo, candidate, sha, err)
			}
			if content == nil {
				continue
			}
			raw, err := content.GetContent()
			if err != nil {
				return fmt.Errorf("decoding descriptor content %s/%s/%s@%s: %w", owner, repo, candidate, sha, err)
			}

			var d ActionDescriptor
			if err := yaml.Unmarshal([]byte(raw), &d); err != nil {
				return fmt.Errorf("parsing descriptor %s/%s/%s@%s: %w", owner, repo, candidate, sha, err)
			}
			descriptor = &d
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return descriptor, nil
}
