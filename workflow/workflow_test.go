// SPDX-License-Identifier: MIT

package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlock/actionlock/workflow"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)) //nolint:gosec
}

func TestParseWorkflowDir_SkipsNonYAMLAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ci.yml", "jobs:\n  build:\n    steps:\n      - uses: actions/checkout@v4\n")
	writeFile(t, dir, "README.md", "not a workflow")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "also.yml", "jobs: {}\n")

	workflows, errs := workflow.ParseWorkflowDir(dir)
	assert.Empty(t, errs)
	require.Len(t, workflows, 1)
	assert.Contains(t, workflows[0].Jobs, "build")
}

func TestParseWorkflowDir_MalformedFileIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yml", "jobs:\n  a:\n    steps:\n      - uses: actions/checkout@v4\n")
	writeFile(t, dir, "bad.yml", "jobs: [this is not a mapping")

	workflows, errs := workflow.ParseWorkflowDir(dir)
	require.Len(t, workflows, 1)
	require.Len(t, errs, 1)
}

func TestExtractActionRefs_DedupAndOrder(t *testing.T) {
	workflows := []workflow.Workflow{
		{
			Jobs: map[string]workflow.Job{
				"a": {
					Steps: []workflow.Step{
						{Uses: "actions/checkout@v4"},
						{Uses: "actions/setup-node@v3"},
						{Uses: "actions/checkout@v4"}, // duplicate literal
						{Uses: "./local-action"},       // skip
						{Uses: "docker://alpine:3.19"}, // skip
						{Uses: "not a valid ref"},       // malformed, dropped
					},
				},
				"b": {
					Uses: "owner/repo/.github/workflows/reusable.yml@main",
				},
			},
		},
	}

	refs := workflow.ExtractActionRefs(workflows)
	var literals []string
	for _, r := range refs {
		literals = append(literals, r.Raw)
	}
	assert.Equal(t, []string{
		"actions/checkout@v4",
		"actions/setup-node@v3",
		"owner/repo/.github/workflows/reusable.yml@main",
	}, literals)
}

func TestExtractActionRefs_Empty(t *testing.T) {
	refs := workflow.ExtractActionRefs(nil)
	assert.Empty(t, refs)
}
