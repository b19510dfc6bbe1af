// SPDX-License-Identifier: MIT

// Package actionlock is the command surface the CLI wrapper calls into:
// generate, verify, and list. It wires the workflow parser,
// resolver, remote-source client, and lockfile codec into the three
// operations a caller needs.
package actionlock

// GenerateOptions configures Generate.
type GenerateOptions struct {
	WorkflowDir string // directory to discover/parse workflows from
	OutputPath  string // where the lockfile is written
	Token       string // hosting-service credential; "" uses the environment default
	RequireSHA  bool   // reject any non-SHA reference before any remote call
}

// VerifyOptions configures Verify.
type VerifyOptions struct {
	WorkflowDir    string
	LockfilePath   string
	Token          string
	SkipSHA        bool // skip the drift check
	SkipIntegrity  bool // skip the integrity check
	SkipAdvisories bool // reserved: the advisory-lookup sidecar is out of scope for the core
}

// ListOptions configures List.
type ListOptions struct {
	LockfilePath string
}
