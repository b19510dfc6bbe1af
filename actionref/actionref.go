// SPDX-License-Identifier: MIT

// Package actionref parses the "uses:" literal of a workflow step into its
// structural parts: owner, repo, an optional sub-path, and a ref (tag,
// branch, or commit SHA).
package actionref

import "strings"

// SHALength is the length of a full Git commit SHA-1 hash in hex.
const SHALength = 40

// Reference is a parsed action reference: owner/repo[/path]@ref.
type Reference struct {
	Owner string
	Repo  string
	Path  string // empty when the reference names the repository root
	Ref   string // tag, branch, or 40-hex commit SHA
	Raw   string // the original literal, preserved for dedup and lockfile output
}

// IsSkip reports whether raw names a same-repository action ("./...") or a
// container image ("docker://..."). Both are classified skip-cases and never
// reach the resolver.
func IsSkip(raw string) bool {
	return strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "docker://")
}

// IsSHA reports whether r is a 40-character hex commit identifier,
// case-insensitively.
func IsSHA(r string) bool {
	if len(r) != SHALength {
		return false
	}
	for i := 0; i < len(r); i++ {
		c := r[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// ParseActionRef decodes raw into a Reference. It returns nil when raw does
// not match the grammar `owner '/' repo ('/' path)? '@' version`; callers
// treat a nil result as a non-fatal, reportable parse failure, not a fatal
// error.
//
// raw must not be a skip-case; check IsSkip before calling.
func ParseActionRef(raw string) *Reference {
	if raw == "" {
		return nil
	}

	at := strings.Index(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		// no '@', or owner/repo is empty, or version is empty
		return nil
	}
	repoPath := raw[:at]
	version := raw[at+1:]

	parts := strings.SplitN(repoPath, "/", 3) //nolint:mnd
	if len(parts) < 2 {
		return nil
	}
	owner, repo := parts[0], parts[1]
	if owner == "" || repo == "" {
		return nil
	}
	// owner/repo must not themselves carry another '@' (cutting raw at its
	// first '@' already guarantees this, since repoPath is everything before it).

	var path string
	if len(parts) == 3 { //nolint:mnd
		path = parts[2]
		if path == "" {
			return nil
		}
	}

	return &Reference{
		Owner: owner,
		Repo:  repo,
		Path:  path,
		Ref:   version,
		Raw:   raw,
	}
}

// FullName returns "owner/repo[/path]".
func FullName(r *Reference) string {
	if r.Path == "" {
		return r.Owner + "/" + r.Repo
	}
	return r.Owner + "/" + r.Repo + "/" + r.Path
}

// RepoFullName returns "owner/repo", ignoring any sub-path.
func RepoFullName(r *Reference) string {
	return r.Owner + "/" + r.Repo
}

// FormatBack reconstructs the literal "owner/repo[/path]@ref" form. For any
// Reference produced by ParseActionRef, FormatBack(ParseActionRef(s)) == s.
func FormatBack(r *Reference) string {
	return FullName(r) + "@" + r.Ref
}
