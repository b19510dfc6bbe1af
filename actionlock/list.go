// SPDX-License-Identifier: MIT

package actionlock

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/actionlock/actionlock/lockfile"
	"github.com/actionlock/actionlock/result"
)

// actionStyle and depStyle render action lines bold and dependency lines
// faint; Render is a no-op on the text itself when lipgloss detects a
// non-terminal output, so piped or captured output stays plain.
var (
	actionStyle = lipgloss.NewStyle().Bold(true)
	depStyle    = lipgloss.NewStyle().Faint(true)
)

// List renders the lockfile at opts.LockfilePath as a dependency tree for
// human consumption: each top-level action and version, with its
// transitive dependencies nested beneath it.
func List(opts ListOptions) (string, error) {
	lf, err := lockfile.Read(opts.LockfilePath)
	if err != nil {
		return "", result.Wrap(result.KindInputMalformed, "list", fmt.Errorf("reading lockfile: %w", err))
	}

	var b strings.Builder
	for _, fullName := range slices.Sorted(maps.Keys(lf.Actions)) {
		for _, action := range lf.Actions[fullName] {
			b.WriteString(actionStyle.Render(fmt.Sprintf("%s@%s %s", fullName, action.Version, action.SHA)))
			b.WriteString("\n")
			for _, dep := range action.Dependencies {
				b.WriteString(depStyle.Render(fmt.Sprintf("  └─ %s %s", dep.Ref, dep.SHA)))
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}
