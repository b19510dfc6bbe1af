// SPDX-License-Identifier: MIT

package actionlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/actionlock/actionlock/result"
)

// DefaultWorkflowSegment is the platform's conventional workflow folder
// path, relative to a repository root.
const DefaultWorkflowSegment = ".github/workflows"

// DiscoverWorkflowDir resolves segment to a workflow directory. An
// absolute segment is used as given. A relative segment is
// first tried under the current working directory, then under each
// successive parent directory; the first directory that exists wins.
// Exhausting every parent without a hit is fatal.
func DiscoverWorkflowDir(segment string) (string, error) {
	if segment == "" {
		segment = DefaultWorkflowSegment
	}
	if filepath.IsAbs(segment) {
		if info, err := os.Stat(segment); err != nil || !info.IsDir() {
			return "", result.Wrap(result.KindInputMalformed, "discoverWorkflowDir",
				fmt.Errorf("workflow directory %q does not exist", segment))
		}
		return segment, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", result.Wrap(result.KindInputMalformed, "discoverWorkflowDir", err)
	}

	for {
		candidate := filepath.Join(dir, segment)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", result.Wrap(result.KindInputMalformed, "discoverWorkflowDir",
		fmt.Errorf("no %q directory found under the working directory or any parent", segment))
}
