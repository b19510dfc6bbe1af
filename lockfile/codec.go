// SPDX-License-Identifier: MIT

package lockfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	renameio "github.com/google/renameio/v2"
)

// Read loads and decodes a Lockfile from path. It rejects documents whose
// version field is not SchemaVersion.
func Read(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %s: %w", path, err)
	}

	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile %s: %w", path, err)
	}
	if lf.Version != SchemaVersion {
		return nil, fmt.Errorf("lockfile %s has unsupported version %d, want %d", path, lf.Version, SchemaVersion)
	}
	if lf.Actions == nil {
		lf.Actions = make(map[string][]LockedAction)
	}
	return &lf, nil
}

// Write serializes lf to canonical JSON and atomically replaces path
// (write-then-rename), so a crash mid-write never leaves a corrupt
// lockfile on disk. Key order is deterministic: top-level
// version/generated/actions, with actions' keys sorted lexicographically;
// list order within each action is preserved as given.
func Write(path string, lf *Lockfile) error {
	data, err := Marshal(lf)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil { //nolint:mnd
		return fmt.Errorf("writing lockfile %s: %w", path, err)
	}
	return nil
}

// Marshal renders lf as canonical, LF-terminated JSON: top-level key order
// version/generated/actions, actions' keys sorted, list order preserved.
func Marshal(lf *Lockfile) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	fmt.Fprintf(&buf, "  %q: %d,\n", "version", lf.Version)
	generated, err := json.Marshal(lf.Generated)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(&buf, "  %q: %s,\n", "generated", generated)

	buf.WriteString("  \"actions\": {")
	keys := make([]string, 0, len(lf.Actions))
	for k := range lf.Actions {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for i, key := range keys {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteString(": ")
		actions, err := json.Marshal(lf.Actions[key])
		if err != nil {
			return nil, fmt.Errorf("marshaling actions[%s]: %w", key, err)
		}
		buf.Write(actions)
	}
	if len(keys) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("}\n}\n")

	return buf.Bytes(), nil
}
