// SPDX-License-Identifier: MIT

// Package workflow reads a directory of CI workflow documents and extracts
// the deduplicated set of action references they declare.
package workflow

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/actionlock/actionlock/actionref"
	"github.com/actionlock/actionlock/utils"
)

// Workflow mirrors a subset of the workflow document schema. Besides Jobs,
// the only field ExtractActionRefs consults, it keeps a set of common
// fields on decode; schema fields not declared on Workflow, Job or Step are
// dropped.
type Workflow struct {
	Name        string         `yaml:"name,omitempty"`
	RunName     string         `yaml:"run-name,omitempty"`
	On          any            `yaml:"on,omitempty"`
	Permissions any            `yaml:"permissions,omitempty"`
	Env         map[string]any `yaml:"env,omitempty"`
	Defaults    *Defaults      `yaml:"defaults,omitempty"`
	Concurrency any            `yaml:"concurrency,omitempty"`
	Jobs        map[string]Job `yaml:"jobs"`

	// Path is the source file this Workflow was decoded from. Not part of the
	// document schema; set by ParseWorkflowDir.
	Path string `yaml:"-"`
}

// Defaults holds workflow- or job-level default run settings.
type Defaults struct {
	Run *RunDefaults `yaml:"run,omitempty"`
}

// RunDefaults holds default shell/working-directory settings for steps.
type RunDefaults struct {
	Shell            string `yaml:"shell,omitempty"`
	WorkingDirectory string `yaml:"working-directory,omitempty"`
}

// Job is a single job within a Workflow.
type Job struct {
	Name        string         `yaml:"name,omitempty"`
	Needs       any            `yaml:"needs,omitempty"`
	Permissions any            `yaml:"permissions,omitempty"`
	RunsOn      any            `yaml:"runs-on,omitempty"`
	Environment any            `yaml:"environment,omitempty"`
	Env         map[string]any `yaml:"env,omitempty"`
	Defaults    *Defaults      `yaml:"defaults,omitempty"`
	If          any            `yaml:"if,omitempty"`
	Steps       []Step         `yaml:"steps,omitempty"`
	Strategy    *Strategy      `yaml:"strategy,omitempty"`

	// Uses names a reusable workflow this job calls; With/Secrets are its
	// inputs, preserved but not inspected.
	Uses    string         `yaml:"uses,omitempty"`
	With    map[string]any `yaml:"with,omitempty"`
	Secrets any            `yaml:"secrets,omitempty"`
}

// Step is a single step within a Job. Uses is the field this package cares
// about; Run and the rest are ignored for extraction but preserved on decode.
type Step struct {
	ID   string         `yaml:"id,omitempty"`
	If   any            `yaml:"if,omitempty"`
	Name string         `yaml:"name,omitempty"`
	Uses string         `yaml:"uses,omitempty"`
	Run  string         `yaml:"run,omitempty"`
	With map[string]any `yaml:"with,omitempty"`
	Env  map[string]any `yaml:"env,omitempty"`
}

// Strategy is a job's build matrix strategy.
type Strategy struct {
	Matrix      any `yaml:"matrix,omitempty"`
	FailFast    any `yaml:"fail-fast,omitempty"`
	MaxParallel any `yaml:"max-parallel,omitempty"`
}

// ParseWorkflowDir parses every *.yml/*.yaml file directly under dir (no
// recursion into subdirectories). A file that fails to decode is reported
// in the returned error slice and dropped, not fatal to the overall parse.
func ParseWorkflowDir(dir string) ([]Workflow, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("reading workflow directory %q: %w", dir, err)}
	}

	var (
		workflows []Workflow
		errs      []error
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".yml") && !strings.HasSuffix(lower, ".yaml") {
			continue
		}

		path := filepath.Join(dir, name)
		if err := utils.ValidateWorkflowFilePath(dir, path); err != nil {
			errs = append(errs, err)
			continue
		}

		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		if len(data) == 0 {
			continue
		}

		var wf Workflow
		if err := yaml.Unmarshal(data, &wf); err != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		wf.Path = path
		workflows = append(workflows, wf)
	}

	return workflows, errs
}

// ExtractActionRefs collects every non-skip "uses" field (job-level and
// step-level) across workflows, deduplicating by the literal reference
// string. Order is preserved on first occurrence: within a workflow, jobs
// are visited in sorted job-name order (not document order) and each job's
// steps in document order; workflows are visited in the order given.
func ExtractActionRefs(workflows []Workflow) []*actionref.Reference {
	seen := make(map[string]bool)
	var refs []*actionref.Reference

	collect := func(uses string) {
		if uses == "" || seen[uses] {
			return
		}
		if actionref.IsSkip(uses) {
			return
		}
		seen[uses] = true
		ref := actionref.ParseActionRef(uses)
		if ref == nil {
			return
		}
		refs = append(refs, ref)
	}

	for _, wf := range workflows {
		// gopkg.in/yaml.v3 decodes "jobs" into a Go map, which loses the
		// document's original job ordering; sort job names instead so
		// extraction is at least deterministic across runs over the same
		// workflow set.
		for _, jobName := range slices.Sorted(maps.Keys(wf.Jobs)) {
			job := wf.Jobs[jobName]
			if job.Uses != "" {
				collect(job.Uses)
			}
			for _, step := range job.Steps {
				if step.Uses != "" {
					collect(step.Uses)
				}
			}
		}
	}

	return refs
}
