// Package testutil provides shared test helpers for Stellar Go tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aymanbagabas/go-udiff"
	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from the module root to the scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario is one end-to-end case loaded from a YAML file.
type Scenario struct {
	Name string `yaml:"-"`
	// Cmd is run, check or fmt.
	Cmd  string   `yaml:"cmd"`
	Mode string   `yaml:"mode,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
	// Source is the whole file for script runs. REPL scenarios use Chunks,
	// one entry per submitted input.
	Source      string         `yaml:"source,omitempty"`
	Chunks      []string       `yaml:"chunks,omitempty"`
	Diagnostics string         `yaml:"diagnostics,omitempty"`
	Expect      ExpectedResult `yaml:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode       int     `yaml:"exit_code"`
	Stdout         *string `yaml:"stdout,omitempty"`
	Stderr         *string `yaml:"stderr,omitempty"`
	StderrContains string  `yaml:"stderr_contains,omitempty"`
}

// LoadScenario decodes a single scenario file. Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if s.Cmd == "" {
		s.Cmd = "run"
	}
	return &s, nil
}

// LoadScenarios loads every *.yaml file under root, sorted by name.
func LoadScenarios(root string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(root, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Diff returns a unified diff from want to got, or "" when they match.
func Diff(label, want, got string) string {
	if want == got {
		return ""
	}
	return udiff.Unified("want/"+label, "got/"+label, want, got)
}

// AssertText fails t with a unified diff when got differs from want.
func AssertText(t testing.TB, label, want, got string) {
	t.Helper()
	if d := Diff(label, want, got); d != "" {
		t.Errorf("%s mismatch:\n%s", label, d)
	}
}
