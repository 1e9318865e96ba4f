package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	if d := Diff("out", "a\nb\n", "a\nb\n"); d != "" {
		t.Fatalf("expected no diff, got %q", d)
	}
	d := Diff("out", "a\nb\n", "a\nc\n")
	for _, want := range []string{"--- want/out", "+++ got/out", "-b", "+c"} {
		if !strings.Contains(d, want) {
			t.Errorf("diff missing %q:\n%s", want, d)
		}
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.yaml")
	data := "source: |\n  print 1;\nexpect:\n  exit_code: 0\n  stdout: |\n    1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Name != "sample" || s.Cmd != "run" || s.Source != "print 1;\n" {
		t.Errorf("unexpected scenario %+v", s)
	}
	if s.Expect.Stdout == nil || *s.Expect.Stdout != "1\n" || s.Expect.Stderr != nil {
		t.Errorf("unexpected expectations %+v", s.Expect)
	}
}

func TestLoadScenarioRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sauce: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}
