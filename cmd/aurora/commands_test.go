package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("aurora %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestCommands(t *testing.T) {
	t.Setenv("AURORA_DB", filepath.Join(t.TempDir(), "aurora.db"))
	t.Setenv("AURORA_SEED", "7")

	out := run(t, "owner", "create", "--name", "ada")
	if !strings.HasPrefix(out, "owner 1 (ada)\ntoken: 1.") {
		t.Errorf("owner create printed %q", out)
	}

	out = run(t, "settlement", "create", "--owner", "1", "--name", "First Light")
	for _, want := range []string{"First Light (settlement 1)", `"First Light" was founded with 2 villagers`} {
		if !strings.Contains(out, want) {
			t.Errorf("settlement report is missing %q:\n%s", want, out)
		}
	}

	out = run(t, "tick", "--count", "2")
	if !strings.Contains(out, "tick 2 (Spring): 1 settlements, 0 failed") {
		t.Errorf("tick printed %q", out)
	}

	out = run(t, "status")
	if !strings.HasPrefix(out, "tick 2, Spring, 1 settlements") {
		t.Errorf("status printed %q", out)
	}

	out = run(t, "status", "--settlement", "1")
	if !strings.Contains(out, "Tick 2, Spring") {
		t.Errorf("settlement status printed %q", out)
	}
}

func TestTick_RejectsZeroCount(t *testing.T) {
	t.Setenv("AURORA_DB", filepath.Join(t.TempDir(), "aurora.db"))

	root := newRootCmd()
	root.SetArgs([]string{"tick", "--count", "0"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected an error for --count 0")
	}
}
