package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := New()
	want := []string{"ui", "tree", "show", "rename", "delete", "restore", "move", "key", "mcp", "version", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("expected subcommand %q: %v", name, err)
		}
	}
	for _, name := range []string{"server", "log-file", "log-level"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}
}

func TestKeyCommand(t *testing.T) {
	root := New()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"key"})
	if err := root.Execute(); err != nil {
		t.Fatalf("key failed: %v", err)
	}
	if !strings.Contains(buf.String(), "containment") {
		t.Fatalf("expected the legend, got %q", buf.String())
	}
}

func TestMoveRequiresDestination(t *testing.T) {
	root := New()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"move", "42"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "destination") {
		t.Fatalf("expected a destination error, got %v", err)
	}
}
