package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadVersionInfo(t *testing.T) {
	t.Parallel()

	info := readVersionInfo()
	if info.Version == "" {
		t.Error("expected a version (ldflags, build info or \"(devel)\")")
	}
	if info.Commit == "" {
		t.Error("expected a commit (ldflags, vcs.revision or \"unknown\")")
	}
	if info.Date == "" {
		t.Error("expected a date (ldflags, vcs.time or \"unknown\")")
	}
	if len(info.Commit) > 7 && info.Commit != commit {
		t.Errorf("expected a short commit hash, got %q", info.Commit)
	}
	if getVersion() != info.Version {
		t.Errorf("getVersion() = %q, want %q", getVersion(), info.Version)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"sitenav version", "commit:", "built:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}
