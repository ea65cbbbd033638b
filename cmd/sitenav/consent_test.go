package main

import (
	"strings"
	"testing"

	"github.com/nao1215/sitenav/internal/consent"
)

func TestRunConsentCmd(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	const session = "0b7c5a52-8f0e-4a9e-9b57-6a2f1f8ec3d1"
	run := func(t *testing.T, args ...string) string {
		t.Helper()
		out, err := execute(t, NewConsentCmd(), "", append(args, "--session", session, "--db-dir", dbDir)...)
		if err != nil {
			t.Fatalf("consent %v: %v", args, err)
		}
		return out
	}

	out := run(t, "show")
	if !strings.Contains(out, "No choice stored") || !strings.Contains(out, "analytics:  false") {
		t.Errorf("unexpected output without a choice:\n%s", out)
	}

	out = run(t, "set", "--analytics")
	if !strings.Contains(out, "analytics:  true") || !strings.Contains(out, "functional: false") {
		t.Errorf("unexpected output after set:\n%s", out)
	}
	if !strings.Contains(out, "Set-Cookie: "+consent.CookieName+"=") {
		t.Errorf("expected a consent cookie, got:\n%s", out)
	}

	out = run(t, "show")
	if strings.Contains(out, "No choice stored") || !strings.Contains(out, "analytics:  true") {
		t.Errorf("expected the stored choice, got:\n%s", out)
	}

	out = run(t, "accept")
	if !strings.Contains(out, "functional: true") {
		t.Errorf("unexpected output after accept:\n%s", out)
	}

	out = run(t, "reset")
	if !strings.Contains(out, "Max-Age=0") && !strings.Contains(out, "Max-Age=-1") {
		t.Errorf("expected an expired cookie, got:\n%s", out)
	}
	if out := run(t, "show"); !strings.Contains(out, "No choice stored") {
		t.Errorf("expected the choice to be forgotten, got:\n%s", out)
	}
}

func TestRunConsentCmdErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"missing session", []string{"show", "--db-dir", t.TempDir()}},
		{"unknown action", []string{"grant", "--session", "s", "--db-dir", t.TempDir()}},
		{"database disabled", []string{"show", "--session", "s", "--no-db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := execute(t, NewConsentCmd(), "", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
