package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

type cobraCommand struct {
	name   string
	newCmd func() *cobra.Command
}

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "sitenav" {
			t.Errorf("expected use 'sitenav', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if cmd.PersistentFlags().Lookup("json-log") == nil {
			t.Error("expected json-log flag")
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		want := []string{"browse", "compare", "consent", "contact", "history", "init", "serve", "tour", "version"}
		// completion and help are added by cobra.
		got := make([]string, 0, len(want))
		for _, n := range names {
			if n != "completion" && n != "help" {
				got = append(got, n)
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSiteFlags(t *testing.T) {
	t.Parallel()

	for _, cmd := range []*cobraCommand{
		{name: "browse", newCmd: NewBrowseCmd},
		{name: "tour", newCmd: NewTourCmd},
	} {
		t.Run(cmd.name, func(t *testing.T) {
			t.Parallel()
			c := cmd.newCmd()
			flags := map[string]string{
				"site":    "s",
				"entry":   "e",
				"timeout": "t",
				"lang":    "l",
				"config":  "c",
			}
			for name, shorthand := range flags {
				f := c.Flags().Lookup(name)
				if f == nil {
					t.Errorf("expected flag %q", name)
					continue
				}
				if f.Shorthand != shorthand {
					t.Errorf("flag %q: expected shorthand %q, got %q", name, shorthand, f.Shorthand)
				}
			}
			for _, name := range []string{"selector", "origin", "proxy", "max-body-size", "prefetch", "no-animate", "db-dir", "no-db"} {
				if c.Flags().Lookup(name) == nil {
					t.Errorf("expected flag %q", name)
				}
			}
		})
	}
}
