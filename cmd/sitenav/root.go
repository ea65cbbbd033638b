package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitenav.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitenav",
		Short: "Headless navigator for the Media Sync Bot website",
		Long: `sitenav loads the Media Sync Bot website the way its navigation script does:
links to other pages of the site swap the main content of the current layout,
fragments are cached for the session, and the history, title and meta tags
follow every navigation.

A site is either an http(s) base URL or a directory holding the static pages.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")

	cmd.AddCommand(NewBrowseCmd())
	cmd.AddCommand(NewTourCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewContactCmd())
	cmd.AddCommand(NewConsentCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
