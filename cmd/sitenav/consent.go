package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/model"
)

// Consent actions.
const (
	consentShow   = "show"
	consentAccept = "accept"
	consentReject = "reject"
	consentSet    = "set"
	consentReset  = "reset"
)

// NewConsentCmd creates the consent command.
func NewConsentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent <show|accept|reject|set|reset>",
		Short: "Inspect or change the stored cookie consent of a session",
		Long: `Consent reads or changes the cookie-consent choice stored for a session,
the same choice the site's banner and settings modal save. Every change
prints the Set-Cookie header a browser would receive.

Actions:
  show    print the stored choice (necessary cookies only when none is stored)
  accept  accept every cookie category
  reject  accept necessary cookies only
  set     store the categories given with --analytics and --functional
  reset   forget the choice so the banner shows again

Examples:
  sitenav consent show --session 0b7c...
  sitenav consent set --session 0b7c... --analytics`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{consentShow, consentAccept, consentReject, consentSet, consentReset},
		RunE:      runConsentCmd,
	}

	cmd.Flags().String("session", "", "Session whose choice is read or changed (required)")
	cmd.Flags().Bool("analytics", false, "Accept analytics cookies (set)")
	cmd.Flags().Bool("functional", false, "Accept functional cookies (set)")
	addStorageFlags(cmd)

	return cmd
}

// runConsentCmd executes the consent command.
func runConsentCmd(cmd *cobra.Command, args []string) error {
	action := args[0]
	sessionID, err := cmd.Flags().GetString("session")
	if err != nil {
		return err
	}
	if sessionID == "" {
		return errors.New("--session is required (see 'sitenav history --sessions')")
	}

	var settings model.ConsentSettings
	switch action {
	case consentShow, consentReset:
	case consentAccept:
		settings = model.AllCookies()
	case consentReject:
		settings = model.NecessaryOnly()
	case consentSet:
		if settings.Analytics, err = cmd.Flags().GetBool("analytics"); err != nil {
			return err
		}
		if settings.Functional, err = cmd.Flags().GetBool("functional"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	cfg := config.NewConfig()
	if err := buildStorageConfig(cmd, cfg); err != nil {
		return err
	}
	logger := setupLogger(cmd)
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if db == nil {
		return errNoDatabase
	}
	defer db.Close()

	ctx := cmd.Context()
	mgr := consent.NewManager(db, sessionID, consent.WithLogger(logger))
	if err := mgr.Load(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch action {
	case consentShow:
		if !mgr.HasConsent() {
			fmt.Fprintln(out, "No choice stored; the banner is shown.")
			printSettings(out, model.NecessaryOnly())
			return nil
		}
		printSettings(out, mgr.Settings())
	case consentReset:
		if err := mgr.Reset(ctx, nil); err != nil {
			return err
		}
		fmt.Fprintln(out, "Choice forgotten; the banner shows again.")
		fmt.Fprintf(out, "Set-Cookie: %s\n", consent.ExpiredCookie().String())
	default:
		if err := mgr.SetSettings(ctx, settings); err != nil {
			return err
		}
		saved := mgr.Settings()
		printSettings(out, saved)
		fmt.Fprintf(out, "Set-Cookie: %s\n", consent.EncodeCookie(saved, time.Now()).String())
	}
	return nil
}

// printSettings prints one line per cookie category.
func printSettings(w io.Writer, s model.ConsentSettings) {
	fmt.Fprintf(w, "  necessary:  %t\n", s.Necessary)
	fmt.Fprintf(w, "  analytics:  %t\n", s.Analytics)
	fmt.Fprintf(w, "  functional: %t\n", s.Functional)
}
