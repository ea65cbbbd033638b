package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/i18n"
)

// NewContactCmd creates the contact command.
func NewContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through the contact form service",
		Long: `Contact validates a message exactly like the site's contact form and
delivers it: through the Telegram bot when one is configured, otherwise by
opening a mailto link (with --open-mail), otherwise by printing the message
for manual sending.

Examples:
  # Send a message
  sitenav contact --name Roma --email roma@example.com \
    --subject support --message "The bot does not forward videos"

  # Print the outcome as JSON
  sitenav contact --name Roma --email roma@example.com \
    --subject bug --message "Long captions are cut" --json`,
		Args: cobra.NoArgs,
		RunE: runContactCmd,
	}

	cmd.Flags().String("name", "", "Sender name")
	cmd.Flags().String("email", "", "Sender e-mail address")
	cmd.Flags().String("subject", "", "Message subject")
	cmd.Flags().String("message", "", "Message text")
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Language of the messages (ru or en)")
	cmd.Flags().Bool("open-mail", false,
		"Open the mailto fallback in the default mail client")
	cmd.Flags().Bool("json", false, "Print the outcome as JSON")
	addStorageFlags(cmd)

	return cmd
}

// runContactCmd executes the contact command.
func runContactCmd(cmd *cobra.Command, _ []string) error {
	var f contact.Form
	var err error
	if f.Name, err = cmd.Flags().GetString("name"); err != nil {
		return err
	}
	if f.Email, err = cmd.Flags().GetString("email"); err != nil {
		return err
	}
	if f.Subject, err = cmd.Flags().GetString("subject"); err != nil {
		return err
	}
	if f.Message, err = cmd.Flags().GetString("message"); err != nil {
		return err
	}
	openMail, err := cmd.Flags().GetBool("open-mail")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if cfg.Language, err = cmd.Flags().GetString("lang"); err != nil {
		return err
	}
	if err := buildStorageConfig(cmd, cfg); err != nil {
		return err
	}
	cfg.ApplySite("")

	printer, err := i18n.New(cfg.Language)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var opener contact.Opener
	if openMail {
		opener = contact.OpenerFunc(openURL)
	}
	service := newContactService(cfg, printer, db, logger, opener)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out, err := service.Submit(ctx, f)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return err
		}
	} else {
		printOutcome(cmd.OutOrStdout(), out)
	}

	if !out.Valid() {
		return fmt.Errorf("%d invalid fields", len(out.Errors))
	}
	return nil
}

// openURL opens link with the desktop's default handler.
func openURL(ctx context.Context, link string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.CommandContext(ctx, "open", link)
	case "windows":
		c = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", link)
	default:
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return contact.ErrOpenerUnavailable
		}
		c = exec.CommandContext(ctx, "xdg-open", link)
	}
	return c.Run()
}
