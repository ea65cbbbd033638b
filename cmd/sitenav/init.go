package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/contact"
)

//go:embed templates/sitenav.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

var (
	errTelegramPair    = errors.New("--bot-token and --chat-id must be given together")
	errInvalidBotToken = errors.New("invalid bot token: expected <bot id>:<secret> as issued by BotFather")
	errInvalidChatID   = errors.New("invalid chat id: expected a number or an @channel name")
	errInvalidEmail    = errors.New("invalid contact e-mail address")
)

var (
	botTokenPattern = regexp.MustCompile(`^[0-9]+:[A-Za-z0-9_-]+$`)
	chatIDPattern   = regexp.MustCompile(`^(-?[0-9]+|@[A-Za-z0-9_]{5,})$`)
)

// Template lines replaced by the init flags. The commented Telegram lines
// are uncommented when a bot is given.
const (
	templateBotToken = `  # botToken: "123456:ABC-DEF"`
	templateChatID   = `  # chatId: "123456789"`
	templateEmail    = `  email: ` + config.DefaultContactEmail
	templateLanguage = `  language: ` + config.DefaultLanguage
)

// initSettings are the values written into the generated file.
type initSettings struct {
	botToken string
	chatID   string
	email    string
	language string
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sitenav configuration file",
		Long: `Initialize creates a new .sitenav configuration file in the current directory.

The generated file includes:
- Default entry page, content selector and ignored links
- Commented examples for host-specific cookies and headers
- Contact form delivery and language settings

Telegram delivery of the contact form is enabled by passing the bot token
and the chat id; without them messages fall back to a mailto link.

Examples:
  # Create .sitenav in current directory
  sitenav init

  # Deliver contact messages through a Telegram bot, English texts
  sitenav init --bot-token 123456:ABC-DEF --chat-id 123456789 --lang en

  # Force overwrite existing file
  sitenav init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().String("bot-token", "",
		"Telegram bot token for contact form delivery")
	cmd.Flags().String("chat-id", "",
		"Telegram chat receiving contact messages")
	cmd.Flags().String("email", config.DefaultContactEmail,
		"Recipient of the mailto fallback")
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Language of user-visible text (ru or en)")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	settings, err := readInitSettings(cmd)
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	tmpl, err := configTemplate.ReadFile("templates/sitenav.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}
	content, err := renderTemplate(tmpl, settings)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// The file may hold a bot token.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	if settings.botToken != "" {
		fmt.Fprintf(out, "Contact messages go to Telegram chat %s.\n", settings.chatID)
	} else {
		fmt.Fprintf(out, "Telegram is not configured: contact messages fall back to mailto:%s.\n", settings.email)
	}
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Cookies and headers sent to a site")
	fmt.Fprintln(out, "  - Links left to the browser")
	fmt.Fprintln(out, "  - Site name and description used in page metadata")

	return nil
}

// readInitSettings reads and checks the contact and language flags.
func readInitSettings(cmd *cobra.Command) (initSettings, error) {
	var s initSettings
	var err error
	if s.botToken, err = cmd.Flags().GetString("bot-token"); err != nil {
		return s, err
	}
	if s.chatID, err = cmd.Flags().GetString("chat-id"); err != nil {
		return s, err
	}
	if s.email, err = cmd.Flags().GetString("email"); err != nil {
		return s, err
	}
	if s.language, err = cmd.Flags().GetString("lang"); err != nil {
		return s, err
	}

	if (s.botToken == "") != (s.chatID == "") {
		return s, errTelegramPair
	}
	if s.botToken != "" && !botTokenPattern.MatchString(s.botToken) {
		return s, errInvalidBotToken
	}
	if s.chatID != "" && !chatIDPattern.MatchString(s.chatID) {
		return s, errInvalidChatID
	}
	if !contact.ValidEmail(s.email) {
		return s, fmt.Errorf("%w: %q", errInvalidEmail, s.email)
	}
	switch s.language {
	case "ru", "en":
	default:
		return s, config.ErrUnsupportedLanguage
	}
	return s, nil
}

// renderTemplate writes s into the template. Every replaced line must be
// present exactly once.
func renderTemplate(tmpl []byte, s initSettings) ([]byte, error) {
	type edit struct{ from, to string }
	edits := []edit{
		{templateEmail, "  email: " + strconv.Quote(s.email)},
		{templateLanguage, "  language: " + s.language},
	}
	if s.botToken != "" {
		edits = append(edits,
			edit{templateBotToken, "  botToken: " + strconv.Quote(s.botToken)},
			edit{templateChatID, "  chatId: " + strconv.Quote(s.chatID)},
		)
	}

	out := tmpl
	for _, e := range edits {
		if n := bytes.Count(out, []byte(e.from+"\n")); n != 1 {
			return nil, fmt.Errorf("config template: expected one %q line, found %d", e.from, n)
		}
		out = bytes.Replace(out, []byte(e.from+"\n"), []byte(e.to+"\n"), 1)
	}
	return out, nil
}
