package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/report"
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [site]",
		Short: "Browse a site interactively",
		Long: `Browse opens an interactive session on a site. Every navigation swaps
the main content region in place, exactly as a visitor's browser would.

Commands read from standard input:
  go <url>          navigate to a page
  click <href>      follow a link (left to the browser when not intercepted)
  back, forward     walk the session history
  retry             reload the page shown by the error placeholder
  show              print the main content as Markdown
  links             list the links of the current page
  prefetch          warm the cache with every linked page
  press <id>        click the element with the given id
  fill <field> <v>  type into the contact form (name, email, subject, message)
  choose <value>    pick a subject; "custom <label>" adds one
  submit            send the contact form
  history, cache    show the session history or the cached pages
  quit              end the session

Examples:
  # Browse a local build of the site
  sitenav browse ./public

  # Browse the live site in English
  sitenav browse https://mediasyncbot.example --lang en`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBrowseCmd,
	}
	addSiteFlags(cmd)
	cmd.Flags().String("session", "", "Resume the session with this id")
	return cmd
}

// runBrowseCmd executes the browse command.
func runBrowseCmd(cmd *cobra.Command, args []string) error {
	cfg, site, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sessionID, err := cmd.Flags().GetString("session")
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

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	s, err := newSession(ctx, cfg, site, db, logger, sessionOptions{
		sessionID: sessionID,
		record:    true,
		opener: contact.OpenerFunc(func(_ context.Context, link string) error {
			fmt.Fprintf(out, "open in your mail client: %s\n", link)
			return nil
		}),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(out, "session %s\n", s.nav.SessionID())
	printResult(out, s.nav.Start(ctx))

	b := &browser{s: s, out: out}
	return b.run(ctx, cmd.InOrStdin())
}

// browser runs the interactive command loop over a session.
type browser struct {
	s   *session
	out io.Writer
}

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// run reads commands from in until it is exhausted, ctx is done or the
// user quits.
func (b *browser) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(b.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, arg, _ := strings.Cut(line, " ")
		err := b.exec(ctx, name, strings.TrimSpace(arg))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(b.out, "error: %v\n", err)
		}
	}
}

// exec runs one command.
func (b *browser) exec(ctx context.Context, name, arg string) error {
	nav := b.s.nav
	switch name {
	case "go":
		if arg == "" {
			return errors.New("usage: go <url>")
		}
		printResult(b.out, nav.Navigate(ctx, arg))
	case "click":
		res, intercepted := nav.Click(ctx, arg)
		if !intercepted {
			fmt.Fprintf(b.out, "left to the browser: %s\n", arg)
			return nil
		}
		printResult(b.out, res)
	case "back":
		res, err := nav.Back(ctx)
		if err != nil {
			return err
		}
		printResult(b.out, res)
	case "forward":
		res, err := nav.Forward(ctx)
		if err != nil {
			return err
		}
		printResult(b.out, res)
	case "retry":
		res, err := nav.Retry(ctx)
		if err != nil {
			return err
		}
		printResult(b.out, res)
	case "show":
		return b.show()
	case "links":
		links, err := nav.PageLinks()
		if err != nil {
			return err
		}
		for _, l := range links {
			fmt.Fprintln(b.out, l)
		}
	case "prefetch":
		results, err := nav.PrefetchLinks(ctx)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(b.out, "%s: %v\n", r.URL, r.Err)
				continue
			}
			fmt.Fprintf(b.out, "%s: cached\n", r.URL)
		}
	case "press":
		handled, err := b.s.site.Click(ctx, nav, arg)
		if err != nil {
			return err
		}
		if !handled {
			fmt.Fprintf(b.out, "nothing handles #%s\n", arg)
		}
		return b.printToast()
	case "fill":
		return b.fill(arg)
	case "choose":
		ok, err := b.s.site.Subject.Choose(arg)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(b.out, "no subject %q\n", arg)
		}
	case "custom":
		item, ok, err := b.s.site.Subject.Custom(arg)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(b.out, "subject %s\n", item.Value)
		}
	case "submit":
		return b.submit(ctx)
	case "history":
		entries, index := nav.History().Entries()
		for i, e := range entries {
			marker := " "
			if i == index {
				marker = "*"
			}
			fmt.Fprintf(b.out, "%s %d %s\n", marker, i, e.Page)
		}
	case "cache":
		for _, k := range nav.Cache().Keys() {
			fmt.Fprintln(b.out, k)
		}
	case "help":
		fmt.Fprintln(b.out, "go, click, back, forward, retry, show, links, prefetch, press, fill, choose, custom, submit, history, cache, quit")
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	return nil
}

// show prints the title and the main region as Markdown.
func (b *browser) show() error {
	var title, fragment, location string
	if err := b.s.nav.Do(func(doc *page.Document) error {
		var err error
		title = doc.Title()
		location = doc.Href()
		fragment, err = doc.MainHTML(b.s.nav.ContentSelector())
		return err
	}); err != nil {
		return err
	}

	md, err := report.PageMarkdown(fragment, location)
	if err != nil {
		return err
	}
	fmt.Fprintf(b.out, "# %s\n\n%s\n", title, md)
	return nil
}

// fill types value into one field of the contact form.
func (b *browser) fill(arg string) error {
	field, value, ok := strings.Cut(arg, " ")
	if !ok {
		return errors.New("usage: fill <name|email|subject|message> <value>")
	}
	return b.s.nav.Do(func(doc *page.Document) error {
		if !contact.HasForm(doc) {
			return contact.ErrNoForm
		}
		f := contact.FormFromDocument(doc)
		switch field {
		case "name":
			f.Name = value
		case "email":
			f.Email = value
		case "subject":
			f.Subject = value
		case "message":
			f.Message = value
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		contact.FillForm(doc, f)
		return nil
	})
}

// submit sends the contact form and prints the outcome.
func (b *browser) submit(ctx context.Context) error {
	out, err := b.s.site.Contact.Submit(ctx, b.s.nav)
	if err != nil {
		return err
	}
	printOutcome(b.out, out)
	return nil
}

// printToast prints the notification shown by the last click, if any.
func (b *browser) printToast() error {
	return b.s.nav.Do(func(doc *page.Document) error {
		if t := consent.Toast(doc); t != "" {
			fmt.Fprintln(b.out, t)
			consent.DismissToasts(doc)
		}
		return nil
	})
}

// printResult prints the outcome of a Load.
func printResult(w io.Writer, res *navigator.Result) {
	switch {
	case res.Skipped:
		fmt.Fprintf(w, "%s: already shown\n", res.URL)
	case res.Superseded:
		fmt.Fprintf(w, "%s: superseded\n", res.URL)
	case res.Err != nil:
		fmt.Fprintf(w, "%s: %v\n", res.URL, res.Err)
	default:
		source := "fetched"
		if res.FromCache {
			source = "cached"
		}
		fmt.Fprintf(w, "%s: %s (%s, %s)\n", res.URL, res.Title, source, res.Elapsed.Round(1e6))
		if res.Swap != nil {
			for _, e := range res.Swap.Errors {
				fmt.Fprintf(w, "  step %s\n", e.Error())
			}
		}
	}
}

// printOutcome prints the result of a contact form submission.
func printOutcome(w io.Writer, out *contact.Outcome) {
	fmt.Fprintf(w, "[%s] %s\n", out.Kind, out.Message)
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s: %s\n", e.Field, e.Message)
	}
	if out.Manual != nil {
		fmt.Fprintf(w, "\nTo: %s\nSubject: %s\n\n%s\n", out.Manual.Recipient, out.Manual.Subject, out.Manual.Body)
	}
}
