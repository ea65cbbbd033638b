// Package sitepages wires the site's collaborators into a navigator: the
// menu, the consent banner and manager, the contact form and its subject
// select, plus the initializers of individual pages.
package sitepages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/menu"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
	"github.com/nao1215/sitenav/internal/selectbox"
)

// Page identifiers with an initializer.
const (
	PageCookies = "cookies"
	PagePrivacy = "privacy"
	PageTerms   = "terms"
)

// ErrMissingAnchor is returned by a page initializer when an in-page link
// points at no element.
var ErrMissingAnchor = errors.New("anchor target missing")

// Initializers returns the page initializers keyed by page identifier.
func Initializers(m *menu.Manager, c *consent.Manager) map[string]navigator.Hook {
	return map[string]navigator.Hook{
		PageCookies: navigator.HookFunc("cookies-page", func(_ context.Context, swap *pipeline.Swap) error {
			c.CloseSettings(swap.Doc)
			c.SyncModal(swap.Doc)
			return nil
		}),
		PagePrivacy: legalPage("privacy-page", m),
		PageTerms:   legalPage("terms-page", m),
	}
}

// legalPage prepares a long document with a table of contents.
func legalPage(name string, m *menu.Manager) navigator.Hook {
	return navigator.HookFunc(name, func(_ context.Context, swap *pipeline.Swap) error {
		m.Close(swap.Doc)
		if missing := m.AnchorTargets(swap.Doc); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingAnchor, strings.Join(missing, ", "))
		}
		return nil
	})
}

// Site holds the collaborators installed into a navigator.
type Site struct {
	Menu    *menu.Manager
	Consent *consent.Manager
	Banner  *consent.Banner
	Contact *contact.Handler
	Subject *selectbox.Widget
}

// Install registers the collaborators with nav: the hooks run after every
// swap in the order menu, contact form, subject select, consent banner.
// consentMgr and service must share nav's language.
func Install(nav *navigator.Navigator, m *menu.Manager, consentMgr *consent.Manager, service *contact.Service) *Site {
	subject := selectbox.NewWidget(selectbox.New(
		selectbox.WithPrinter(service.Printer()),
		selectbox.WithPlaceholder(service.Printer().Sprintf(i18n.SubjectPrompt)),
	), nav)

	form := contact.NewHandler(service)
	form.OnReset(subject.Reset)

	site := &Site{
		Menu:    m,
		Consent: consentMgr,
		Banner:  consent.NewBanner(consentMgr, nav),
		Contact: form,
		Subject: subject,
	}

	for id, hook := range Initializers(m, consentMgr) {
		nav.SetInitializer(id, hook)
	}
	nav.AddHook(m.Hook())
	nav.AddHook(form.Hook())
	nav.AddHook(subject.Hook())
	nav.AddHook(site.Banner.Hook())
	return site
}

// Click dispatches a click on the element with the given id to the
// collaborator owning it. It reports whether any collaborator handled it.
func (s *Site) Click(ctx context.Context, nav *navigator.Navigator, id string) (bool, error) {
	switch id {
	case menu.ToggleID:
		return true, nav.Do(func(doc *page.Document) error {
			s.Menu.Toggle(doc)
			return nil
		})
	case menu.ScrollTopID:
		return true, nav.Do(func(doc *page.Document) error {
			s.Menu.ScrollToTop(doc)
			return nil
		})
	case "close-fallback":
		return true, nav.Do(func(doc *page.Document) error {
			contact.CloseManualCopy(doc)
			return nil
		})
	}

	handled := false
	err := nav.Do(func(doc *page.Document) error {
		var err error
		handled, err = s.Consent.HandleClick(ctx, doc, id)
		return err
	})
	return handled, err
}
