package consent

import (
	"context"
	"fmt"
	"html"

	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// BannerID is the id of the consent banner.
const BannerID = "cookie-consent-banner"

// BannerHookName is the name of the banner's post-swap hook.
const BannerHookName = "cookie-banner"

// LearnMorePage is where the banner's "learn more" link leads.
const LearnMorePage = "cookies.html"

const bannerMarkup = `<div id="%s" class="cookie-banner show">` +
	`<div class="cookie-banner-content">` +
	`<div class="cookie-banner-text"><i class="fas fa-cookie-bite"></i>` +
	`<div><p><strong>%s</strong></p><p>%s</p></div></div>` +
	`<div class="cookie-banner-actions">` +
	`<a href="%s" class="cookie-link"><i class="fas fa-info-circle"></i> %s</a>` +
	`<button class="btn btn-primary cookie-accept"><i class="fas fa-check"></i> %s</button>` +
	`</div></div></div>`

// ShowBanner appends the banner to the page unless it is already there.
func ShowBanner(doc *page.Document, p *i18n.Printer) {
	if doc.ByID(BannerID).Length() > 0 {
		doc.ByID(BannerID).AddClass("show")
		return
	}
	doc.Body().AppendHtml(fmt.Sprintf(bannerMarkup,
		BannerID,
		html.EscapeString(p.Sprintf(i18n.BannerTitle)),
		html.EscapeString(p.Sprintf(i18n.BannerText)),
		LearnMorePage,
		html.EscapeString(p.Sprintf(i18n.BannerLearnMore)),
		html.EscapeString(p.Sprintf(i18n.BannerAccept)),
	))
}

// HideBanner removes the banner from the page.
func HideBanner(doc *page.Document) {
	doc.ByID(BannerID).Remove()
}

// BannerVisible reports whether the banner is shown.
func BannerVisible(doc *page.Document) bool {
	return doc.ByID(BannerID).HasClass("show")
}

// Controller is the part of the navigator the banner drives.
type Controller interface {
	Do(fn func(doc *page.Document) error) error
	Navigate(ctx context.Context, url string) *navigator.Result
}

// Banner is the consent banner. It shares its state with a Manager, so
// accepting in either place hides the other's prompt.
type Banner struct {
	manager *Manager
	nav     Controller
}

// NewBanner creates a banner backed by manager that navigates through nav.
func NewBanner(manager *Manager, nav Controller) *Banner {
	return &Banner{manager: manager, nav: nav}
}

// Hook returns the post-swap hook showing the banner while no choice is
// stored.
func (b *Banner) Hook() navigator.Hook {
	return navigator.HookFunc(BannerHookName, func(_ context.Context, swap *pipeline.Swap) error {
		b.Refresh(swap.Doc)
		return nil
	})
}

// Refresh shows or hides the banner according to the stored choice.
func (b *Banner) Refresh(doc *page.Document) {
	if b.manager.HasConsent() {
		HideBanner(doc)
		return
	}
	ShowBanner(doc, b.manager.Printer())
}

// Show displays the banner on the live page.
func (b *Banner) Show() error {
	return b.nav.Do(func(doc *page.Document) error {
		ShowBanner(doc, b.manager.Printer())
		return nil
	})
}

// Accept stores consent to every category and hides the banner.
func (b *Banner) Accept(ctx context.Context) error {
	return b.nav.Do(func(doc *page.Document) error {
		if err := b.manager.SetSettings(ctx, model.AllCookies()); err != nil {
			return err
		}
		HideBanner(doc)
		return nil
	})
}

// LearnMore follows the banner's link through the navigator.
func (b *Banner) LearnMore(ctx context.Context) *navigator.Result {
	href := LearnMorePage
	_ = b.nav.Do(func(doc *page.Document) error {
		if v, ok := doc.Find("#" + BannerID + " .cookie-link").Attr("href"); ok && v != "" {
			href = v
		}
		return nil
	})
	return b.nav.Navigate(ctx, href)
}
