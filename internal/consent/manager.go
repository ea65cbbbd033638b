package consent

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/page"
)

// Element ids of the cookies page and the consent banner.
const (
	ModalID            = "cookie-modal"
	AnalyticsBoxID     = "analytics-cookies"
	FunctionalBoxID    = "functional-cookies"
	AcceptAllButtonID  = "accept-all-cookies"
	RejectButtonID     = "reject-cookies"
	SettingsButtonID   = "settings-cookies"
	ModalCloseID       = "modal-close"
	SaveSettingsID     = "save-cookie-settings"
	AcceptAllModalID   = "accept-all-modal"
	ToastClass         = "cookie-toast"
	toastSelector      = "." + ToastClass
	modalDisplayOpen   = "flex"
	modalDisplayClosed = "none"
)

// Manager holds the consent choice of one session and applies it to the
// page. Methods taking a *page.Document must be called while the caller
// owns the page, e.g. from a navigator hook or inside Navigator.Do.
type Manager struct {
	mu sync.Mutex

	store     Store
	sessionID string
	printer   *i18n.Printer
	logger    *slog.Logger
	now       func() time.Time

	settings  model.ConsentSettings
	stored    bool
	listeners []func(model.ConsentSettings)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPrinter sets the language of toasts and banner text.
func WithPrinter(p *i18n.Printer) Option {
	return func(m *Manager) {
		m.printer = p
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager for sessionID backed by store. Until Load
// finds a stored choice, every category counts as accepted but HasConsent
// reports false.
func NewManager(store Store, sessionID string, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		sessionID: sessionID,
		printer:   i18n.Default(),
		logger:    slog.Default(),
		now:       time.Now,
		settings:  model.AllCookies(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the stored choice of the session.
func (m *Manager) Load(ctx context.Context) error {
	rec, err := m.store.LoadConsent(ctx, m.sessionID)
	if errors.Is(err, ErrNoConsent) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load consent: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = rec.Settings.Normalize()
	m.stored = true
	return nil
}

// Settings returns the current choice.
func (m *Manager) Settings() model.ConsentSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// HasConsent reports whether a choice has been stored.
func (m *Manager) HasConsent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored
}

// SessionID returns the session the choice belongs to.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Printer returns the printer used for user-visible text.
func (m *Manager) Printer() *i18n.Printer {
	return m.printer
}

// OnChange registers fn to be called with every saved choice.
func (m *Manager) OnChange(fn func(model.ConsentSettings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// SetSettings stores s as the session's choice. Necessary cookies are
// always accepted.
func (m *Manager) SetSettings(ctx context.Context, s model.ConsentSettings) error {
	s = s.Normalize()
	rec := &model.ConsentRecord{
		SessionID: m.sessionID,
		Settings:  s,
		UpdatedAt: m.now(),
	}
	if err := m.store.SaveConsent(ctx, rec); err != nil {
		return fmt.Errorf("save consent: %w", err)
	}

	m.mu.Lock()
	m.settings = s
	m.stored = true
	listeners := append([]func(model.ConsentSettings){}, m.listeners...)
	m.mu.Unlock()

	m.logger.Debug("consent saved",
		"analytics", s.Analytics,
		"functional", s.Functional,
	)
	for _, fn := range listeners {
		fn(s)
	}
	return nil
}

// AcceptAll accepts every category, hides the banner and confirms.
func (m *Manager) AcceptAll(ctx context.Context, doc *page.Document) error {
	if err := m.SetSettings(ctx, model.AllCookies()); err != nil {
		return err
	}
	HideBanner(doc)
	m.showToast(doc, i18n.AllAccepted)
	return nil
}

// RejectNonEssential declines analytics and functional cookies, hides the
// banner and confirms.
func (m *Manager) RejectNonEssential(ctx context.Context, doc *page.Document) error {
	if err := m.SetSettings(ctx, model.NecessaryOnly()); err != nil {
		return err
	}
	HideBanner(doc)
	m.showToast(doc, i18n.NecessaryAccepted)
	return nil
}

// OpenSettings shows the settings modal with the checkboxes reflecting the
// current choice. It is a no-op on pages without the modal.
func (m *Manager) OpenSettings(doc *page.Document) {
	modal := doc.ByID(ModalID)
	if modal.Length() == 0 {
		return
	}
	page.SetStyle(modal, "display", modalDisplayOpen)
	m.SyncModal(doc)
}

// CloseSettings hides the settings modal.
func (m *Manager) CloseSettings(doc *page.Document) {
	page.SetStyle(doc.ByID(ModalID), "display", modalDisplayClosed)
}

// SettingsOpen reports whether the settings modal is shown.
func (m *Manager) SettingsOpen(doc *page.Document) bool {
	return page.Style(doc.ByID(ModalID), "display") == modalDisplayOpen
}

// SyncModal sets the modal checkboxes to the current choice.
func (m *Manager) SyncModal(doc *page.Document) {
	s := m.Settings()
	page.SetChecked(doc.ByID(AnalyticsBoxID), s.Analytics)
	page.SetChecked(doc.ByID(FunctionalBoxID), s.Functional)
}

// SaveFromModal stores the choice read from the modal checkboxes; a missing
// checkbox declines its category. The modal and the banner are closed.
func (m *Manager) SaveFromModal(ctx context.Context, doc *page.Document) error {
	s := model.ConsentSettings{
		Necessary:  true,
		Analytics:  page.Checked(doc.ByID(AnalyticsBoxID)),
		Functional: page.Checked(doc.ByID(FunctionalBoxID)),
	}
	if err := m.SetSettings(ctx, s); err != nil {
		return err
	}
	m.CloseSettings(doc)
	HideBanner(doc)
	m.showToast(doc, i18n.SettingsSaved)
	return nil
}

// AcceptAllFromModal ticks every checkbox of the modal, then saves it.
func (m *Manager) AcceptAllFromModal(ctx context.Context, doc *page.Document) error {
	page.SetChecked(doc.ByID(AnalyticsBoxID), true)
	page.SetChecked(doc.ByID(FunctionalBoxID), true)
	return m.SaveFromModal(ctx, doc)
}

// Reset forgets the stored choice and shows the banner again. doc may be
// nil when no page is attached.
func (m *Manager) Reset(ctx context.Context, doc *page.Document) error {
	if err := m.store.DeleteConsent(ctx, m.sessionID); err != nil {
		return fmt.Errorf("reset consent: %w", err)
	}

	m.mu.Lock()
	m.settings = model.AllCookies()
	m.stored = false
	m.mu.Unlock()

	if doc != nil {
		ShowBanner(doc, m.printer)
	}
	return nil
}

// HandleClick dispatches a click on one of the consent buttons by element
// id and reports whether id was a consent button.
func (m *Manager) HandleClick(ctx context.Context, doc *page.Document, id string) (bool, error) {
	switch id {
	case AcceptAllButtonID:
		return true, m.AcceptAll(ctx, doc)
	case RejectButtonID:
		return true, m.RejectNonEssential(ctx, doc)
	case SettingsButtonID:
		m.OpenSettings(doc)
		return true, nil
	case ModalCloseID:
		m.CloseSettings(doc)
		return true, nil
	case SaveSettingsID:
		return true, m.SaveFromModal(ctx, doc)
	case AcceptAllModalID:
		return true, m.AcceptAllFromModal(ctx, doc)
	default:
		return false, nil
	}
}

// showToast replaces any confirmation toast with one showing key.
func (m *Manager) showToast(doc *page.Document, key string) {
	DismissToasts(doc)
	doc.Body().AppendHtml(fmt.Sprintf(
		`<div class="%s" role="status"><i class="fas fa-check-circle"></i><span>%s</span></div>`,
		ToastClass, html.EscapeString(m.printer.Sprintf(key))))
}

// Toast returns the text of the confirmation toast, or "".
func Toast(doc *page.Document) string {
	return doc.Find(toastSelector + " span").Last().Text()
}

// DismissToasts removes every confirmation toast.
func DismissToasts(doc *page.Document) {
	doc.Find(toastSelector).Remove()
}
