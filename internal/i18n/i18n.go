// Package i18n holds the message catalog for user-visible text.
//
// Message keys are the English texts. Russian is the default language of the
// site; English is available for every key.
package i18n

import (
	"errors"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ErrUnsupportedLanguage is returned by New for languages without a catalog.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Navigation messages.
const (
	LoadErrorTitle = "Page load error"
	LoadErrorText  = "Failed to load page: %s"
	RetryLabel     = "Try again"
	HomeLabel      = "Go to home page"
)

// Contact form messages.
const (
	NameRequired    = "Please enter your name"
	NameTooShort    = "Name must be at least 2 characters"
	NameTooLong     = "Name must not exceed 50 characters"
	EmailRequired   = "Please enter your email"
	EmailInvalid    = "Enter a valid email address (example: name@example.com)"
	MessageRequired = "Please enter a message"
	MessageTooShort = "Message must be at least 10 characters"
	MessageTooLong  = "Message must not exceed 2000 characters"
	SubjectRequired = "Please choose a subject"
	FormInvalid     = "❌ Please fix the errors in the form"
	Sending         = "Sending..."
	SentTelegram    = "✅ Message sent! We will reply within 24 hours."
	SentMailto      = "✅ Open your mail client to send the message."
	SendFailed      = "❌ Sending failed. Please write to us directly at %s"

	TelegramHeader = "📬 *New message from the %s website*"
	FieldName      = "Name"
	FieldEmail     = "Email"
	FieldSubject   = "Subject"
	FieldTime      = "Time"
	FieldDate      = "Date"
	FieldMessage   = "Message"
	FieldSource    = "Source"
	MailFooter     = "Sent from the %s website"

	CopyTitle     = "Copy the data to send:"
	CopyRecipient = "Recipient email:"
	CopySubject   = "Email subject:"
	CopyBody      = "Email body:"
	CloseLabel    = "Close"
)

// Select messages.
const (
	SelectPlaceholder = "Choose an option"
	SubjectPrompt     = "Choose a message subject"
	NothingFound      = "Nothing found"
	CustomOptionTitle = "Enter a name for the new subject:"

	OptionSupport = "Technical support"
	OptionBug     = "Report a bug"
	OptionFeature = "Suggest a feature"
	OptionBilling = "Billing questions"
	OptionAPI     = "API and integrations"
	OptionPrivacy = "Privacy"
	OptionOther   = "Other"
)

// Cookie consent messages.
const (
	AllAccepted       = "All cookies accepted"
	NecessaryAccepted = "Only necessary cookies accepted"
	SettingsSaved     = "Cookie settings saved"
	BannerTitle       = "We use cookies"
	BannerText        = "This site uses cookies to work better. Some cookies are required for the site to function, others help us analyze traffic."
	BannerLearnMore   = "Learn more"
	BannerAccept      = "Got it"
)

var russian = map[string]string{
	LoadErrorTitle: "Ошибка загрузки страницы",
	LoadErrorText:  "Не удалось загрузить страницу: %s",
	RetryLabel:     "Попробовать снова",
	HomeLabel:      "На главную",

	NameRequired:    "Пожалуйста, введите ваше имя",
	NameTooShort:    "Имя должно содержать минимум 2 символа",
	NameTooLong:     "Имя не должно превышать 50 символов",
	EmailRequired:   "Пожалуйста, введите email",
	EmailInvalid:    "Введите корректный email адрес (пример: name@example.com)",
	MessageRequired: "Пожалуйста, введите сообщение",
	MessageTooShort: "Сообщение должно содержать минимум 10 символов",
	MessageTooLong:  "Сообщение не должно превышать 2000 символов",
	SubjectRequired: "Пожалуйста, выберите тему",
	FormInvalid:     "❌ Пожалуйста, исправьте ошибки в форме",
	Sending:         "Отправка...",
	SentTelegram:    "✅ Сообщение успешно отправлено! Мы ответим вам в течение 24 часов.",
	SentMailto:      "✅ Откройте ваш почтовый клиент для отправки сообщения.",
	SendFailed:      "❌ Ошибка отправки. Пожалуйста, напишите нам напрямую на %s",

	TelegramHeader: "📬 *Новое сообщение с сайта %s*",
	FieldName:      "Имя",
	FieldEmail:     "Email",
	FieldSubject:   "Тема",
	FieldTime:      "Время",
	FieldDate:      "Дата",
	FieldMessage:   "Сообщение",
	FieldSource:    "Источник",
	MailFooter:     "Отправлено с сайта %s",

	CopyTitle:     "Скопируйте данные для отправки:",
	CopyRecipient: "Email получателя:",
	CopySubject:   "Тема письма:",
	CopyBody:      "Текст письма:",
	CloseLabel:    "Закрыть",

	SelectPlaceholder: "Выберите вариант",
	SubjectPrompt:     "Выберите тему сообщения",
	NothingFound:      "Ничего не найдено",
	CustomOptionTitle: "Введите название новой темы:",

	OptionSupport: "Техническая поддержка",
	OptionBug:     "Сообщить об ошибке",
	OptionFeature: "Предложить функцию",
	OptionBilling: "Вопросы по оплате",
	OptionAPI:     "API и интеграции",
	OptionPrivacy: "Конфиденциальность",
	OptionOther:   "Другое",

	AllAccepted:       "Все cookies приняты",
	NecessaryAccepted: "Только необходимые cookies приняты",
	SettingsSaved:     "Настройки cookies сохранены",
	BannerTitle:       "Мы используем файлы cookie",
	BannerText:        "Этот сайт использует файлы cookie для улучшения работы. Некоторые cookie необходимы для работы сайта, другие помогают нам анализировать трафик.",
	BannerLearnMore:   "Подробнее",
	BannerAccept:      "Понятно",
}

var supported = []language.Tag{language.Russian, language.English}

var (
	cat     = newCatalog()
	matcher = language.NewMatcher(supported)
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Russian))
	for key, text := range russian {
		// SetString only fails for malformed tags; both tags are constants.
		_ = b.SetString(language.Russian, key, text)
		_ = b.SetString(language.English, key, key)
	}
	return b
}

// Printer renders catalog messages in one language. It is safe for
// concurrent use.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a Printer for lang ("ru", "en", or a regional variant such as
// "en-US").
func New(lang string) (*Printer, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, ErrUnsupportedLanguage
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return nil, ErrUnsupportedLanguage
	}
	base := supported[idx]
	return &Printer{
		tag: base,
		p:   message.NewPrinter(base, message.Catalog(cat)),
	}, nil
}

// Default returns the Russian printer.
func Default() *Printer {
	return &Printer{
		tag: language.Russian,
		p:   message.NewPrinter(language.Russian, message.Catalog(cat)),
	}
}

// Sprintf formats the message for key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Lang returns the printer's language ("ru" or "en").
func (p *Printer) Lang() string {
	return p.tag.String()
}

// FormatTime renders t the way the language's locale shows a date and time.
func (p *Printer) FormatTime(t time.Time) string {
	if p.tag == language.English {
		return t.Format("1/2/2006, 3:04:05 PM")
	}
	return t.Format("02.01.2006, 15:04:05")
}
