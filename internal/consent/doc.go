// Package consent manages the visitor's cookie-consent choice: the consent
// banner, the settings modal of the cookies page, confirmation toasts, the
// cookie codec and the persistence of the choice.
package consent
