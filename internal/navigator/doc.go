// Package navigator implements single-page-style navigation over a static
// multi-page site.
//
// A Navigator owns a live page (the layout document the visitor landed on),
// a fragment cache and a session history. Navigating to a page fetches the
// target document once, extracts its main content region, and swaps that
// fragment into the live page's main region; the surrounding layout stays in
// place. After every swap the navigator runs, in order:
//
//  1. the page initializer registered for the new page's identifier
//  2. the registered hooks (collaborators such as the contact form)
//  3. the metadata update (title, canonical link, Open Graph, Twitter)
//  4. scroll to top
//  5. the active-link update of the navigation menus
//
// Load failures never reach the caller as errors: the main region shows an
// error placeholder with a retry button, and the Result describes what
// happened.
//
// Overlapping loads are resolved by cancel-superseded: starting a Load
// cancels the previous one, and a Load that is no longer the newest never
// renders. Fetches of the same URL are shared, so work done by a cancelled
// Load still fills the cache.
package navigator
