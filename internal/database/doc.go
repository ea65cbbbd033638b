// Package database provides SQLite-based storage for sitenav.
//
// The SiteDB stores:
//   - Visits recorded by the navigator, one row per Load
//   - Cookie consent choices keyed by session
//   - Contact form submissions and how they were delivered
//   - Tour reports for comparing runs over time
//
// SQLite is used through modernc.org/sqlite so the binary stays CGO-free and
// the whole history is a single file next to the configuration.
package database
