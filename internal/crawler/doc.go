// Package crawler tours a site the way a visitor would: through the
// navigation controller, clicking every intercepted link breadth first.
//
// The Spider loads each page with the navigator, so every fetch, cache
// lookup, content swap and post-swap step a visitor would trigger also runs
// during a tour. The Parser inspects each rendered fragment. Everything
// noticed along the way becomes a finding in a model.TourReport:
//   - pages that fail to fetch and the links pointing at them
//   - pages without a heading or description
//   - titles shared by several pages
//   - in-page anchors without a target
//   - post-navigation steps that failed
//   - external links, links left to the browser and published addresses
//
// # Usage
//
//	nav := navigator.New(doc, fetcher)
//	spider := crawler.NewSpider(nav, crawler.WithMaxDepth(3))
//	report, err := spider.Tour(ctx, "https://mediasyncbot.example")
package crawler
