package navigator

import (
	"context"

	"github.com/nao1215/sitenav/internal/fragment"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// Prefetch fills the cache with the fragments of urls, fetching up to the
// prefetch concurrency in parallel. Per-URL failures are reported in the
// results; the error is only set when ctx ends the batch early.
func (n *Navigator) Prefetch(ctx context.Context, urls []string) ([]pipeline.BatchResult, error) {
	normalized := make([]string, len(urls))
	for i, url := range urls {
		normalized[i] = NormalizeURL(url)
	}

	bp := pipeline.NewBatchProcessor(
		func(ctx context.Context, url string) error {
			_, _, err := n.cache.Load(ctx, url, n.fill)
			return err
		},
		pipeline.WithConcurrency(n.prefetchConcurrency),
		pipeline.WithBatchLogger(n.logger),
	)
	return bp.ProcessBatch(ctx, normalized)
}

// PageLinks returns the normalized targets of the intercepted links in the
// current main region, without duplicates, in document order.
func (n *Navigator) PageLinks() ([]string, error) {
	n.mu.Lock()
	mainHTML, err := n.doc.MainHTML(n.contentSelector)
	n.mu.Unlock()
	if err != nil {
		return nil, &RenderTargetMissingError{Selector: n.contentSelector}
	}

	hrefs, err := fragment.Links(mainHTML)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(hrefs))
	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		if !n.Intercept(href) {
			continue
		}
		url := NormalizeURL(href)
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, url)
	}
	return links, nil
}

// PrefetchLinks prefetches every uncached page linked from the current main
// region.
func (n *Navigator) PrefetchLinks(ctx context.Context) ([]pipeline.BatchResult, error) {
	links, err := n.PageLinks()
	if err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(links))
	for _, url := range links {
		if _, ok := n.cache.Get(url); !ok {
			pending = append(pending, url)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	return n.Prefetch(ctx, pending)
}
