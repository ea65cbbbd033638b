// Package pipeline runs the work that follows a content swap.
//
// After the navigator replaces the main content region it describes the
// swap in a Swap value and hands it to a Pipeline: an ordered list of steps
// (page-specific initializers, registered collaborator hooks, metadata
// update, scroll reset, active-link update). Steps are independent: a
// failing collaborator is recorded in the Swap and the remaining steps
// still run when the pipeline continues on error.
//
// The package also provides a BatchProcessor that runs one task per page URL
// with bounded concurrency, used to warm the fragment cache.
package pipeline
