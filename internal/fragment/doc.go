// Package fragment turns a fetched HTML document into a fragment: the inner
// markup of the document's main content region, with relative link and image
// references rewritten against the document's directory and every script and
// stylesheet element removed.
//
// The surrounding layout owns scripts and styles, so a fragment inserted into
// it must never bring its own copies.
//
// All functions here are pure: they do no I/O beyond reading the given
// reader and never touch the live page.
package fragment
