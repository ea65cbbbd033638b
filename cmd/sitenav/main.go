// Package main provides the entry point for the sitenav CLI.
//
// sitenav drives the Media Sync Bot website the way its navigation script
// does in a browser: same-origin links load the main content of the target
// page into the current layout instead of reloading the document.
//
// Usage:
//
//	sitenav browse <site>
//	sitenav tour <site>
//	sitenav serve <site-dir>
//
// See --help for all available options.
package main

// main is the entry point for sitenav.
func main() {
	Execute()
}
