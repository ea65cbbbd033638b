// Package report writes tour reports.
//
// Writers exist for three formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//
// Report data lives in the model package. Writers implement the Writer
// interface so they can be combined with MultiWriter.
//
// PageMarkdown converts a rendered content fragment to Markdown, which the
// browse command uses to display the current page in a terminal.
package report
