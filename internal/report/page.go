package report

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// PageConverter turns rendered content fragments into Markdown.
// It is safe for concurrent use.
type PageConverter struct {
	conv *converter.Converter
}

// NewPageConverter creates a PageConverter handling CommonMark elements and
// tables.
func NewPageConverter() *PageConverter {
	return &PageConverter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert converts fragment to Markdown. Relative links are resolved
// against baseURL when it is not empty.
func (c *PageConverter) Convert(fragment, baseURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if baseURL != "" {
		opts = append(opts, converter.WithDomain(baseURL))
	}

	md, err := c.conv.ConvertString(fragment, opts...)
	if err != nil {
		return "", fmt.Errorf("convert page to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// PageMarkdown converts fragment with a default PageConverter.
func PageMarkdown(fragment, baseURL string) (string, error) {
	return NewPageConverter().Convert(fragment, baseURL)
}
