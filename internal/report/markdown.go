package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitenav/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report, including a table of visited pages.
func (w *MarkdownWriter) Write(report *model.TourReport) (int, error) {
	return w.write(model.NewSimpleReport(report), report.Pages)
}

// WriteSimple outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	return w.write(report, nil)
}

func (w *MarkdownWriter) write(report *model.SimpleReport, pages []model.PageSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	if pages != nil {
		w.writePages(md, pages)
	}
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with tour information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("Sitenav Tour Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.Site + "`"},
			{"Tour Date", report.DateToured.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Pages Failed", strconv.Itoa(report.PagesFailed)},
			{"Fetches", strconv.Itoa(report.Fetches)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasFindings() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SimpleReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	counts := []struct {
		label string
		n     int
	}{
		{"Critical", report.CriticalCount},
		{"High", report.HighCount},
		{"Medium", report.MediumCount},
		{"Low", report.LowCount},
		{"Info", report.InfoCount},
	}
	for _, c := range counts {
		if c.n > 0 {
			chart.LabelAndIntValue(c.label, uint64(c.n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"The site cannot be navigated. %d critical finding(s) block every page.",
			report.CriticalCount,
		)
	case report.HighCount > 0:
		md.Warningf(
			"Some pages fail to load. %d high severity finding(s) should be fixed.",
			report.HighCount,
		)
	case report.MediumCount > 0:
		md.Importantf(
			"Navigation works with defects. %d finding(s) affect visitors.",
			report.MediumCount,
		)
	case report.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("Every page was reached and rendered.")
	}
	md.PlainText("")
}

// writePages writes the visited pages table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, pages []model.PageSummary) {
	md.H2("Pages")
	md.PlainText("")

	if len(pages) == 0 {
		md.PlainText("No pages visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(pages))
	for i, p := range pages {
		status := "✅"
		if p.Status != model.VisitOK {
			status = "❌ " + truncateString(p.Error, 40)
		}
		title := p.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			"`" + p.URL + "`",
			truncateString(title, 50),
			strconv.Itoa(p.Depth),
			strconv.Itoa(len(p.Links)),
			status,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Depth", "Links", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Findings")
	md.PlainText("")

	if !report.HasFindings() {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		findings := report.GetFindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings followed by their impact.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			f.Title,
			truncateString(orDash(f.Value), 50),
			truncateString(orDash(f.Location), 40),
			truncateString(orDash(f.Recommendation), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Value", "Location", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Impact == "" || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		md.Details(f.Title, f.Impact)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitenav](https://github.com/nao1215/sitenav)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
