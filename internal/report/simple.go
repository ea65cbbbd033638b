package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitenav/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Plain ASCII is used so the output can be piped to files.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose adds impact text to findings and links to pages.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report, including the visited pages.
func (w *SimpleWriter) Write(report *model.TourReport) (int, error) {
	return w.write(model.NewSimpleReport(report), report.Pages)
}

// WriteSimple outputs the summary without per-page results.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	return w.write(report, nil)
}

func (w *SimpleWriter) write(report *model.SimpleReport, pages []model.PageSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, pages)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with tour information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       SITENAV TOUR REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Site:           %s\n", report.Site)
	fmt.Fprintf(sb, "Tour Date:      %s\n", report.DateToured.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Visited:  %d\n", report.PagesVisited)
	fmt.Fprintf(sb, "Pages Failed:   %d\n", report.PagesFailed)
	fmt.Fprintf(sb, "Fetches:        %d\n", report.Fetches)

	switch {
	case report.TimedOut:
		sb.WriteString("Status:         TIMED OUT (partial results)\n")
	case report.Error != "":
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", report.Error)
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SimpleReport) {
	writeSection(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", report.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", report.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", report.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", report.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", report.InfoCount)
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  TOTAL:    %d findings\n", report.TotalFindings())
	sb.WriteString("\n")
}

// writePages writes one line per visited page.
func (w *SimpleWriter) writePages(sb *strings.Builder, pages []model.PageSummary) {
	if len(pages) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "PAGES")

	if len(pages) == 0 {
		sb.WriteString("  No pages visited\n\n")
		return
	}

	for _, p := range pages {
		mark := "+"
		if p.Status != model.VisitOK {
			mark = "x"
		}
		title := p.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(sb, "  [%s] %s  %s\n", mark, p.URL, title)
		if p.Error != "" {
			fmt.Fprintf(sb, "      Error: %s\n", p.Error)
		}
		if w.verbose {
			fmt.Fprintf(sb, "      Depth: %d  Elapsed: %s  Links: %d\n", p.Depth, p.Elapsed, len(p.Links))
		}
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.SimpleReport) {
	if !report.HasFindings() && !w.showEmpty {
		return
	}

	writeSection(sb, "FINDINGS")

	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		findings := report.GetFindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	fmt.Fprintf(sb, "[%s] %s\n", w.getSeverityIndicator(severity), severity.String())

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		fmt.Fprintf(sb, "  * %s\n", finding.Title)
		if finding.Value != "" {
			fmt.Fprintf(sb, "    Value: %s\n", finding.Value)
		}
		if finding.Location != "" {
			fmt.Fprintf(sb, "    Location: %s\n", finding.Location)
		}
		if w.verbose && finding.Impact != "" {
			fmt.Fprintf(sb, "    Impact: %s\n", finding.Impact)
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitenav\n")
	sb.WriteString("https://github.com/nao1215/sitenav\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
