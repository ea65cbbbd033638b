package report

import (
	"io"

	"github.com/nao1215/sitenav/internal/model"
)

// Writer renders tour reports.
type Writer interface {
	// Write renders a full tour report, per-page results included.
	Write(report *model.TourReport) (int, error)

	// WriteSimple renders the summary of a tour only.
	WriteSimple(report *model.SimpleReport) (int, error)
}

// MultiWriter fans a report out to several Writers, stopping at the first
// one that fails.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a MultiWriter over writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders report with every writer and returns the bytes written in
// total.
func (m *MultiWriter) Write(report *model.TourReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(report) })
}

// WriteSimple renders the summary with every writer.
func (m *MultiWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSimple(report) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	total := 0
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// summaryWriter renders only the summary, even for full reports.
type summaryWriter struct {
	Writer
}

// SummaryOnly wraps w so that Write renders the summary of the tour
// instead of every page. It pairs a detailed report file with a short
// terminal summary.
func SummaryOnly(w Writer) Writer {
	return summaryWriter{Writer: w}
}

func (s summaryWriter) Write(report *model.TourReport) (int, error) {
	return s.Writer.WriteSimple(model.NewSimpleReport(report))
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString shortens s to maxLen runes, ending in "..." when cut.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
