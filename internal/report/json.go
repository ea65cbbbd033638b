package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitenav/internal/model"
)

// JSONWriter renders reports as JSON documents, one per call.
type JSONWriter struct {
	baseWriter
	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents the output, starting each line with prefix.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint indents the output by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter returns a JSONWriter writing compact JSON to output unless
// an indent option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the tour report as it is stored.
func (w *JSONWriter) Write(report *model.TourReport) (int, error) {
	return w.encode(report)
}

// WriteSimple renders the summary.
func (w *JSONWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	return w.encode(report)
}

func (w *JSONWriter) encode(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.prefix != "" || w.indent != "" {
		data, err = json.MarshalIndent(v, w.prefix, w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}

// JSONReport is the document written by FullJSONWriter: the tour, its
// summary and the sitenav version that produced them.
type JSONReport struct {
	Version string              `json:"version"`
	Report  *model.TourReport   `json:"report"`
	Summary *model.SimpleReport `json:"summary"`
}

// NewJSONReport wraps report for output by the given sitenav version.
func NewJSONReport(report *model.TourReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
		Summary: model.NewSimpleReport(report),
	}
}

// FullJSONWriter renders tours wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter
	version string
}

// NewFullJSONWriter returns a FullJSONWriter stamping reports with version.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write renders the tour wrapped with its summary and version.
func (w *FullJSONWriter) Write(report *model.TourReport) (int, error) {
	return w.encode(NewJSONReport(report, w.version))
}
