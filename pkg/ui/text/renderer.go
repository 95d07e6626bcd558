// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/fnassist/pkg/ui/view"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders a report as aligned plain text. Other values are
// printed with %+v.
func (r *Renderer) RenderResult(result interface{}) error {
	report, ok := result.(*view.Report)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	if report.Title != "" {
		fmt.Fprintf(w, "%s\n\n", report.Title)
	}
	for _, f := range report.Fields {
		fmt.Fprintf(w, "%s:\t%s\n", f.Label, f.Value)
	}
	if t := report.Table; t != nil {
		if len(report.Fields) > 0 {
			fmt.Fprintln(w)
		}
		if len(t.Headers) > 0 {
			fmt.Fprintln(w, strings.Join(t.Headers, "\t"))
		}
		for _, row := range t.Rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
	}
	for _, n := range report.Notes {
		fmt.Fprintln(w, n)
	}
	return w.Flush()
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
