// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/ui/styles"
	"github.com/arthur-debert/fnassist/pkg/ui/view"
	"github.com/charmbracelet/lipgloss"
)

// Renderer provides rich terminal output using lipgloss styles
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders a report with styled labels and an aligned table
func (r *Renderer) RenderResult(result interface{}) error {
	report, ok := result.(*view.Report)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	var blocks []string
	if report.Title != "" {
		blocks = append(blocks, styles.Render("Title", report.Title))
	}
	if len(report.Fields) > 0 {
		blocks = append(blocks, renderFields(report.Fields))
	}
	if report.Table != nil && len(report.Table.Rows) > 0 {
		blocks = append(blocks, renderTable(report.Table))
	}
	for _, n := range report.Notes {
		blocks = append(blocks, styles.Render("Muted", n))
	}
	_, err := fmt.Fprintln(r.output, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}

func renderFields(fields []view.Field) string {
	width := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.Label); w > width {
			width = w
		}
	}
	key := styles.Get("Key").Width(width + 2)

	lines := make([]string, len(fields))
	for i, f := range fields {
		style := f.Style
		if style == "" {
			style = "Value"
		}
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, key.Render(f.Label+":"), styles.Render(style, f.Value))
	}
	return strings.Join(lines, "\n")
}

func renderTable(t *view.Table) string {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	render := func(row []string, style string) string {
		cells := make([]string, len(row))
		for i, cell := range row {
			s := styles.Get(style)
			cells[i] = s.Width(widths[i] + s.GetHorizontalPadding()).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}

	lines := make([]string, 0, len(t.Rows)+1)
	if len(t.Headers) > 0 {
		lines = append(lines, render(t.Headers, "Header"))
	}
	for _, row := range t.Rows {
		lines = append(lines, render(row, "Cell"))
	}
	return strings.Join(lines, "\n")
}

// RenderError renders an error in the error style. Details other than
// the guidance text are listed under it.
func (r *Renderer) RenderError(err error) error {
	out := styles.Render("Error", "Error: ") + err.Error()
	for k, v := range errors.GetErrorDetails(err) {
		if k == "guidance" {
			continue
		}
		out += "\n  " + styles.Render("Muted", fmt.Sprintf("%s: %v", k, v))
	}
	_, werr := fmt.Fprintln(r.output, out)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.Render("Success", "✓ ")+msg)
	return err
}
