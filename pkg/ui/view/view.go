// Package view is the neutral shape command results take before a
// renderer turns them into terminal, text, json or yaml output.
package view

// Field is one labelled value
type Field struct {
	Label string
	Value string
	// Style is a style name for rich output, "" for the default
	Style string
}

// Table is a list of rows under column headers
type Table struct {
	Headers []string
	Rows    [][]string
}

// Report is what a command hands to a renderer. Text renderers show Title,
// Fields, Table and Notes; structured renderers encode Data.
type Report struct {
	Title  string
	Fields []Field
	Table  *Table
	Notes  []string
	Data   interface{}
}

// New creates a report carrying data for structured output
func New(title string, data interface{}) *Report {
	return &Report{Title: title, Data: data}
}

// Add appends a field
func (r *Report) Add(label, value string) *Report {
	r.Fields = append(r.Fields, Field{Label: label, Value: value})
	return r
}

// AddStyled appends a field rendered with a named style
func (r *Report) AddStyled(label, value, style string) *Report {
	r.Fields = append(r.Fields, Field{Label: label, Value: value, Style: style})
	return r
}

// WithTable sets the table
func (r *Report) WithTable(headers []string, rows [][]string) *Report {
	r.Table = &Table{Headers: headers, Rows: rows}
	return r
}

// Note appends a free-form line shown after everything else
func (r *Report) Note(line string) *Report {
	r.Notes = append(r.Notes, line)
	return r
}

// Payload returns what structured renderers encode
func (r *Report) Payload() interface{} {
	if r.Data != nil {
		return r.Data
	}
	fields := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		fields[f.Label] = f.Value
	}
	return fields
}
