// Package export turns already-computed tabular data into the formats the
// back-office offers for download or printing. It holds no business logic:
// callers hand it a finished Table and pick an encoding.
package export

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// Table is a flat, row-oriented dataset: a header, data rows, and optional
// footer rows (totals). Every consumer of a screen's data receives the same
// Table value, so the CSV download can never disagree with the print view.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	Footer [][]string
}

// WriteCSV encodes the table as RFC 4180 CSV, footer rows included.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	for _, row := range t.Footer {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write footer: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var printTemplate = template.Must(template.New("print").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<table border="1" cellspacing="0" cellpadding="4">
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
<tfoot>
{{range .Footer}}<tr>{{range .}}<td><strong>{{.}}</strong></td>{{end}}</tr>
{{end}}</tfoot>
</table>
</body>
</html>
`))

// RenderPrintHTML renders the table as a self-contained, print-ready HTML
// document. Cell values are escaped by html/template.
func RenderPrintHTML(w io.Writer, t Table) error {
	if err := printTemplate.Execute(w, t); err != nil {
		return fmt.Errorf("failed to render print view: %w", err)
	}
	return nil
}

// PrintHTML is RenderPrintHTML into a string, for handlers that set
// Content-Length up front.
func PrintHTML(t Table) (string, error) {
	var b strings.Builder
	if err := RenderPrintHTML(&b, t); err != nil {
		return "", err
	}
	return b.String(), nil
}
