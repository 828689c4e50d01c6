package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Listing is a headered table for enumerations such as connected devices or
// buffered files. Rendering is borderless so the output stays pipe-friendly.
type Listing struct {
	headers []string
	rows    [][]string
}

// NewListing creates a listing with the given column headers.
func NewListing(headers ...string) *Listing {
	return &Listing{headers: headers}
}

// AddRow appends one row of cells.
func (l *Listing) AddRow(cells ...string) {
	l.rows = append(l.rows, cells)
}

// Empty reports whether the listing has no rows.
func (l *Listing) Empty() bool {
	return len(l.rows) == 0
}

// Render writes the listing to w.
func (l *Listing) Render(w io.Writer) error {
	t := plainTable(w, "")
	t.SetHeader(l.headers)
	t.SetAutoFormatHeaders(true)
	for _, row := range l.rows {
		t.Append(row)
	}
	t.Render()
	return nil
}

// KeyValues writes label/value pairs as two aligned columns separated by a
// colon, for status blocks like the hub connection summary.
func KeyValues(w io.Writer, pairs [][2]string) error {
	t := plainTable(w, ":")
	t.SetAutoFormatHeaders(false)
	for _, p := range pairs {
		t.Append([]string{p[0], p[1]})
	}
	t.Render()
	return nil
}

// plainTable configures a tablewriter without borders or separators; only
// the column separator, if any, survives.
func plainTable(w io.Writer, colSep string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetCenterSeparator("")
	t.SetColumnSeparator(colSep)
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetBorder(false)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}
