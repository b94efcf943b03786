package dataset

import "slices"

// Column names used by the current-fitting pipeline.
const (
	IndexColumn = "row_num"
	Nmac3       = "nmac3"
	Nmac4       = "nmac4"
	Nmac5       = "nmac5"
	Nmac6       = "nmac6"
)

// Channels lists the fitted channels in processing order.
var Channels = []string{Nmac3, Nmac4, Nmac5, Nmac6}

// RequiredColumns lists the columns a chunk file must carry to be fitted.
var RequiredColumns = []string{IndexColumn, Nmac3, Nmac4, Nmac5, Nmac6}

// Table is a parsed chunk file. Numeric columns hold float64 values with
// NaN for empty or missing fields; the remaining columns hold raw text.
type Table struct {
	path    string
	header  []string
	rows    int
	numeric map[string][]float64
	text    map[string][]string
}

// Path returns the file the table was loaded from.
func (t *Table) Path() string { return t.path }

// Header returns the column names in file order.
func (t *Table) Header() []string { return slices.Clone(t.header) }

// Len returns the number of data rows.
func (t *Table) Len() int { return t.rows }

// HasColumns reports whether every named column is present in the header.
func (t *Table) HasColumns(names ...string) bool {
	return len(t.Missing(names...)) == 0
}

// Missing returns the named columns absent from the header, in argument order.
func (t *Table) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !slices.Contains(t.header, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Float returns the values of a numeric column. The slice is shared with
// the table and must not be modified.
func (t *Table) Float(name string) ([]float64, bool) {
	v, ok := t.numeric[name]
	return v, ok
}

// Text returns the raw values of a non-numeric column.
func (t *Table) Text(name string) ([]string, bool) {
	v, ok := t.text[name]
	return v, ok
}

// Window returns a view of at most rows rows starting at start. The window
// is shorter when the table is, and empty when start is past the end.
func (t *Table) Window(start, rows int) *Table {
	lo := min(max(start, 0), t.rows)
	hi := min(lo+max(rows, 0), t.rows)

	w := &Table{
		path:    t.path,
		header:  t.header,
		rows:    hi - lo,
		numeric: make(map[string][]float64, len(t.numeric)),
		text:    make(map[string][]string, len(t.text)),
	}
	for name, col := range t.numeric {
		w.numeric[name] = col[lo:hi:hi]
	}
	for name, col := range t.text {
		w.text[name] = col[lo:hi:hi]
	}
	return w
}
