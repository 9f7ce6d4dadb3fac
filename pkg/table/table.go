// Package table holds the renderer-independent table model produced by the
// layouts and the builder that assembles it.
package table

import (
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

// Style is a semantic tag attached to columns and cells. Renderers map tags
// to concrete colors; an empty tag means the renderer default.
type Style string

const (
	StyleNone        Style = ""
	StyleHeader      Style = "header"
	StyleKey         Style = "key"
	StyleValue       Style = "value"
	StyleNull        Style = "null"
	StyleMarker      Style = "marker"
	StyleIndex       Style = "index"
	StyleType        Style = "type"
	StylePlaceholder Style = "placeholder"
)

// Column is a table header.
type Column struct {
	Name  string
	Style Style
}

// Cell is a rendered value. A cell carrying a Table is a nested table and
// its Text is ignored by renderers that can draw nesting.
type Cell struct {
	Text  string
	Style Style
	Table *Table
}

// Text returns a plain cell.
func Text(s string) Cell { return Cell{Text: s} }

// Styled returns a cell with a style tag.
func Styled(s string, style Style) Cell { return Cell{Text: s, Style: style} }

// Nested returns a cell wrapping a nested table.
func Nested(t *Table) Cell { return Cell{Table: t} }

// IsNested reports whether c holds a nested table.
func (c Cell) IsNested() bool { return c.Table != nil }

// Row is one table row. Source, Member and Value describe what the row was
// built from so behaviors can derive extra cells.
type Row struct {
	Source descriptor.Descriptor
	Member *descriptor.Member
	Value  any
	Cells  []Cell
	Marker bool
}

// Table is the finished, immutable table handed to renderers.
type Table struct {
	Title         string
	Columns       []Column
	Rows          []Row
	HideHeaders   bool
	RowSeparators bool
}

// DataRows returns the number of non-marker rows.
func (t *Table) DataRows() int {
	n := 0
	for _, r := range t.Rows {
		if !r.Marker {
			n++
		}
	}
	return n
}

// Column returns the text of column col for every row, markers included.
// Nested cells yield an empty string.
func (t *Table) Column(col int) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		if col < len(r.Cells) {
			out = append(out, r.Cells[col].Text)
		} else {
			out = append(out, "")
		}
	}
	return out
}

// ColumnNames returns the header names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
