package table

import (
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

// Builder accumulates columns, rows and behaviors for one table. A Builder
// is call-scoped and not safe for concurrent use.
type Builder struct {
	title       string
	hideTitle   bool
	columns     []Column
	rows        []Row
	behaviors   []Behavior
	hideHeaders bool
	separators  bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetTitle sets the table title.
func (b *Builder) SetTitle(title string) *Builder {
	b.title = title
	return b
}

// HideTitle suppresses the title even if one is set.
func (b *Builder) HideTitle() *Builder {
	b.hideTitle = true
	return b
}

// AddColumn appends a header. The first style given is used.
func (b *Builder) AddColumn(name string, style ...Style) *Builder {
	c := Column{Name: name, Style: StyleHeader}
	if len(style) > 0 {
		c.Style = style[0]
	}
	b.columns = append(b.columns, c)
	return b
}

// AddDefaultColumns adds the key/value columns used by vertical objects.
func (b *Builder) AddDefaultColumns() *Builder {
	return b.AddColumn("Name").AddColumn("Value")
}

// Columns returns the number of columns added so far, behaviors excluded.
func (b *Builder) Columns() int { return len(b.columns) }

// AddRow appends a data row built from source and value.
func (b *Builder) AddRow(source descriptor.Descriptor, value any, cells ...Cell) *Builder {
	b.rows = append(b.rows, Row{Source: source, Value: value, Cells: cells})
	return b
}

// AddMemberRow appends a data row describing one member of an object.
func (b *Builder) AddMemberRow(member descriptor.Member, source descriptor.Descriptor, value any, cells ...Cell) *Builder {
	m := member
	b.rows = append(b.rows, Row{Source: source, Member: &m, Value: value, Cells: cells})
	return b
}

// AddMarkerRow appends a placeholder row showing text in the first cell.
// Marker rows are skipped by row numbering.
func (b *Builder) AddMarkerRow(text string, style ...Style) *Builder {
	s := StyleMarker
	if len(style) > 0 {
		s = style[0]
	}
	b.rows = append(b.rows, Row{Cells: []Cell{Styled(text, s)}, Marker: true})
	return b
}

// AddBehavior registers an augmenter. Behaviors run in registration order.
func (b *Builder) AddBehavior(behavior Behavior) *Builder {
	b.behaviors = append(b.behaviors, behavior)
	return b
}

// HideHeaders hides the header row.
func (b *Builder) HideHeaders() *Builder {
	b.hideHeaders = true
	return b
}

// ShowRowSeparators draws a separator between rows.
func (b *Builder) ShowRowSeparators() *Builder {
	b.separators = true
	return b
}

// Build finalizes the table. Rows shorter than the column count are padded
// with blank cells before behavior cells are appended.
func (b *Builder) Build() *Table {
	t := &Table{
		HideHeaders:   b.hideHeaders,
		RowSeparators: b.separators,
	}
	if !b.hideTitle {
		t.Title = b.title
	}

	width := len(b.columns)
	t.Columns = append(t.Columns, b.columns...)
	for _, behavior := range b.behaviors {
		t.Columns = append(t.Columns, behavior.Columns()...)
	}

	t.Rows = make([]Row, 0, len(b.rows))
	for i, r := range b.rows {
		cells := make([]Cell, 0, len(t.Columns))
		cells = append(cells, r.Cells...)
		for len(cells) < width {
			cells = append(cells, Cell{})
		}

		ctx := BehaviorContext{TotalRows: len(b.rows), AddedRows: i, IsMarkerRow: r.Marker}
		for _, behavior := range b.behaviors {
			cells = append(cells, behavior.Cells(r, ctx)...)
		}

		r.Cells = cells
		t.Rows = append(t.Rows, r)
	}
	return t
}
