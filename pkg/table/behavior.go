package table

import (
	"reflect"
	"strconv"

	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

// BehaviorContext is the running state passed to behaviors for each row.
type BehaviorContext struct {
	// TotalRows is the number of rows in the table, markers included.
	TotalRows int
	// AddedRows is the number of rows processed before this one.
	AddedRows   int
	IsMarkerRow bool
}

// Behavior adds columns to a table and computes their cells per row.
type Behavior interface {
	Columns() []Column
	Cells(row Row, ctx BehaviorContext) []Cell
}

// RowIndices numbers data rows from zero. Marker rows get a blank cell
// unless a caption was set for their position.
type RowIndices struct {
	Header   string
	captions map[int]string
	next     int
}

// NewRowIndices creates the index behavior with the default header.
func NewRowIndices() *RowIndices {
	return &RowIndices{Header: "#"}
}

// Caption replaces the index cell of the row at position row (counted over
// all rows, markers included) with text.
func (r *RowIndices) Caption(row int, text string) *RowIndices {
	if r.captions == nil {
		r.captions = map[int]string{}
	}
	r.captions[row] = text
	return r
}

func (r *RowIndices) Columns() []Column {
	return []Column{{Name: r.Header, Style: StyleIndex}}
}

func (r *RowIndices) Cells(_ Row, ctx BehaviorContext) []Cell {
	if ctx.AddedRows == 0 {
		r.next = 0
	}
	if caption, ok := r.captions[ctx.AddedRows]; ok {
		if !ctx.IsMarkerRow {
			r.next++
		}
		return []Cell{Styled(caption, StyleIndex)}
	}
	if ctx.IsMarkerRow {
		return []Cell{{}}
	}
	idx := r.next
	r.next++
	return []Cell{Styled(strconv.Itoa(idx), StyleIndex)}
}

// MemberTypes adds a column with the declared type of each row's member,
// falling back to the source descriptor or the dynamic value type.
type MemberTypes struct {
	Header string
}

// NewMemberTypes creates the member type behavior with the default header.
func NewMemberTypes() *MemberTypes {
	return &MemberTypes{Header: "Type"}
}

func (m *MemberTypes) Columns() []Column {
	return []Column{{Name: m.Header, Style: StyleType}}
}

func (m *MemberTypes) Cells(row Row, ctx BehaviorContext) []Cell {
	if ctx.IsMarkerRow {
		return []Cell{{}}
	}
	var t reflect.Type
	switch {
	case row.Member != nil:
		t = row.Member.Type
	case row.Source != nil && row.Source.Type() != nil:
		t = row.Source.Type()
	default:
		t = reflect.TypeOf(row.Value)
	}
	return []Cell{Styled(descriptor.TypeName(t), StyleType)}
}
