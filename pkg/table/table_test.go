package table

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

type recordingBehavior struct {
	name string
	seen []BehaviorContext
}

func (r *recordingBehavior) Columns() []Column { return []Column{{Name: r.name}} }

func (r *recordingBehavior) Cells(_ Row, ctx BehaviorContext) []Cell {
	r.seen = append(r.seen, ctx)
	return []Cell{Text(r.name)}
}

func TestBuilderBasics(t *testing.T) {
	tbl := NewBuilder().
		SetTitle("person").
		AddDefaultColumns().
		AddRow(nil, "Alice", Text("Name"), Text("Alice")).
		AddMarkerRow("... 2 more items").
		HideHeaders().
		ShowRowSeparators().
		Build()

	assert.Equal(t, "person", tbl.Title)
	assert.Equal(t, []string{"Name", "Value"}, tbl.ColumnNames())
	require.Len(t, tbl.Rows, 2)
	assert.True(t, tbl.HideHeaders)
	assert.True(t, tbl.RowSeparators)

	marker := tbl.Rows[1]
	assert.True(t, marker.Marker)
	require.Len(t, marker.Cells, 2)
	assert.Equal(t, "... 2 more items", marker.Cells[0].Text)
	assert.Equal(t, StyleMarker, marker.Cells[0].Style)
	assert.Empty(t, marker.Cells[1].Text)
	assert.Equal(t, 1, tbl.DataRows())
}

func TestBuilderHideTitle(t *testing.T) {
	tbl := NewBuilder().SetTitle("int[3]").HideTitle().Build()
	assert.Empty(t, tbl.Title)
}

func TestBehaviorsRunInOrderAfterStrategyCells(t *testing.T) {
	first := &recordingBehavior{name: "a"}
	second := &recordingBehavior{name: "b"}

	tbl := NewBuilder().
		AddColumn("Value").
		AddBehavior(first).
		AddBehavior(second).
		AddRow(nil, 1, Text("1")).
		AddMarkerRow("…").
		AddRow(nil, 2, Text("2")).
		Build()

	assert.Equal(t, []string{"Value", "a", "b"}, tbl.ColumnNames())
	for _, r := range tbl.Rows {
		require.Len(t, r.Cells, 3)
		assert.Equal(t, "a", r.Cells[1].Text)
		assert.Equal(t, "b", r.Cells[2].Text)
	}
	assert.Equal(t, []BehaviorContext{
		{TotalRows: 3, AddedRows: 0},
		{TotalRows: 3, AddedRows: 1, IsMarkerRow: true},
		{TotalRows: 3, AddedRows: 2},
	}, first.seen)
}

func TestRowIndices(t *testing.T) {
	t.Run("markers are skipped", func(t *testing.T) {
		tbl := NewBuilder().
			AddColumn("Value").
			AddBehavior(NewRowIndices()).
			AddRow(nil, "a", Text("a")).
			AddRow(nil, "b", Text("b")).
			AddRow(nil, "c", Text("c")).
			AddMarkerRow("null", StyleNull).
			AddRow(nil, "e", Text("e")).
			Build()

		assert.Equal(t, []string{"0", "1", "2", "", "3"}, tbl.Column(1))
		assert.Equal(t, []string{"a", "b", "c", "null", "e"}, tbl.Column(0))
	})

	t.Run("caption on marker row", func(t *testing.T) {
		tbl := NewBuilder().
			AddColumn("Value").
			AddBehavior(NewRowIndices().Caption(1, "…4")).
			AddRow(nil, 0, Text("0")).
			AddMarkerRow("... 4 more items").
			AddRow(nil, 5, Text("5")).
			Build()

		assert.Equal(t, []string{"0", "…4", "1"}, tbl.Column(1))
	})

	t.Run("rebuild restarts numbering", func(t *testing.T) {
		b := NewBuilder().AddColumn("Value").AddBehavior(NewRowIndices()).AddRow(nil, 1, Text("1"))
		b.Build()
		assert.Equal(t, []string{"0"}, b.Build().Column(1))
	})
}

func TestMemberTypes(t *testing.T) {
	member := descriptor.Member{Name: "Age", Type: reflect.TypeFor[int]()}
	tbl := NewBuilder().
		AddDefaultColumns().
		AddBehavior(NewMemberTypes()).
		AddMemberRow(member, nil, 30, Text("Age"), Text("30")).
		AddRow(nil, "x", Text("x")).
		AddMarkerRow("…").
		Build()

	assert.Equal(t, []string{"Name", "Value", "Type"}, tbl.ColumnNames())
	assert.Equal(t, []string{"int", "string", ""}, tbl.Column(2))
	require.NotNil(t, tbl.Rows[0].Member)
	assert.Equal(t, "Age", tbl.Rows[0].Member.Name)
}

func TestNestedCell(t *testing.T) {
	inner := NewBuilder().AddColumn("x").Build()
	c := Nested(inner)
	assert.True(t, c.IsNested())
	assert.False(t, Text("x").IsNested())
}
