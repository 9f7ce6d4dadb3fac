package layout

import (
	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/table"
)

// NullText is shown for nil collection items.
const NullText = "null"

// HorizontalStrategy lays objects out as one row with a column per member
// and collections as one row per item with a column per element member.
// Collections whose elements have no members are laid out vertically.
type HorizontalStrategy struct{}

func (HorizontalStrategy) Layout() Layout { return Horizontal }

func (HorizontalStrategy) Defaults() Defaults {
	return Defaults{RowIndices: true, TableHeaders: true}
}

func (h HorizontalStrategy) ForCollection(seq *descriptor.MultiValue, env Env) Strategy {
	if elementObject(seq, env) == nil {
		return vertical
	}
	return h
}

// elementObject returns the element descriptor when it is an object with
// at least one member. Columns are filtered against a nil owner.
func elementObject(seq *descriptor.MultiValue, env Env) *descriptor.Object {
	if seq.ElementType == nil {
		return nil
	}
	obj, ok := env.Renderer.Describe(nil, seq.ElementType).(*descriptor.Object)
	if !ok || len(obj.Members) == 0 {
		return nil
	}
	return obj
}

func header(m descriptor.Member, env Env) string {
	if env.Settings.MemberTypes {
		return m.Name + " (" + descriptor.TypeName(m.Type) + ")"
	}
	return m.Name
}

func (HorizontalStrategy) ConfigureObjectTable(b *table.Builder, value any, obj *descriptor.Object, env Env) {
	b.SetTitle(descriptor.TypeName(obj.T))
	if len(obj.Members) == 0 {
		b.AddColumn(descriptor.TypeName(obj.T))
		b.AddRow(obj, value, table.Text(env.Renderer.Stringify(value)))
		return
	}

	cells := make([]table.Cell, 0, len(obj.Members))
	for _, m := range obj.Members {
		b.AddColumn(header(m, env))
		_, cell := env.Renderer.RenderMember(value, m)
		cells = append(cells, cell)
	}
	b.AddRow(obj, value, cells...)
}

func (h HorizontalStrategy) ConfigureCollectionTable(b *table.Builder, items limiter.Truncated[any], seq *descriptor.MultiValue, env Env) {
	elem := elementObject(seq, env)
	if elem == nil {
		vertical.ConfigureCollectionTable(b, items, seq, env)
		return
	}

	b.SetTitle(CollectionTitle(seq, items.TotalCount))
	for _, m := range elem.Members {
		b.AddColumn(header(m, env))
	}
	items.ForEach(
		func(m limiter.Marker) { b.AddMarkerRow(m.Message()) },
		func(item any, _ int) {
			if descriptor.IsNil(item) {
				b.AddMarkerRow(NullText, table.StyleNull)
				return
			}
			cells := make([]table.Cell, 0, len(elem.Members))
			for _, m := range elem.Members {
				_, cell := env.Renderer.RenderMember(item, m)
				cells = append(cells, cell)
			}
			b.AddRow(elem, item, cells...)
		},
	)
}
