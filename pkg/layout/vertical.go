package layout

import (
	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/table"
)

// VerticalStrategy lays objects out as name/value rows and collections as a
// single column with one row per item.
type VerticalStrategy struct{}

func (VerticalStrategy) Layout() Layout { return Vertical }

func (VerticalStrategy) Defaults() Defaults {
	return Defaults{TableHeaders: true}
}

func (v VerticalStrategy) ForCollection(*descriptor.MultiValue, Env) Strategy { return v }

func (VerticalStrategy) ConfigureObjectTable(b *table.Builder, value any, obj *descriptor.Object, env Env) {
	b.SetTitle(descriptor.TypeName(obj.T))
	b.AddDefaultColumns()
	for _, m := range obj.Members {
		v, cell := env.Renderer.RenderMember(value, m)
		b.AddMemberRow(m, obj, v, table.Styled(m.Name, table.StyleKey), cell)
	}
}

func (VerticalStrategy) ConfigureCollectionTable(b *table.Builder, items limiter.Truncated[any], seq *descriptor.MultiValue, env Env) {
	b.HideTitle()
	b.AddColumn(CollectionTitle(seq, items.TotalCount))
	items.ForEach(
		func(m limiter.Marker) { b.AddMarkerRow(m.Message()) },
		func(item any, _ int) { b.AddRow(nil, item, env.Renderer.RenderElement(item, seq)) },
	)
}
