package layout

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/table"
)

// Renderer is the callback surface a strategy uses to render nested values.
// Implementations render one level deeper than the table being built.
type Renderer interface {
	// Describe classifies value (of static type t) with the member filter
	// applied.
	Describe(value any, t reflect.Type) descriptor.Descriptor
	// RenderMember reads m from owner and renders it. Access failures come
	// back as placeholder cells.
	RenderMember(owner any, m descriptor.Member) (any, table.Cell)
	// RenderElement renders one item of the collection seq.
	RenderElement(item any, seq *descriptor.MultiValue) table.Cell
	// Stringify returns the plain text form of a leaf value.
	Stringify(value any) string
}

// Env is passed to strategies for one table.
type Env struct {
	Renderer Renderer
	Context  Context
	Settings Settings
}

// Defaults are the settings a strategy uses when neither a rule nor the
// configuration sets them.
type Defaults struct {
	RowIndices    bool
	MemberTypes   bool
	RowSeparators bool
	TableHeaders  bool
}

// Settings returns d as effective settings.
func (d Defaults) Settings() Settings {
	return Settings(d)
}

// Strategy fills a table builder for objects and collections.
type Strategy interface {
	Layout() Layout
	Defaults() Defaults
	// ForCollection returns the strategy that will actually lay out seq.
	// Callers resolve settings against it so fallbacks stay consistent.
	ForCollection(seq *descriptor.MultiValue, env Env) Strategy
	ConfigureObjectTable(b *table.Builder, value any, obj *descriptor.Object, env Env)
	ConfigureCollectionTable(b *table.Builder, items limiter.Truncated[any], seq *descriptor.MultiValue, env Env)
}

var (
	vertical   Strategy = VerticalStrategy{}
	horizontal Strategy = HorizontalStrategy{}
)

// StrategyFor returns the strategy for l. Unknown layouts map to Vertical.
func StrategyFor(l Layout) Strategy {
	if l == Horizontal {
		return horizontal
	}
	return vertical
}

// CollectionTitle names a collection after its element type and size, for
// example "int[10]". Multi-dimensional arrays list every dimension, and
// sequences of unknown length show "?".
func CollectionTitle(seq *descriptor.MultiValue, total int) string {
	if seq.T != nil && seq.Rank() > 1 {
		t := seq.T
		var dims []string
		for t.Kind() == reflect.Array {
			dims = append(dims, strconv.Itoa(t.Len()))
			t = t.Elem()
		}
		return descriptor.TypeName(t) + "[" + strings.Join(dims, ",") + "]"
	}
	name := "any"
	if seq.ElementType != nil {
		name = descriptor.TypeName(seq.ElementType)
	}
	count := "?"
	if total >= 0 {
		count = strconv.Itoa(total)
	}
	return name + "[" + count + "]"
}
