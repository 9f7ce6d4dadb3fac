package core

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/dumpx/internal/formatter"
	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/config"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/layout"
	"github.com/oakwood-commons/dumpx/pkg/logger"
	"github.com/oakwood-commons/dumpx/pkg/table"
)

const (
	// NullText is shown for nil values.
	NullText = layout.NullText
	// MaxDepthText replaces objects and collections nested deeper than the
	// configured maximum depth.
	MaxDepthText = "[max depth reached]"
)

// frame is the position of a value in the rendered tree.
type frame struct {
	depth int
	// container is the enclosing collection type for collection elements.
	container reflect.Type
}

// run holds the state shared by one Build call.
type run struct {
	cfg      *config.Config
	log      logr.Logger
	members  descriptor.MemberProvider
	handlers *handlers
	maxDepth int
}

func (e *Engine) newRun(ctx context.Context) *run {
	if ctx == nil {
		ctx = context.Background()
	}
	lgr := logger.FromContext(ctx)
	if e.logger != nil {
		lgr = e.logger
	}
	return &run{
		cfg: e.config,
		log: *lgr,
		members: entryMembers{
			base:    e.Members(),
			entries: descriptor.NewReflectMembers(descriptor.DefaultMemberOptions()),
		},
		handlers: &e.handlers,
		maxDepth: e.config.Depth(),
	}
}

// entryMembers always exposes Key and Value for map entries, whatever the
// configured member options are.
type entryMembers struct {
	base    descriptor.MemberProvider
	entries descriptor.MemberProvider
}

func (p entryMembers) Members(t reflect.Type) []descriptor.Member {
	if descriptor.Indirect(t) == descriptor.EntryType() {
		return p.entries.Members(t)
	}
	return p.base.Members(t)
}

func (r *run) value(v any, declared reflect.Type, f frame) table.Cell {
	if descriptor.IsNil(v) {
		return table.Styled(NullText, table.StyleNull)
	}
	v, declared = r.substitute(v, declared)
	if descriptor.IsNil(v) {
		return table.Styled(NullText, table.StyleNull)
	}

	switch d := r.Describe(v, declared).(type) {
	case *descriptor.Object:
		if f.depth > r.maxDepth {
			return table.Styled(MaxDepthText, table.StylePlaceholder)
		}
		return r.object(v, d, f)
	case *descriptor.MultiValue:
		if f.depth > r.maxDepth {
			return table.Styled(MaxDepthText, table.StylePlaceholder)
		}
		return r.collection(v, d, f)
	default:
		return table.Text(r.Stringify(v))
	}
}

// substitute applies the handler registered for the dynamic type of v, or
// for the type it points to. It runs at most once per value.
func (r *run) substitute(v any, declared reflect.Type) (any, reflect.Type) {
	dyn := reflect.TypeOf(v)
	h := r.handlers.lookup(dyn)
	if h == nil && dyn.Kind() == reflect.Pointer {
		if h = r.handlers.lookup(dyn.Elem()); h != nil {
			v = reflect.ValueOf(v).Elem().Interface()
			dyn = dyn.Elem()
		}
	}
	if h == nil {
		return v, declared
	}

	static := declared
	if static == nil || static.Kind() == reflect.Interface {
		static = dyn
	}
	out, ok := r.callHandler(h, v, static)
	if !ok {
		return v, declared
	}
	return out, nil
}

func (r *run) callHandler(h Handler, v any, t reflect.Type) (out any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.log.V(1).Info("custom handler failed", "type", descriptor.TypeName(t), "panic", fmt.Sprint(p))
			out, ok = nil, false
		}
	}()
	return h(v, t, r.members)
}

// Describe classifies value and applies the configured member filter.
func (r *run) Describe(value any, t reflect.Type) descriptor.Descriptor {
	d := descriptor.Classify(value, t, r.members)
	obj, ok := d.(*descriptor.Object)
	if !ok || r.cfg.MemberFilter == nil {
		return d
	}
	kept := make([]descriptor.Member, 0, len(obj.Members))
	for _, m := range obj.Members {
		if r.keep(m, value) {
			kept = append(kept, m)
		}
	}
	return obj.WithMembers(kept)
}

// keep evaluates the member filter. A filter that panics keeps the member.
func (r *run) keep(m descriptor.Member, value any) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.log.V(1).Info("member filter failed", "member", m.Name, "panic", fmt.Sprint(p))
			ok = true
		}
	}()
	return r.cfg.MemberFilter(m, value)
}

// Stringify returns the leaf text of value, looking through pointers to
// types without their own string form.
func (r *run) Stringify(value any) string {
	switch value.(type) {
	case fmt.Stringer, error:
		return formatter.Stringify(value)
	}
	return formatter.Stringify(deref(value))
}

func (r *run) object(v any, obj *descriptor.Object, f frame) table.Cell {
	ctx := layout.Context{
		Type:                obj.T,
		CurrentDepth:        f.depth,
		IsCollectionElement: f.container != nil,
		ContainerType:       f.container,
	}
	return r.layoutTable(ctx, f, nil, func(s layout.Strategy, b *table.Builder, env layout.Env) {
		s.ConfigureObjectTable(b, v, obj, env)
	})
}

func (r *run) collection(v any, seq *descriptor.MultiValue, f frame) table.Cell {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return table.Styled(NullText, table.StyleNull)
	}
	if seq.Rank() == 2 {
		return r.grid(rv, seq, f)
	}

	var items limiter.Truncated[any]
	if err := attempt(func() { items = r.items(rv) }); err != nil {
		r.log.V(1).Info("reading collection failed", "type", descriptor.TypeName(seq.T), "error", err.Error())
		return unavailable(err.Error())
	}

	ctx := layout.Context{
		Type:                seq.ElementType,
		CurrentDepth:        f.depth,
		IsCollectionElement: true,
		ContainerType:       seq.T,
	}
	return r.layoutTable(ctx, f, seq, func(s layout.Strategy, b *table.Builder, env layout.Env) {
		s.ConfigureCollectionTable(b, items, seq, env)
	})
}

type fillFunc func(s layout.Strategy, b *table.Builder, env layout.Env)

// layoutTable resolves the strategy for ctx and lets fill build the table.
// If that fails the table is rebuilt with the vertical strategy and its
// defaults, and if that fails too a placeholder is returned.
func (r *run) layoutTable(ctx layout.Context, f frame, seq *descriptor.MultiValue, fill fillFunc) table.Cell {
	lvl := &level{run: r, depth: f.depth}

	var out *table.Table
	err := attempt(func() {
		s, res := layout.Resolve(r.cfg.Table, ctx, r.log)
		env := layout.Env{Renderer: lvl, Context: ctx}
		if seq != nil {
			s = s.ForCollection(seq, env)
		}
		env.Settings = r.cfg.Table.Effective(s, res)
		out = build(s, env, fill)
	})
	if err == nil {
		return table.Nested(out)
	}
	r.log.V(1).Info("layout failed, using vertical defaults", "type", descriptor.TypeName(ctx.Type), "error", err.Error())

	err = attempt(func() {
		s := layout.StrategyFor(layout.Vertical)
		env := layout.Env{Renderer: lvl, Context: ctx, Settings: s.Defaults().Settings()}
		out = build(s, env, fill)
	})
	if err == nil {
		return table.Nested(out)
	}
	r.log.V(1).Info("vertical fallback failed", "type", descriptor.TypeName(ctx.Type), "error", err.Error())
	return unavailable(err.Error())
}

func build(s layout.Strategy, env layout.Env, fill fillFunc) *table.Table {
	b := table.NewBuilder()
	env.Settings.Apply(b, s)
	fill(s, b, env)
	return b.Build()
}

// grid lays out a two-dimensional array with one column per inner index.
// Both axes are truncated when the truncation is per dimension; marker rows
// carry their compact message in the index column.
func (r *run) grid(rv reflect.Value, seq *descriptor.MultiValue, f frame) table.Cell {
	rows, cols := rv.Len(), seq.T.Elem().Len()
	elem := seq.T.Elem().Elem()
	g := limiter.TruncateGrid(rows, cols, r.cfg.Truncation)

	indices := table.NewRowIndices()
	b := table.NewBuilder().
		SetTitle(layout.CollectionTitle(seq, rows)).
		AddBehavior(indices)
	g.Columns.ForEach(
		func(m limiter.Marker) { b.AddColumn(m.CompactMessage(), table.StyleMarker) },
		func(col, _ int) { b.AddColumn(strconv.Itoa(col)) },
	)

	added := 0
	g.Rows.ForEach(
		func(m limiter.Marker) {
			indices.Caption(added, m.CompactMessage())
			b.AddMarkerRow("")
			added++
		},
		func(row, _ int) {
			indices.Caption(added, strconv.Itoa(row))
			line := rv.Index(row)
			cells := make([]table.Cell, 0, g.Columns.Len())
			g.Columns.ForEach(
				func(limiter.Marker) { cells = append(cells, table.Cell{}) },
				func(col, _ int) {
					item := line.Index(col).Interface()
					cells = append(cells, r.value(item, elem, frame{depth: f.depth + 1, container: seq.T}))
				},
			)
			b.AddRow(nil, line.Interface(), cells...)
			added++
		},
	)
	return table.Nested(b.Build())
}

// items reads and truncates the elements of a slice, array, map or
// iter.Seq. Maps yield descriptor.Entry values ordered by key.
func (r *run) items(rv reflect.Value) limiter.Truncated[any] {
	cfg := r.cfg.Truncation
	switch rv.Kind() { //nolint:exhaustive // only collection kinds reach here
	case reflect.Map:
		return limiter.Truncate(sortedEntries(rv), cfg)
	case reflect.Func:
		return limiter.TruncateSeq(seqOf(rv), cfg)
	default:
		return limiter.Map(limiter.TruncateRange(rv.Len(), cfg), func(i int) any {
			return rv.Index(i).Interface()
		})
	}
}

// sortedEntries reads the map through an iterator, since keys such as NaN
// cannot be looked up again, and orders the entries by key.
func sortedEntries(rv reflect.Value) []any {
	type pair struct{ key, value reflect.Value }
	pairs := make([]pair, 0, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		pairs = append(pairs, pair{it.Key(), it.Value()})
	}
	slices.SortStableFunc(pairs, func(a, b pair) int { return compareKeys(a.key, b.key) })

	out := make([]any, len(pairs))
	for i, p := range pairs {
		out[i] = descriptor.Entry{Key: p.key.Interface(), Value: p.value.Interface()}
	}
	return out
}

func compareKeys(a, b reflect.Value) int {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if a.IsValid() && b.IsValid() && a.Kind() == b.Kind() {
		switch a.Kind() { //nolint:exhaustive // other kinds compare by their text
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// seqOf adapts a function with the shape of iter.Seq[T] to iter.Seq[any].
func seqOf(fn reflect.Value) iter.Seq[any] {
	yieldType := fn.Type().In(0)
	return func(yield func(any) bool) {
		cb := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
			more := yield(args[0].Interface())
			return []reflect.Value{reflect.ValueOf(more).Convert(yieldType.Out(0))}
		})
		fn.Call([]reflect.Value{cb})
	}
}

// level renders the values nested in one table, one level deeper.
type level struct {
	*run
	depth int
}

func (l *level) RenderMember(owner any, m descriptor.Member) (any, table.Cell) {
	v, err := m.Get(owner)
	if err != nil {
		l.log.V(1).Info("member unavailable", "member", m.Name, "error", err.Error())
		return nil, unavailable(strings.TrimPrefix(err.Error(), descriptor.ErrMemberAccess.Error()+": "))
	}
	return v, l.value(v, m.Type, frame{depth: l.depth + 1})
}

func (l *level) RenderElement(item any, seq *descriptor.MultiValue) table.Cell {
	return l.value(item, seq.ElementType, frame{depth: l.depth + 1, container: seq.T})
}

func unavailable(reason string) table.Cell {
	return table.Styled("<unavailable: "+reason+">", table.StylePlaceholder)
}

// attempt runs fn and converts a panic into an error.
func attempt(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	fn()
	return nil
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.CanInterface() {
		return v
	}
	return rv.Interface()
}
