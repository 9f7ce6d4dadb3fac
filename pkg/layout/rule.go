package layout

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

// Resolver inspects a context and returns a result, or nil for no match.
type Resolver func(ctx Context) *Result

// CheckedResolver is a Resolver that can fail. A failing rule is skipped.
type CheckedResolver func(ctx Context) (*Result, error)

// Rule is a named resolver. Rules are compared by identity.
type Rule struct {
	name    string
	resolve CheckedResolver
}

// NewRule wraps fn as a rule. The name only shows up in logs.
func NewRule(name string, fn Resolver) *Rule {
	if fn == nil {
		return &Rule{name: name}
	}
	return NewCheckedRule(name, func(ctx Context) (*Result, error) { return fn(ctx), nil })
}

// NewCheckedRule wraps a resolver that reports its own errors.
func NewCheckedRule(name string, fn CheckedResolver) *Rule {
	return &Rule{name: name, resolve: fn}
}

func (r *Rule) String() string { return r.name }

// Resolve runs the resolver. A panicking resolver is reported as an error.
func (r *Rule) Resolve(ctx Context) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("rule %s panicked: %v", r.name, p)
		}
	}()
	if r.resolve == nil {
		return nil, nil
	}
	return r.resolve(ctx)
}

// ForExactType matches values of type t. Pointer levels on either side are
// ignored.
func ForExactType(t reflect.Type, res *Result) *Rule {
	return ForExactTypeFunc(t, constant(res))
}

// ForExactTypeFunc is ForExactType with a context-driven result.
func ForExactTypeFunc(t reflect.Type, fn Resolver) *Rule {
	want := descriptor.Indirect(t)
	return NewRule("exact:"+descriptor.TypeName(want), func(ctx Context) *Result {
		if ctx.Type == nil || descriptor.Indirect(ctx.Type) != want {
			return nil
		}
		return fn(ctx)
	})
}

// ForType matches values of type T.
func ForType[T any](res *Result) *Rule {
	return ForExactType(reflect.TypeFor[T](), res)
}

// ForTypeAndDerived matches t itself, pointers to it, types implementing it
// when t is an interface, and structs embedding it at any depth.
func ForTypeAndDerived(t reflect.Type, res *Result) *Rule {
	return ForTypeAndDerivedFunc(t, constant(res))
}

// ForTypeAndDerivedFunc is ForTypeAndDerived with a context-driven result.
func ForTypeAndDerivedFunc(t reflect.Type, fn Resolver) *Rule {
	return NewRule("derived:"+descriptor.TypeName(t), func(ctx Context) *Result {
		if !IsDerived(ctx.Type, t) {
			return nil
		}
		return fn(ctx)
	})
}

// When matches contexts accepted by pred.
func When(pred func(Context) bool, res *Result) *Rule {
	return NewRule("when", func(ctx Context) *Result {
		if !pred(ctx) {
			return nil
		}
		return res
	})
}

// WhenFunc lets fn decide both the match and the result.
func WhenFunc(fn Resolver) *Rule {
	return NewRule("when", fn)
}

func constant(res *Result) Resolver {
	return func(Context) *Result { return res }
}

// IsDerived reports whether t is base, a pointer to base, an implementation
// of the interface base, or a struct embedding base.
func IsDerived(t, base reflect.Type) bool {
	if t == nil || base == nil {
		return false
	}
	if base.Kind() == reflect.Interface {
		return t.Implements(base) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(base))
	}
	return embeds(descriptor.Indirect(t), descriptor.Indirect(base), 0)
}

func embeds(t, base reflect.Type, depth int) bool {
	if t == base {
		return true
	}
	if t.Kind() != reflect.Struct || depth > 8 {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && embeds(descriptor.Indirect(f.Type), base, depth+1) {
			return true
		}
	}
	return false
}

// Rules is an ordered, append-only rule list. Appends from several
// goroutines are safe; readers always see a consistent snapshot.
type Rules struct {
	snap atomic.Pointer[[]*Rule]
}

// Add appends rule.
func (r *Rules) Add(rule *Rule) {
	for {
		old := r.snap.Load()
		var cur []*Rule
		if old != nil {
			cur = *old
		}
		next := make([]*Rule, len(cur), len(cur)+1)
		copy(next, cur)
		next = append(next, rule)
		if r.snap.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Snapshot returns the rules in registration order. The slice must not be
// modified.
func (r *Rules) Snapshot() []*Rule {
	if p := r.snap.Load(); p != nil {
		return *p
	}
	return nil
}

// Len returns the number of rules.
func (r *Rules) Len() int { return len(r.Snapshot()) }

// Clear drops every rule. Clearing while other goroutines render is not
// synchronized with them.
func (r *Rules) Clear() { r.snap.Store(nil) }
