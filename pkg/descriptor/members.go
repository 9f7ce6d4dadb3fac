package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// ErrMemberAccess wraps every failure raised while reading a member value.
var ErrMemberAccess = errors.New("member access failed")

// MemberProvider enumerates the members exposed for a struct type. The order
// of the returned members must be stable for a given type.
type MemberProvider interface {
	Members(t reflect.Type) []Member
}

// MemberFilter decides, per rendered value, whether a member is shown.
type MemberFilter func(m Member, value any) bool

// Member is a named, typed accessor over a struct value.
type Member struct {
	Name string
	Type reflect.Type

	index    []int
	method   string
	withErr  bool
	exported bool
}

// IsMethod reports whether the member is a computed accessor.
func (m Member) IsMethod() bool { return m.method != "" }

// Get reads the member from owner. Panics raised by the accessor are
// recovered and returned as errors wrapping ErrMemberAccess.
func (m Member) Get(owner any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("%w: %s: %v", ErrMemberAccess, m.Name, r)
		}
	}()

	rv := reflect.ValueOf(owner)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: %s: nil owner", ErrMemberAccess, m.Name)
		}
		if rv.Kind() == reflect.Interface {
			rv = rv.Elem()
			continue
		}
		if m.method != "" && rv.Elem().Kind() != reflect.Pointer {
			break
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: %s: invalid owner", ErrMemberAccess, m.Name)
	}

	if m.method != "" {
		return m.call(rv)
	}

	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s: owner is %s, not a struct", ErrMemberAccess, m.Name, rv.Kind())
	}
	// Unexported fields, and promoted ones reached through an unexported
	// embedded struct, can only be read through an addressable copy.
	if !rv.CanAddr() && (!m.exported || len(m.index) > 1) {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}
	f, ferr := rv.FieldByIndexErr(m.index)
	if ferr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMemberAccess, m.Name, ferr)
	}
	return exposed(f), nil
}

func (m Member) call(rv reflect.Value) (any, error) {
	fn := rv.MethodByName(m.method)
	if !fn.IsValid() && rv.Kind() != reflect.Pointer {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		fn = ptr.MethodByName(m.method)
	}
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: %s: method not found", ErrMemberAccess, m.Name)
	}
	out := fn.Call(nil)
	if m.withErr {
		if errv := out[1]; !errv.IsNil() {
			return nil, fmt.Errorf("%w: %s: %w", ErrMemberAccess, m.Name, errv.Interface().(error))
		}
	}
	return exposed(out[0]), nil
}

// exposed returns the interface value of f, reading unexported fields
// through their address.
func exposed(f reflect.Value) any {
	if f.CanInterface() {
		return f.Interface()
	}
	if f.CanAddr() {
		return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem().Interface()
	}
	panic("value is not addressable")
}

// MemberOptions selects which members ReflectMembers exposes.
type MemberOptions struct {
	IncludeExported   bool `yaml:"includeExported"`
	IncludeUnexported bool `yaml:"includeUnexported"`
	IncludeFields     bool `yaml:"includeFields"`
	// IncludeMethods exposes exported methods that take no arguments and
	// return one value, optionally followed by an error.
	IncludeMethods bool `yaml:"includeMethods"`
	// IncludePromoted flattens the fields of embedded structs into the
	// outer type instead of showing the embedded value as one member.
	IncludePromoted bool `yaml:"includePromoted"`
}

// DefaultMemberOptions returns the options used when nothing is configured:
// exported fields, with embedded struct fields promoted.
func DefaultMemberOptions() MemberOptions {
	return MemberOptions{
		IncludeExported: true,
		IncludeFields:   true,
		IncludePromoted: true,
	}
}

// ReflectMembers is the reflection-backed MemberProvider.
type ReflectMembers struct {
	Options MemberOptions
}

// NewReflectMembers creates a provider for the given options.
func NewReflectMembers(opts MemberOptions) *ReflectMembers {
	return &ReflectMembers{Options: opts}
}

// skippedMethods are conversions rather than members worth a column.
var skippedMethods = map[string]bool{
	"String":        true,
	"GoString":      true,
	"Error":         true,
	"MarshalJSON":   true,
	"MarshalText":   true,
	"MarshalYAML":   true,
	"MarshalBinary": true,
}

// Members lists fields in declaration order followed by methods in method
// set order.
func (p *ReflectMembers) Members(t reflect.Type) []Member {
	t = Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var members []Member
	if p.Options.IncludeFields {
		members = append(members, p.fields(t)...)
	}
	if p.Options.IncludeMethods {
		members = append(members, p.methods(t)...)
	}
	return members
}

func (p *ReflectMembers) visible(exported bool) bool {
	if exported {
		return p.Options.IncludeExported
	}
	return p.Options.IncludeUnexported
}

func (p *ReflectMembers) fields(t reflect.Type) []Member {
	var members []Member
	if !p.Options.IncludePromoted {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Name == "_" || !p.visible(f.IsExported()) {
				continue
			}
			members = append(members, Member{Name: f.Name, Type: f.Type, index: f.Index, exported: f.IsExported()})
		}
		return members
	}

	for _, f := range reflect.VisibleFields(t) {
		if f.Name == "_" {
			continue
		}
		if f.Anonymous && Indirect(f.Type).Kind() == reflect.Struct {
			continue
		}
		if !p.visible(f.IsExported()) {
			continue
		}
		members = append(members, Member{Name: f.Name, Type: f.Type, index: f.Index, exported: f.IsExported()})
	}
	return members
}

func (p *ReflectMembers) methods(t reflect.Type) []Member {
	if !p.Options.IncludeExported {
		return nil
	}
	pt := reflect.PointerTo(t)
	var members []Member
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if skippedMethods[m.Name] || m.Type.NumIn() != 1 {
			continue
		}
		switch m.Type.NumOut() {
		case 1:
			members = append(members, Member{Name: m.Name, Type: m.Type.Out(0), method: m.Name, exported: true})
		case 2:
			if m.Type.Out(1) == errorType {
				members = append(members, Member{Name: m.Name, Type: m.Type.Out(0), method: m.Name, withErr: true, exported: true})
			}
		}
	}
	return members
}

// TypeName returns the display name of t.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "null"
	}
	return strings.ReplaceAll(t.String(), "interface {}", "any")
}
