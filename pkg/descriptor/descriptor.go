// Package descriptor classifies arbitrary Go values into one of three
// structural shapes used by the table layouts: single values, objects with
// named members, and multi-value sequences.
package descriptor

import (
	"fmt"
	"reflect"
)

// ShapeKind describes the general structure of a value.
type ShapeKind string

const (
	KindSingleValue ShapeKind = "single_value"
	KindObject      ShapeKind = "object"
	KindMultiValue  ShapeKind = "multi_value"
)

// Descriptor is the classified shape of a value.
type Descriptor interface {
	Kind() ShapeKind
	// Type is the classified type with pointers removed. It is nil only for
	// an untyped nil value.
	Type() reflect.Type
}

// SingleValue describes a value with no useful decomposition.
type SingleValue struct {
	T reflect.Type
}

func (d *SingleValue) Kind() ShapeKind     { return KindSingleValue }
func (d *SingleValue) Type() reflect.Type { return d.T }

// Object describes a value with named, ordered members.
type Object struct {
	T       reflect.Type
	Members []Member
}

func (d *Object) Kind() ShapeKind     { return KindObject }
func (d *Object) Type() reflect.Type { return d.T }

// WithMembers returns a copy of d exposing only the given members.
func (d *Object) WithMembers(members []Member) *Object {
	return &Object{T: d.T, Members: members}
}

// MultiValue describes an iterable value: a slice, array, map or iter.Seq.
// ElementType is nil when the elements are heterogeneous or their type is
// unknown.
type MultiValue struct {
	T           reflect.Type
	ElementType reflect.Type
}

func (d *MultiValue) Kind() ShapeKind     { return KindMultiValue }
func (d *MultiValue) Type() reflect.Type { return d.T }

// Rank returns the number of fixed-size array dimensions of the sequence
// type: 1 for slices and [N]T, 2 for [N][M]T, and so on.
func (d *MultiValue) Rank() int {
	t := d.T
	if t == nil {
		return 0
	}
	if t.Kind() != reflect.Array {
		return 1
	}
	rank := 0
	for t.Kind() == reflect.Array {
		rank++
		t = t.Elem()
	}
	return rank
}

// Entry is the element type yielded for maps. Keys are visited in sorted
// order by the dispatcher.
type Entry struct {
	Key   any
	Value any
}

var (
	entryType    = reflect.TypeFor[Entry]()
	stringerType = reflect.TypeFor[fmt.Stringer]()
	errorType    = reflect.TypeFor[error]()
)

// EntryType returns the element type used for map sequences.
func EntryType() reflect.Type { return entryType }

// Classify returns the descriptor for value, using declared as the static
// type when it is concrete. Classification never fails: anything that cannot
// be decomposed becomes a SingleValue.
func Classify(value any, declared reflect.Type, members MemberProvider) Descriptor {
	t := declared
	if t == nil || (t.Kind() == reflect.Interface && value != nil) {
		t = reflect.TypeOf(value)
	}
	if t == nil {
		return &SingleValue{}
	}
	t = Indirect(t)

	switch t.Kind() { //nolint:exhaustive // everything else is a single value
	case reflect.Struct:
		var ms []Member
		if members != nil {
			ms = members.Members(t)
		}
		if len(ms) == 0 && isStringLike(t) {
			return &SingleValue{T: t}
		}
		return &Object{T: t, Members: ms}

	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		if elem.Kind() == reflect.Interface {
			elem = homogeneousElementType(value)
		}
		return &MultiValue{T: t, ElementType: elem}

	case reflect.Map:
		return &MultiValue{T: t, ElementType: entryType}

	case reflect.Func:
		elem, ok := SeqElem(t)
		if !ok {
			return &SingleValue{T: t}
		}
		if elem.Kind() == reflect.Interface {
			elem = nil
		}
		return &MultiValue{T: t, ElementType: elem}

	default:
		return &SingleValue{T: t}
	}
}

// SeqElem reports whether t has the shape of an iter.Seq and returns its
// element type.
func SeqElem(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}
	return yield.In(0), true
}

// Indirect strips every pointer level from t.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isStringLike(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return t.Implements(stringerType) || pt.Implements(stringerType) ||
		t.Implements(errorType) || pt.Implements(errorType)
}

// homogeneousElementType returns the shared dynamic type of every non-nil
// element of an interface-typed sequence, or nil when the elements differ.
func homogeneousElementType(value any) reflect.Type {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	var shared reflect.Type
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		if shared == nil {
			shared = elem.Type()
			continue
		}
		if elem.Type() != shared {
			return nil
		}
	}
	return shared
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice,
// interface, channel or func.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // other kinds cannot be nil
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
