package descriptor

import (
	"errors"
	"iter"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int
}

type base struct {
	ID      int
	Created string
}

type withEmbedded struct {
	base
	Name string
}

type withHidden struct {
	Visible string
	hidden  int
}

type computed struct {
	First string
	Last  string
}

func (c computed) Full() string                { return c.First + " " + c.Last }
func (c *computed) Initials() (string, error) { return c.First[:1] + c.Last[:1], nil }
func (c computed) String() string              { return c.Full() }
func (c computed) Broken() (int, error)        { return 0, errors.New("boom") }
func (c computed) WithArg(int) string          { return "" }

type stamp struct{ unix int64 }

func (s stamp) String() string { return "stamp" }

func memberNames(d Descriptor) []string {
	obj, ok := d.(*Object)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(obj.Members))
	for _, m := range obj.Members {
		names = append(names, m.Name)
	}
	return names
}

func TestClassify(t *testing.T) {
	members := NewReflectMembers(DefaultMemberOptions())

	tests := []struct {
		name     string
		value    any
		declared reflect.Type
		wantKind ShapeKind
		wantType reflect.Type
	}{
		{name: "untyped nil", value: nil, wantKind: KindSingleValue},
		{name: "int", value: 42, wantKind: KindSingleValue, wantType: reflect.TypeFor[int]()},
		{name: "string", value: "hi", wantKind: KindSingleValue, wantType: reflect.TypeFor[string]()},
		{name: "struct", value: person{}, wantKind: KindObject, wantType: reflect.TypeFor[person]()},
		{name: "pointer to struct", value: &person{}, wantKind: KindObject, wantType: reflect.TypeFor[person]()},
		{name: "slice", value: []int{1}, wantKind: KindMultiValue, wantType: reflect.TypeFor[[]int]()},
		{name: "array", value: [2]int{}, wantKind: KindMultiValue, wantType: reflect.TypeFor[[2]int]()},
		{name: "map", value: map[string]int{}, wantKind: KindMultiValue, wantType: reflect.TypeFor[map[string]int]()},
		{name: "func", value: func() {}, wantKind: KindSingleValue, wantType: reflect.TypeFor[func()]()},
		{name: "stringer without members", value: stamp{}, wantKind: KindSingleValue, wantType: reflect.TypeFor[stamp]()},
		{name: "time is a leaf", value: time.Time{}, wantKind: KindSingleValue, wantType: reflect.TypeFor[time.Time]()},
		{
			name:     "interface declared type uses dynamic type",
			value:    person{},
			declared: reflect.TypeFor[any](),
			wantKind: KindObject,
			wantType: reflect.TypeFor[person](),
		},
		{
			name:     "declared type wins for nil pointer",
			value:    nil,
			declared: reflect.TypeFor[*person](),
			wantKind: KindObject,
			wantType: reflect.TypeFor[person](),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.value, tt.declared, members)
			require.NotNil(t, d)
			assert.Equal(t, tt.wantKind, d.Kind())
			assert.Equal(t, tt.wantType, d.Type())
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	members := NewReflectMembers(DefaultMemberOptions())
	v := withEmbedded{Name: "x"}
	first := Classify(v, nil, members)
	second := Classify(v, nil, members)
	assert.Equal(t, memberNames(first), memberNames(second))
	assert.Equal(t, first.Type(), second.Type())
}

func TestClassifyElementTypes(t *testing.T) {
	members := NewReflectMembers(DefaultMemberOptions())

	t.Run("typed slice", func(t *testing.T) {
		d := Classify([]person{}, nil, members).(*MultiValue)
		assert.Equal(t, reflect.TypeFor[person](), d.ElementType)
	})
	t.Run("homogeneous interface slice", func(t *testing.T) {
		d := Classify([]any{person{}, nil, person{}}, nil, members).(*MultiValue)
		assert.Equal(t, reflect.TypeFor[person](), d.ElementType)
	})
	t.Run("heterogeneous interface slice", func(t *testing.T) {
		d := Classify([]any{1, "two"}, nil, members).(*MultiValue)
		assert.Nil(t, d.ElementType)
	})
	t.Run("map entries", func(t *testing.T) {
		d := Classify(map[string]int{"a": 1}, nil, members).(*MultiValue)
		assert.Equal(t, EntryType(), d.ElementType)
	})
	t.Run("iter.Seq", func(t *testing.T) {
		var seq iter.Seq[int] = func(func(int) bool) {}
		d := Classify(seq, nil, members).(*MultiValue)
		assert.Equal(t, reflect.TypeFor[int](), d.ElementType)
	})
	t.Run("iter.Seq of any", func(t *testing.T) {
		var seq iter.Seq[any] = func(func(any) bool) {}
		d := Classify(seq, nil, members).(*MultiValue)
		assert.Nil(t, d.ElementType)
	})
	t.Run("rank", func(t *testing.T) {
		assert.Equal(t, 1, Classify([]int{}, nil, members).(*MultiValue).Rank())
		assert.Equal(t, 2, Classify([2][3]int{}, nil, members).(*MultiValue).Rank())
	})
}

func TestReflectMembersPolicies(t *testing.T) {
	tests := []struct {
		name  string
		opts  MemberOptions
		value any
		want  []string
	}{
		{
			name:  "declaration order",
			opts:  DefaultMemberOptions(),
			value: person{},
			want:  []string{"Name", "Age"},
		},
		{
			name:  "promoted fields flattened",
			opts:  DefaultMemberOptions(),
			value: withEmbedded{},
			want:  []string{"ID", "Created", "Name"},
		},
		{
			name:  "embedded kept as one member",
			opts:  MemberOptions{IncludeExported: true, IncludeUnexported: true, IncludeFields: true},
			value: withEmbedded{},
			want:  []string{"base", "Name"},
		},
		{
			name:  "unexported excluded by default",
			opts:  DefaultMemberOptions(),
			value: withHidden{},
			want:  []string{"Visible"},
		},
		{
			name:  "unexported included",
			opts:  MemberOptions{IncludeExported: true, IncludeUnexported: true, IncludeFields: true},
			value: withHidden{},
			want:  []string{"Visible", "hidden"},
		},
		{
			name:  "methods appended after fields",
			opts:  MemberOptions{IncludeExported: true, IncludeFields: true, IncludeMethods: true},
			value: computed{},
			want:  []string{"First", "Last", "Broken", "Full", "Initials"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.value, nil, NewReflectMembers(tt.opts))
			assert.Equal(t, tt.want, memberNames(d))
		})
	}
}

func TestMemberGet(t *testing.T) {
	members := NewReflectMembers(MemberOptions{
		IncludeExported:   true,
		IncludeUnexported: true,
		IncludeFields:     true,
		IncludeMethods:    true,
		IncludePromoted:   true,
	})

	byName := func(v any) map[string]Member {
		out := map[string]Member{}
		for _, m := range members.Members(reflect.TypeOf(v)) {
			out[m.Name] = m
		}
		return out
	}

	t.Run("exported field", func(t *testing.T) {
		v, err := byName(person{})["Age"].Get(person{Age: 30})
		require.NoError(t, err)
		assert.Equal(t, 30, v)
	})

	t.Run("unexported field of non-addressable value", func(t *testing.T) {
		v, err := byName(withHidden{})["hidden"].Get(withHidden{hidden: 7})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("promoted through unexported embedded struct", func(t *testing.T) {
		v, err := byName(withEmbedded{})["ID"].Get(withEmbedded{base: base{ID: 9}})
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})

	t.Run("value receiver method", func(t *testing.T) {
		v, err := byName(computed{})["Full"].Get(computed{First: "Ada", Last: "Lovelace"})
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", v)
	})

	t.Run("pointer receiver method on value", func(t *testing.T) {
		v, err := byName(computed{})["Initials"].Get(computed{First: "Ada", Last: "Lovelace"})
		require.NoError(t, err)
		assert.Equal(t, "AL", v)
	})

	t.Run("method returning error", func(t *testing.T) {
		_, err := byName(computed{})["Broken"].Get(computed{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMemberAccess)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("panicking method is recovered", func(t *testing.T) {
		_, err := byName(computed{})["Initials"].Get(computed{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMemberAccess)
	})

	t.Run("nil owner", func(t *testing.T) {
		var p *person
		_, err := byName(person{})["Name"].Get(p)
		assert.ErrorIs(t, err, ErrMemberAccess)
	})
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", TypeName(nil))
	assert.Equal(t, "int", TypeName(reflect.TypeFor[int]()))
	assert.Equal(t, "[]any", TypeName(reflect.TypeFor[[]any]()))
	assert.Equal(t, "descriptor.person", TypeName(reflect.TypeFor[person]()))
}

func TestIsNil(t *testing.T) {
	var p *person
	var m map[string]int
	var s []int
	var err error

	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"untyped nil", nil, true},
		{"nil pointer", p, true},
		{"nil map", m, true},
		{"nil slice", s, true},
		{"nil error", err, true},
		{"empty slice", []int{}, false},
		{"zero struct", person{}, false},
		{"zero int", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNil(tt.in))
		})
	}
}
