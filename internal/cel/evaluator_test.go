package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		expr     string
		data     any
		expected any
	}{
		{"access field", "_.name", map[string]any{"name": "test"}, "test"},
		{"access number", "_.count", map[string]any{"count": 42}, int64(42)},
		{"array index", "_[0]", []any{"first", "second"}, "first"},
		{"filter", "_.filter(x, x > 1)", []any{1, 2, 3}, []any{int64(2), int64(3)}},
		{"nested field", "_.user.email", map[string]any{"user": map[string]any{"email": "a@b.c"}}, "a@b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expr, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateCompileError(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.Evaluate("_.(", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation error")
}

func TestPredicate(t *testing.T) {
	vars := RuleVars{
		Type:                "main.Person",
		Kind:                "struct",
		Depth:               2,
		IsCollectionElement: true,
		ContainerType:       "map[string]main.Person",
		ContainerKind:       "map",
	}

	tests := []struct {
		expr string
		want bool
	}{
		{expr: "depth > 1", want: true},
		{expr: "depth == 0", want: false},
		{expr: "isCollectionElement && containerKind == 'map'", want: true},
		{expr: "type.startsWith('main.')", want: true},
		{expr: "kind == 'slice'", want: false},
		{expr: "containerType.contains('Person')", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := NewPredicate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, p.String())

			got, err := p.Match(vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicateErrors(t *testing.T) {
	_, err := NewPredicate("depth + 1")
	assert.ErrorIs(t, err, ErrNotBool)

	_, err = NewPredicate("unknown > 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation error")
}
