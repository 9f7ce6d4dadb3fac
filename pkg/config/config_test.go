package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/layout"
)

type person struct {
	Name string
	Age  int
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NotNil(t, c.Table)
	assert.Equal(t, layout.Vertical, c.Table.DefaultLayout())
	assert.Equal(t, DefaultMaxDepth, c.Depth())
	assert.Equal(t, "rounded", c.Render.Border)
	assert.Equal(t, 1, c.Table.Rules().Len())
	assert.NotSame(t, Default().Table, c.Table)
}

func TestDefaultMapRule(t *testing.T) {
	c := Default()
	ctx := layout.Context{
		Type:                descriptor.EntryType(),
		IsCollectionElement: true,
		ContainerType:       reflect.TypeFor[map[string]int](),
	}
	s, res := layout.Resolve(c.Table, ctx, logr.Discard())
	require.NotNil(t, res)
	assert.Equal(t, layout.Horizontal, s.Layout())
	assert.False(t, c.Table.ShouldShowRowIndices(s, res))

	ctx.ContainerType = reflect.TypeFor[[]int]()
	s, res = layout.Resolve(c.Table, ctx, logr.Discard())
	assert.Nil(t, res)
	assert.Equal(t, layout.Vertical, s.Layout())
}

func TestDepthAndMembersFallbacks(t *testing.T) {
	var c *Config
	assert.Equal(t, DefaultMaxDepth, c.Depth())
	assert.Equal(t, descriptor.DefaultMemberOptions(), c.MemberOptions())

	depth := 2
	c = &Config{MaxDepth: &depth, Members: &descriptor.MemberOptions{IncludeMethods: true}}
	assert.Equal(t, 2, c.Depth())
	assert.True(t, c.MemberOptions().IncludeMethods)
}

func TestMerge(t *testing.T) {
	baseDepth, overrideDepth := 5, 2
	base := New()
	base.MaxDepth = &baseDepth
	base.Truncation = limiter.Config{MaxCount: limiter.Max(10), Mode: limiter.ModeTail}
	base.Table.ShowRowIndices = layout.Bool(true)
	base.Table.SetLayoutForType(reflect.TypeFor[person](), layout.Use(layout.Vertical))
	base.Render.Border = "double"

	override := New()
	override.MaxDepth = &overrideDepth
	override.Truncation.Mode = limiter.ModeHeadAndTail
	override.Table.SetLayoutForType(reflect.TypeFor[person](), layout.Use(layout.Horizontal))
	override.Render.NoColor = layout.Bool(true)

	merged := Merge(base, override)

	assert.Equal(t, 2, merged.Depth())
	assert.Equal(t, 10, *merged.Truncation.MaxCount)
	assert.Equal(t, limiter.ModeHeadAndTail, merged.Truncation.Mode)
	assert.True(t, *merged.Table.ShowRowIndices)
	assert.Equal(t, "double", merged.Render.Border)
	assert.True(t, *merged.Render.NoColor)

	s, _ := layout.Resolve(merged.Table, layout.Context{Type: reflect.TypeFor[person]()}, logr.Discard())
	assert.Equal(t, layout.Horizontal, s.Layout())

	assert.Equal(t, 5, base.Depth())
	assert.Equal(t, 1, base.Table.Rules().Len())
	assert.NotNil(t, Merge(nil, nil).Table)
}

func TestMergeOverrideResetsScalars(t *testing.T) {
	limit, width := 80, 120
	base := New()
	base.Truncation.PerDimension = limiter.Enabled(true)
	base.Render.NoColor = layout.Bool(true)
	base.Render.MaxStringLength = &limit
	base.Render.Width = &width

	off := 0
	override := New()
	override.Truncation.PerDimension = limiter.Enabled(false)
	override.Render.NoColor = layout.Bool(false)
	override.Render.MaxStringLength = &off
	override.Render.Width = &off

	merged := Merge(base, override)
	assert.False(t, merged.Truncation.IsPerDimension())
	assert.False(t, *merged.Render.NoColor)
	assert.Equal(t, 0, *merged.Render.MaxStringLength)
	assert.Equal(t, 0, *merged.Render.Width)

	// Unset fields keep the base values.
	kept := Merge(base, New())
	assert.True(t, kept.Truncation.IsPerDimension())
	assert.True(t, *kept.Render.NoColor)
	assert.Equal(t, 80, *kept.Render.MaxStringLength)
	assert.Equal(t, 120, *kept.Render.Width)
}

func TestParseRules(t *testing.T) {
	c, err := Parse([]byte(`
table:
  rules:
    - type: config.person
      layout: horizontal
      showRowIndices: false
    - when: "depth >= 2"
      layout: horizontal
    - type: "[]int"
      when: "isCollectionElement"
      showTableHeaders: false
`))
	require.NoError(t, err)
	require.Equal(t, 3, c.Table.Rules().Len())

	tests := []struct {
		name       string
		ctx        layout.Context
		wantLayout layout.Layout
		wantMatch  bool
	}{
		{
			name:       "type name",
			ctx:        layout.Context{Type: reflect.TypeFor[*person]()},
			wantLayout: layout.Horizontal,
			wantMatch:  true,
		},
		{
			name:       "predicate",
			ctx:        layout.Context{Type: reflect.TypeFor[string](), CurrentDepth: 2},
			wantLayout: layout.Horizontal,
			wantMatch:  true,
		},
		{
			name:       "type and predicate",
			ctx:        layout.Context{Type: reflect.TypeFor[[]int](), IsCollectionElement: true},
			wantLayout: layout.Vertical,
			wantMatch:  true,
		},
		{
			name:       "type without predicate match",
			ctx:        layout.Context{Type: reflect.TypeFor[[]int]()},
			wantLayout: layout.Vertical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, res := layout.Resolve(c.Table, tt.ctx, logr.Discard())
			assert.Equal(t, tt.wantLayout, s.Layout())
			assert.Equal(t, tt.wantMatch, res != nil)
		})
	}
}

func TestRuleEvaluationErrorSkipsRule(t *testing.T) {
	c, err := Parse([]byte(`
table:
  rules:
    - when: "1 / (depth - depth) == 0"
      layout: horizontal
    - type: config.person
      layout: horizontal
      showRowSeparators: true
`))
	require.NoError(t, err)

	rules := c.Table.Rules().Snapshot()
	require.Len(t, rules, 2)
	res, err := rules[0].Resolve(layout.Context{Type: reflect.TypeFor[person]()})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eval error")
	assert.NotContains(t, err.Error(), "panicked")

	s, res := layout.Resolve(c.Table, layout.Context{Type: reflect.TypeFor[person]()}, logr.Discard())
	require.NotNil(t, res)
	assert.Equal(t, layout.Horizontal, s.Layout())
	assert.True(t, *res.ShowRowSeparators)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "bad layout", yaml: "table:\n  layout: diagonal\n", want: "table.layout"},
		{name: "empty rule", yaml: "table:\n  rules:\n    - layout: vertical\n", want: "table.rules[0]"},
		{name: "bad predicate", yaml: "table:\n  rules:\n    - when: \"depth + 1\"\n", want: "does not evaluate to a bool"},
		{name: "bad mode", yaml: "truncation:\n  mode: middle\n", want: "truncation.mode"},
		{name: "bad border", yaml: "render:\n  border: wavy\n", want: "render.border"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Parse([]byte("table:\n  rules:\n    - layout: vertical\n"))
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxDepth: 3\nmembers:\n  includeUnexported: true\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Depth())
	opts := c.MemberOptions()
	assert.True(t, opts.IncludeUnexported)
	assert.True(t, opts.IncludeExported)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGlobal(t *testing.T) {
	t.Cleanup(func() { SetGlobal(nil) })

	g := Global()
	require.NotNil(t, g)
	assert.Same(t, g, Global())

	custom := New()
	SetGlobal(custom)
	assert.Same(t, custom, Global())

	SetGlobal(nil)
	assert.NotSame(t, custom, Global())
}

func TestTypeMatches(t *testing.T) {
	assert.True(t, TypeMatches("config.person", reflect.TypeFor[person]()))
	assert.True(t, TypeMatches("github.com/oakwood-commons/dumpx/pkg/config.person", reflect.TypeFor[person]()))
	assert.True(t, TypeMatches("[]any", reflect.TypeFor[[]any]()))
	assert.True(t, TypeMatches("null", nil))
	assert.False(t, TypeMatches("config.other", reflect.TypeFor[person]()))
}
