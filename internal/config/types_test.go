package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

func TestParse(t *testing.T) {
	data := []byte(`
table:
  layout: horizontal
  showRowIndices: false
  rules:
    - type: main.Person
      layout: vertical
      showMemberTypes: true
    - when: "depth > 0"
      layout: vertical
truncation:
  maxCount: 20
  mode: head_and_tail
  perDimension: true
maxDepth: 3
members:
  includeMethods: true
render:
  border: ascii
  noColor: true
`)

	f, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "horizontal", f.Table.Layout)
	require.NotNil(t, f.Table.ShowRowIndices)
	assert.False(t, *f.Table.ShowRowIndices)
	require.Len(t, f.Table.Rules, 2)
	assert.Equal(t, "main.Person", f.Table.Rules[0].Type)
	require.NotNil(t, f.Table.Rules[0].ShowMemberTypes)
	assert.True(t, *f.Table.Rules[0].ShowMemberTypes)
	assert.Equal(t, "depth > 0", f.Table.Rules[1].When)
	assert.Equal(t, 20, *f.Truncation.MaxCount)
	assert.Equal(t, "head_and_tail", f.Truncation.Mode)
	require.NotNil(t, f.Truncation.PerDimension)
	assert.True(t, *f.Truncation.PerDimension)
	assert.Equal(t, 3, *f.MaxDepth)
	require.NotNil(t, f.Members)
	opts := f.Members.Apply(descriptor.DefaultMemberOptions())
	assert.True(t, opts.IncludeMethods)
	assert.True(t, opts.IncludeExported)
	assert.True(t, opts.IncludePromoted)
	assert.Equal(t, "ascii", f.Render.Border)
	require.NotNil(t, f.Render.NoColor)
	assert.True(t, *f.Render.NoColor)
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Table.Rules)
	assert.Nil(t, f.MaxDepth)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("table:\n  colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}
