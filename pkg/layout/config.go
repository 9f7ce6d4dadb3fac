package layout

import (
	"reflect"
)

// TableConfig holds the layout defaults and the rule set. It must be used
// through a pointer. Configure it before rendering and leave it alone while
// renders are running.
type TableConfig struct {
	// Layout is the default layout; empty means Vertical.
	Layout            Layout
	ShowRowIndices    *bool
	ShowMemberTypes   *bool
	ShowRowSeparators *bool
	ShowTableHeaders  *bool

	rules Rules
}

// NewTableConfig returns an empty configuration.
func NewTableConfig() *TableConfig {
	return &TableConfig{}
}

// DefaultLayout returns the configured layout or Vertical.
func (c *TableConfig) DefaultLayout() Layout {
	if c == nil || c.Layout == "" {
		return Vertical
	}
	return c.Layout
}

// Rules returns the rule set.
func (c *TableConfig) Rules() *Rules { return &c.rules }

// AddRule appends rule and returns c.
func (c *TableConfig) AddRule(rule *Rule) *TableConfig {
	c.rules.Add(rule)
	return c
}

// SetLayoutForType registers an exact type rule.
func (c *TableConfig) SetLayoutForType(t reflect.Type, res *Result) *TableConfig {
	return c.AddRule(ForExactType(t, res))
}

// SetLayoutForTypeAndDerived registers a rule for t and the types derived
// from it.
func (c *TableConfig) SetLayoutForTypeAndDerived(t reflect.Type, res *Result) *TableConfig {
	return c.AddRule(ForTypeAndDerived(t, res))
}

// SetLayoutWhen registers a predicate rule.
func (c *TableConfig) SetLayoutWhen(pred func(Context) bool, res *Result) *TableConfig {
	return c.AddRule(When(pred, res))
}

// ClearRules removes every rule.
func (c *TableConfig) ClearRules() *TableConfig {
	c.rules.Clear()
	return c
}

// Merge returns a new configuration where every field set in override wins
// and every unset field comes from c. The rules of override are evaluated
// before the rules of c. Neither input is modified.
func (c *TableConfig) Merge(override *TableConfig) *TableConfig {
	out := &TableConfig{}
	if c != nil {
		out.Layout = c.Layout
		out.ShowRowIndices = c.ShowRowIndices
		out.ShowMemberTypes = c.ShowMemberTypes
		out.ShowRowSeparators = c.ShowRowSeparators
		out.ShowTableHeaders = c.ShowTableHeaders
	}
	if override != nil {
		if override.Layout != "" {
			out.Layout = override.Layout
		}
		out.ShowRowIndices = pick(override.ShowRowIndices, out.ShowRowIndices)
		out.ShowMemberTypes = pick(override.ShowMemberTypes, out.ShowMemberTypes)
		out.ShowRowSeparators = pick(override.ShowRowSeparators, out.ShowRowSeparators)
		out.ShowTableHeaders = pick(override.ShowTableHeaders, out.ShowTableHeaders)
		for _, r := range override.rules.Snapshot() {
			out.rules.Add(r)
		}
	}
	if c != nil {
		for _, r := range c.rules.Snapshot() {
			out.rules.Add(r)
		}
	}
	return out
}

func pick(override, base *bool) *bool {
	if override != nil {
		return override
	}
	return base
}
