package layout

import (
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/table"
)

// Resolve walks the rules of cfg in order and returns the strategy and the
// result of the first rule that matches. Rules that fail or panic are
// logged and skipped. Without a match the configured default layout is used and the
// result is nil.
func Resolve(cfg *TableConfig, ctx Context, log logr.Logger) (Strategy, *Result) {
	if cfg == nil {
		return StrategyFor(Vertical), nil
	}
	for _, rule := range cfg.rules.Snapshot() {
		res, err := rule.Resolve(ctx)
		if err != nil {
			log.V(1).Info("skipping layout rule", "rule", rule.String(), "type", descriptor.TypeName(ctx.Type), "error", err.Error())
			continue
		}
		if res == nil {
			continue
		}
		l := res.Layout
		if l == "" {
			l = cfg.DefaultLayout()
		}
		return StrategyFor(l), res
	}
	return StrategyFor(cfg.DefaultLayout()), nil
}

// Settings are the effective display flags for one table.
type Settings struct {
	RowIndices    bool
	MemberTypes   bool
	RowSeparators bool
	TableHeaders  bool
}

// ShouldShowRowIndices applies, in order, the rule result, the explicitly
// set config value and the strategy default.
func (c *TableConfig) ShouldShowRowIndices(s Strategy, res *Result) bool {
	var r, g *bool
	if res != nil {
		r = res.ShowRowIndices
	}
	if c != nil {
		g = c.ShowRowIndices
	}
	return effective(r, g, s.Defaults().RowIndices)
}

// ShouldShowMemberTypes follows the same precedence as ShouldShowRowIndices.
func (c *TableConfig) ShouldShowMemberTypes(s Strategy, res *Result) bool {
	var r, g *bool
	if res != nil {
		r = res.ShowMemberTypes
	}
	if c != nil {
		g = c.ShowMemberTypes
	}
	return effective(r, g, s.Defaults().MemberTypes)
}

// ShouldShowRowSeparators follows the same precedence as ShouldShowRowIndices.
func (c *TableConfig) ShouldShowRowSeparators(s Strategy, res *Result) bool {
	var r, g *bool
	if res != nil {
		r = res.ShowRowSeparators
	}
	if c != nil {
		g = c.ShowRowSeparators
	}
	return effective(r, g, s.Defaults().RowSeparators)
}

// ShouldShowTableHeaders follows the same precedence as ShouldShowRowIndices.
func (c *TableConfig) ShouldShowTableHeaders(s Strategy, res *Result) bool {
	var r, g *bool
	if res != nil {
		r = res.ShowTableHeaders
	}
	if c != nil {
		g = c.ShowTableHeaders
	}
	return effective(r, g, s.Defaults().TableHeaders)
}

// Effective resolves all four settings at once.
func (c *TableConfig) Effective(s Strategy, res *Result) Settings {
	return Settings{
		RowIndices:    c.ShouldShowRowIndices(s, res),
		MemberTypes:   c.ShouldShowMemberTypes(s, res),
		RowSeparators: c.ShouldShowRowSeparators(s, res),
		TableHeaders:  c.ShouldShowTableHeaders(s, res),
	}
}

// Apply attaches the behaviors and flags selected by s to b. Horizontal
// tables show member types in their headers, so only vertical ones get the
// type column.
func (s Settings) Apply(b *table.Builder, strategy Strategy) {
	if s.MemberTypes && strategy.Layout() == Vertical {
		b.AddBehavior(table.NewMemberTypes())
	}
	if s.RowIndices {
		b.AddBehavior(table.NewRowIndices())
	}
	if s.RowSeparators {
		b.ShowRowSeparators()
	}
	if !s.TableHeaders {
		b.HideHeaders()
	}
}

func effective(result, global *bool, fallback bool) bool {
	if result != nil {
		return *result
	}
	if global != nil {
		return *global
	}
	return fallback
}
