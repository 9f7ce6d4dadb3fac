// Package config holds the runtime configuration of the engine: layout
// rules, truncation, depth and member policies, and rendering options.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync/atomic"

	"github.com/oakwood-commons/dumpx/internal/cel"
	fileconfig "github.com/oakwood-commons/dumpx/internal/config"
	"github.com/oakwood-commons/dumpx/internal/formatter"
	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/layout"
)

// DefaultMaxDepth is used when MaxDepth is not set.
const DefaultMaxDepth = 7

// ErrInvalidRule is returned for configured rules that can never match.
var ErrInvalidRule = errors.New("invalid rule")

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Config is the complete engine configuration. Pointer fields are unset
// when nil and then inherit during Merge.
type Config struct {
	Table      *layout.TableConfig
	Truncation limiter.Config
	MaxDepth   *int
	Members    *descriptor.MemberOptions
	// MemberFilter hides members per rendered value.
	MemberFilter descriptor.MemberFilter
	Render       formatter.Options
}

// New returns an empty configuration.
func New() *Config {
	return &Config{Table: layout.NewTableConfig()}
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	c, err := Parse(defaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return c
}

// DefaultConfigYAML returns the embedded default configuration document.
func DefaultConfigYAML() []byte {
	return defaultConfigYAML
}

// Depth returns the effective maximum depth.
func (c *Config) Depth() int {
	if c == nil || c.MaxDepth == nil {
		return DefaultMaxDepth
	}
	return *c.MaxDepth
}

// MemberOptions returns the effective member options.
func (c *Config) MemberOptions() descriptor.MemberOptions {
	if c == nil || c.Members == nil {
		return descriptor.DefaultMemberOptions()
	}
	return *c.Members
}

// Merge combines base and override into a new configuration. Set fields of
// override win, unset ones come from base, and the rules of override are
// evaluated before those of base. Neither input is modified.
func Merge(base, override *Config) *Config {
	if base == nil {
		base = &Config{}
	}
	if override == nil {
		override = &Config{}
	}

	out := &Config{
		Table:        base.Table.Merge(override.Table),
		Truncation:   base.Truncation.Merge(override.Truncation),
		MaxDepth:     base.MaxDepth,
		Members:      base.Members,
		MemberFilter: base.MemberFilter,
		Render:       base.Render.Merge(override.Render),
	}
	if override.MaxDepth != nil {
		out.MaxDepth = override.MaxDepth
	}
	if override.Members != nil {
		out.Members = override.Members
	}
	if override.MemberFilter != nil {
		out.MemberFilter = override.MemberFilter
	}
	return out
}

var global atomic.Pointer[Config]

// Global returns the process-wide configuration, initialized from Default
// on first use. Treat the returned value as read-only.
func Global() *Config {
	if c := global.Load(); c != nil {
		return c
	}
	global.CompareAndSwap(nil, Default())
	return global.Load()
}

// SetGlobal replaces the process-wide configuration. Passing nil restores
// the built-in default on next use.
func SetGlobal(c *Config) {
	global.Store(c)
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a configuration from a YAML document.
func Parse(data []byte) (*Config, error) {
	f, err := fileconfig.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromFile(f)
}

// FromFile converts a decoded document, compiling its rules.
func FromFile(f fileconfig.File) (*Config, error) {
	c := New()

	l, err := layout.ParseLayout(f.Table.Layout)
	if err != nil {
		return nil, fmt.Errorf("table.layout: %w", err)
	}
	c.Table.Layout = l
	c.Table.ShowRowIndices = f.Table.ShowRowIndices
	c.Table.ShowMemberTypes = f.Table.ShowMemberTypes
	c.Table.ShowRowSeparators = f.Table.ShowRowSeparators
	c.Table.ShowTableHeaders = f.Table.ShowTableHeaders
	for i, raw := range f.Table.Rules {
		rule, err := compileRule(i, raw)
		if err != nil {
			return nil, fmt.Errorf("table.rules[%d]: %w", i, err)
		}
		c.Table.AddRule(rule)
	}

	mode, err := limiter.ParseMode(f.Truncation.Mode)
	if err != nil {
		return nil, fmt.Errorf("truncation.mode: %w", err)
	}
	c.Truncation = limiter.Config{
		MaxCount:     f.Truncation.MaxCount,
		PerDimension: f.Truncation.PerDimension,
	}
	if f.Truncation.Mode != "" {
		c.Truncation.Mode = mode
	}

	c.MaxDepth = f.MaxDepth
	if f.Members != nil {
		opts := f.Members.Apply(descriptor.DefaultMemberOptions())
		c.Members = &opts
	}

	if _, err := formatter.ParseBorder(f.Render.Border); err != nil {
		return nil, fmt.Errorf("render.border: %w", err)
	}
	c.Render = f.Render
	return c, nil
}

func compileRule(i int, raw fileconfig.Rule) (*layout.Rule, error) {
	if raw.Type == "" && raw.When == "" {
		return nil, fmt.Errorf("%w: set type, when or both", ErrInvalidRule)
	}
	l, err := layout.ParseLayout(raw.Layout)
	if err != nil {
		return nil, err
	}
	res := &layout.Result{
		Layout:            l,
		ShowRowIndices:    raw.ShowRowIndices,
		ShowMemberTypes:   raw.ShowMemberTypes,
		ShowRowSeparators: raw.ShowRowSeparators,
		ShowTableHeaders:  raw.ShowTableHeaders,
	}

	var pred *cel.Predicate
	if raw.When != "" {
		if pred, err = cel.NewPredicate(raw.When); err != nil {
			return nil, err
		}
	}

	name := fmt.Sprintf("config[%d]", i)
	return layout.NewCheckedRule(name, func(ctx layout.Context) (*layout.Result, error) {
		if raw.Type != "" && !TypeMatches(raw.Type, ctx.Type) {
			return nil, nil
		}
		if pred != nil {
			ok, err := pred.Match(RuleVars(ctx))
			if err != nil || !ok {
				return nil, err
			}
		}
		return res, nil
	}), nil
}

// TypeMatches reports whether name refers to t. Both the display name
// ("main.Person", "[]int") and the full package path form are accepted.
func TypeMatches(name string, t reflect.Type) bool {
	if t == nil {
		return name == "null"
	}
	t = descriptor.Indirect(t)
	if name == descriptor.TypeName(t) || name == t.String() {
		return true
	}
	return t.PkgPath() != "" && name == t.PkgPath()+"."+t.Name()
}

// RuleVars exposes a layout context to CEL predicates.
func RuleVars(ctx layout.Context) cel.RuleVars {
	v := cel.RuleVars{
		Type:                descriptor.TypeName(ctx.Type),
		Kind:                "null",
		Depth:               ctx.CurrentDepth,
		IsCollectionElement: ctx.IsCollectionElement,
	}
	if t := descriptor.Indirect(ctx.Type); t != nil {
		v.Kind = t.Kind().String()
	}
	if ctx.ContainerType != nil {
		v.ContainerType = descriptor.TypeName(ctx.ContainerType)
		v.ContainerKind = descriptor.Indirect(ctx.ContainerType).Kind().String()
	}
	return v
}
