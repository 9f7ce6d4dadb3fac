// Package core turns arbitrary Go values into tables. An Engine classifies
// each value, resolves its layout against the configured rules and lets the
// chosen strategy fill a table, recursing into members and elements.
package core

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/dumpx/internal/cel"
	"github.com/oakwood-commons/dumpx/internal/formatter"
	"github.com/oakwood-commons/dumpx/pkg/config"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
	"github.com/oakwood-commons/dumpx/pkg/loader"
	"github.com/oakwood-commons/dumpx/pkg/table"
)

// Evaluator evaluates expressions against a root value.
type Evaluator interface {
	Evaluate(expr string, root any) (any, error)
}

// Formatter draws a built table.
type Formatter interface {
	Render(t *table.Table) string
}

// Engine renders values using one frozen configuration. It is safe for
// concurrent use once built.
type Engine struct {
	Evaluator Evaluator
	Formatter Formatter

	config    *config.Config
	logger    *logr.Logger
	handlers  handlers
	noDefault bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithConfig merges c over the process-wide configuration.
func WithConfig(c *config.Config) Option {
	return func(e *Engine) {
		e.config = config.Merge(e.config, c)
	}
}

// WithLogger sets the logger. Without it the logger is taken from the
// context passed to each call.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) {
		e.logger = &l
	}
}

// WithHandler registers h for values whose dynamic type is exactly t.
func WithHandler(t reflect.Type, h Handler) Option {
	return func(e *Engine) {
		e.handlers.exact(t, h)
	}
}

// WithHandlerFunc registers h for values whose dynamic type satisfies
// match. Predicate handlers are tried in registration order after the
// exact ones.
func WithHandlerFunc(match func(reflect.Type) bool, h Handler) Option {
	return func(e *Engine) {
		e.handlers.matching(match, h)
	}
}

// WithoutDefaultHandlers disables the built-in handlers for time and error
// values.
func WithoutDefaultHandlers() Option {
	return func(e *Engine) {
		e.noDefault = true
	}
}

// WithEvaluator sets a custom evaluator.
func WithEvaluator(ev Evaluator) Option {
	return func(e *Engine) {
		e.Evaluator = ev
	}
}

// WithFormatter sets a custom formatter.
func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		e.Formatter = f
	}
}

// New creates an Engine from the process-wide configuration and opts.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{config: config.Global()}
	for _, opt := range opts {
		opt(engine)
	}
	if _, err := formatter.ParseBorder(engine.config.Render.Border); err != nil {
		return nil, fmt.Errorf("render options: %w", err)
	}
	if !engine.noDefault {
		registerDefaultHandlers(&engine.handlers)
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	if engine.Formatter == nil {
		engine.Formatter = defaultFormatter{opts: engine.config.Render}
	}
	return engine, nil
}

// Config returns the effective configuration. Treat it as read-only.
func (e *Engine) Config() *config.Config {
	return e.config
}

// Build renders v into a cell. Objects and collections produce a nested
// table; leaves produce text. Build never fails: problems show up as
// placeholder cells.
func (e *Engine) Build(ctx context.Context, v any) table.Cell {
	return e.newRun(ctx).value(v, nil, frame{})
}

// Render builds v and draws it with the engine formatter.
func (e *Engine) Render(ctx context.Context, v any) string {
	cell := e.Build(ctx, v)
	if !cell.IsNested() {
		return cell.Text
	}
	return e.Formatter.Render(cell.Table)
}

// Write renders v to w followed by a newline.
func (e *Engine) Write(ctx context.Context, w io.Writer, v any) error {
	if _, err := io.WriteString(w, e.Render(ctx, v)+"\n"); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// Evaluate runs the evaluator against root after converting it to plain
// maps and slices.
func (e *Engine) Evaluate(expr string, root any) (any, error) {
	if e == nil || e.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is not configured")
	}
	data, err := loader.Normalize(root)
	if err != nil {
		return nil, err
	}
	return e.Evaluator.Evaluate(expr, data)
}

// Members returns the member provider used for classification.
func (e *Engine) Members() descriptor.MemberProvider {
	return descriptor.NewReflectMembers(e.config.MemberOptions())
}

type defaultFormatter struct {
	opts formatter.Options
}

func (f defaultFormatter) Render(t *table.Table) string {
	return formatter.Render(t, f.opts)
}
