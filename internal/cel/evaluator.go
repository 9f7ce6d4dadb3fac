package cel

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// ErrNotBool is returned when a predicate does not evaluate to a boolean.
var ErrNotBool = errors.New("expression does not evaluate to a bool")

// Evaluator compiles and evaluates CEL expressions against input data.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with standard library functions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv(cel.Variable("_", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// newStandardCELEnv creates a CEL environment with the common extension
// libraries plus the given options.
func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 4+len(opts))
	allOpts = append(allOpts,
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate evaluates expr with data bound to "_".
// Example: "_.items.filter(x, x.available == true)"
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	prg, err := compile(e.env, expr)
	if err != nil {
		return nil, err
	}
	result, _, err := prg.Eval(map[string]any{"_": data})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return prg, nil
}

// RuleVars are the variables visible to layout rule predicates.
type RuleVars struct {
	Type                string
	Kind                string
	Depth               int
	IsCollectionElement bool
	ContainerType       string
	ContainerKind       string
}

func (v RuleVars) activation() map[string]any {
	return map[string]any{
		"type":                v.Type,
		"kind":                v.Kind,
		"depth":               v.Depth,
		"isCollectionElement": v.IsCollectionElement,
		"containerType":       v.ContainerType,
		"containerKind":       v.ContainerKind,
	}
}

// Predicate is a compiled boolean rule condition. It is safe for
// concurrent use.
type Predicate struct {
	expr string
	prg  cel.Program
}

// NewPredicate compiles expr. The expression must type-check to bool.
// Example: "depth > 0 && containerKind == 'map'"
func NewPredicate(expr string) (*Predicate, error) {
	env, err := newStandardCELEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("depth", cel.IntType),
		cel.Variable("isCollectionElement", cel.BoolType),
		cel.Variable("containerType", cel.StringType),
		cel.Variable("containerKind", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error in %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: %q has type %s", ErrNotBool, expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

func (p *Predicate) String() string { return p.expr }

// Match evaluates the predicate.
func (p *Predicate) Match(vars RuleVars) (bool, error) {
	out, _, err := p.prg.Eval(vars.activation())
	if err != nil {
		return false, fmt.Errorf("eval error in %q: %w", p.expr, err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %s", ErrNotBool, p.expr, out.Type())
	}
	return bool(b), nil
}

// ToGo converts CEL values to Go values recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	valuer, ok := val.(interface{ Value() any })
	if !ok {
		return val
	}
	switch inner := valuer.Value().(type) {
	case []ref.Val:
		out := make([]any, len(inner))
		for i, elem := range inner {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(inner))
		for i, elem := range inner {
			out[i] = convert(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(inner))
		for k, v := range inner {
			out[k] = convert(v)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(inner))
		for k, v := range inner {
			out[fmt.Sprint(ToGo(k))] = ToGo(v)
		}
		return out
	default:
		return inner
	}
}

func convert(v any) any {
	switch x := v.(type) {
	case ref.Val:
		return ToGo(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = convert(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = convert(e)
		}
		return out
	default:
		return v
	}
}
