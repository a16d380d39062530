// Package cel wraps the CEL environment shared by completion and search.
// Documents are bound to the variable "_".
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// RootVariable is the name documents are bound to.
const RootVariable = "_"

// NewEnv returns the standard environment with the string, encoder, list
// and math extensions enabled.
func NewEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	all := []cel.EnvOption{
		cel.Variable(RootVariable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	}
	env, err := cel.NewEnv(append(all, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// Evaluator compiles expressions against one environment.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator returns an evaluator over NewEnv.
func NewEvaluator() (*Evaluator, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}
	return &Evaluator{env: env}, nil
}

// Env returns the underlying environment.
func (e *Evaluator) Env() *cel.Env {
	return e.env
}

// Program is a compiled expression.
type Program struct {
	expr string
	prg  cel.Program
}

// Compile parses and checks expr.
func (e *Evaluator) Compile(expr string) (*Program, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Eval runs the program with doc bound to "_".
func (p *Program) Eval(doc any) (any, error) {
	out, _, err := p.prg.Eval(map[string]any{RootVariable: doc})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(out), nil
}

// Match reports whether the program evaluates to true for doc. Any
// non-boolean result is an error.
func (p *Program) Match(doc any) (bool, error) {
	v, err := p.Eval(doc)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, want bool", p.expr, v)
	}
	return b, nil
}

// Evaluate compiles and runs expr in one step.
func (e *Evaluator) Evaluate(expr string, doc any) (any, error) {
	p, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Eval(doc)
}

// ToGo converts a CEL value into plain Go values, recursing into lists
// and maps.
func ToGo(val ref.Val) any {
	switch v := val.(type) {
	case nil:
		return nil
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
	return plain(valuer.Value())
}

func plain(v any) any {
	switch t := v.(type) {
	case ref.Val:
		return ToGo(t)
	case []ref.Val:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(ToGo(k))] = ToGo(e)
		}
		return out
	default:
		return v
	}
}

// Function describes one callable surfaced for completion.
type Function struct {
	Name string
	// Usage is a signature such as "string.contains(string) -> bool".
	Usage string
	// Member is true when the function is called on a receiver.
	Member bool
	// Macro marks parser macros such as has and exists.
	Macro bool
}

// Functions lists the functions and macros declared in env, one entry per
// overload, sorted by name then usage. Operators are omitted.
func Functions(env *cel.Env) []Function {
	seen := map[string]bool{}
	var out []Function
	add := func(f Function) {
		key := f.Name + "|" + f.Usage
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, f)
	}
	for _, fn := range env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(Function{Name: fn.Name(), Usage: usage(fn.Name(), o), Member: o.IsMemberFunction()})
		}
	}
	for _, m := range env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(Function{Name: m.Function(), Usage: m.Function() + "()", Member: m.IsReceiverStyle(), Macro: true})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Usage < out[j].Usage
	})
	return out
}

func usage(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	var call string
	if o.IsMemberFunction() && len(params) > 0 {
		call = typeLabel(params[0]) + "." + name + "(" + paramList(params[1:]) + ")"
	} else {
		call = name + "(" + paramList(params) + ")"
	}
	if r := o.ResultType(); r != nil {
		call += " -> " + typeLabel(r)
	}
	return call
}

func paramList(params []*types.Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeLabel(p)
	}
	return strings.Join(parts, ", ")
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

// isOperator filters internal operator and macro names such as "_+_" or "@in".
func isOperator(name string) bool {
	return strings.HasPrefix(name, "@") ||
		(strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_")) ||
		name == "!_" || name == "-_"
}
