package output

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter keeps the array elements for which a boolean expression holds.
// Object fields are visible as variables, and the whole element as `item`:
//
//	status == "ACTIVE" && daily_spend_cap > 1000
type Filter struct {
	expression string
	program    *vm.Program
}

// CompileFilter compiles a filter expression.
func CompileFilter(expression string) (*Filter, error) {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter '%s': %w", expression, err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// Apply filters an array, or the items array of an object. Other values are
// returned unchanged.
func (f *Filter) Apply(data any) (any, error) {
	switch v := data.(type) {
	case []any:
		return f.filter(v)
	case map[string]any:
		items, ok := v["items"].([]any)
		if !ok {
			return data, nil
		}
		kept, err := f.filter(items)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		out["items"] = kept
		return out, nil
	default:
		return data, nil
	}
}

func (f *Filter) filter(items []any) ([]any, error) {
	kept := make([]any, 0, len(items))
	for i, item := range items {
		ok, err := f.Match(item)
		if err != nil {
			return nil, fmt.Errorf("filter '%s' on item %d: %w", f.expression, i, err)
		}
		if ok {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// Match evaluates the expression against one element.
func (f *Filter) Match(item any) (bool, error) {
	normalized := normalize(item)
	env := map[string]any{}
	if obj, ok := normalized.(map[string]any); ok {
		for k, v := range obj {
			env[k] = v
		}
	}
	env["item"] = normalized

	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not evaluate to boolean: %v", out)
	}
	return b, nil
}

// normalize converts json.Number values to int64 or float64 so expressions
// can compare them numerically.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
