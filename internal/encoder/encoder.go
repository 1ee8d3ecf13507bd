// Package encoder turns an operation's parameter definitions and raw inputs
// into a resolved request path and an ordered list of query pairs.
//
// # Query Styles
//
//   - Plain scalars produce one pair; a later value for the same key replaces
//     earlier ones.
//   - Arrays repeat the key once per element, in input order.
//   - Deep objects flatten a JSON object into key[sub][subsub] pairs. Arrays
//     inside repeat the bracketed key, null members are dropped, and scalar
//     leaves are stringified.
//
// The bulk --params object and the per-parameter flags share one merge rule:
// purge every existing pair for the key (including key[...] for deep
// objects), then append. Either input style can therefore override the other.
package encoder

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
)

// Inputs are the per-invocation values supplied for an operation.
type Inputs struct {
	// Params is the bulk JSON object of query parameters, or empty.
	Params string
	// Values maps parameter names to the values given on their flags.
	// Scalars and deep objects use the last value; arrays use all of them.
	Values map[string][]string
}

// Result is an encoded request target.
type Result struct {
	Path  string
	Query Query
}

// Encoder encodes operation inputs.
type Encoder struct {
	decode func(raw string) (any, error)
}

// New creates an encoder. decode turns a deep-object flag value into a JSON
// value; it may resolve source references. A nil decode parses raw as JSON.
func New(decode func(raw string) (any, error)) *Encoder {
	if decode == nil {
		decode = DecodeJSON
	}
	return &Encoder{decode: decode}
}

// Encode resolves the path and query for op. defaults supplies fallback
// values for path parameters that have no explicit input.
func (e *Encoder) Encode(op *commandtree.Operation, in *Inputs, defaults map[string]string) (*Result, error) {
	if in == nil {
		in = &Inputs{}
	}

	path, err := ResolvePath(op, in.Values, defaults)
	if err != nil {
		return nil, err
	}

	query, err := e.BuildQuery(op, in)
	if err != nil {
		return nil, err
	}

	return &Result{Path: path, Query: query}, nil
}

// ResolvePath substitutes path parameters into the operation's template.
// Precedence is explicit value, then default, then absent.
func ResolvePath(op *commandtree.Operation, values map[string][]string, defaults map[string]string) (string, error) {
	path := op.Path

	for _, param := range op.ParamsIn(commandtree.LocationPath) {
		value, ok := last(values[param.Name])
		if !ok {
			value, ok = defaults[param.Name]
		}
		if !ok {
			if param.Required {
				return "", fmt.Errorf("%w: %s", errs.ErrMissingRequiredParam, param.Name)
			}
			continue
		}

		path = strings.ReplaceAll(path, "{"+param.Name+"}", EscapePathSegment(value))
	}

	if strings.Contains(path, "{") {
		return "", fmt.Errorf("%w: %s", errs.ErrUnresolvedPathTemplate, op.Path)
	}

	return path, nil
}

// EscapePathSegment percent-encodes every byte outside the unreserved set.
func EscapePathSegment(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// BuildQuery merges the bulk params object with the per-parameter flag
// values, in parameter declaration order.
func (e *Encoder) BuildQuery(op *commandtree.Operation, in *Inputs) (Query, error) {
	out, err := ParseParams(in.Params, op)
	if err != nil {
		return nil, err
	}

	for _, param := range op.ParamsIn(commandtree.LocationQuery) {
		values := in.Values[param.Name]
		if len(values) == 0 {
			continue
		}

		switch {
		case param.IsDeepObject():
			raw, _ := last(values)
			value, err := e.decode(raw)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", param.Flag, err)
			}
			pairs, err := EncodeDeepObject(param.Name, value)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", param.Flag, err)
			}
			out.Purge(param.Name, true)
			out = append(out, pairs...)

		case param.IsArray():
			out.Purge(param.Name, false)
			for _, v := range values {
				out.Add(param.Name, v)
			}

		default:
			value, _ := last(values)
			out.Purge(param.Name, false)
			out.Add(param.Name, value)
		}
	}

	return out, nil
}

// ParseParams encodes a bulk JSON object of query parameters. op may be nil,
// in which case no parameter is treated as a deep object.
func ParseParams(raw string, op *commandtree.Operation) (Query, error) {
	if strings.TrimSpace(raw) == "" {
		return Query{}, nil
	}

	value, err := DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("--params: %w", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: --params must be a JSON object", errs.ErrInput)
	}

	out := Query{}
	for _, key := range sortedKeys(obj) {
		v := obj[key]

		if op != nil {
			if param, ok := op.QueryParam(key); ok && param.IsDeepObject() {
				pairs, err := EncodeDeepObject(key, v)
				if err != nil {
					return nil, fmt.Errorf("--params %s: %w", key, err)
				}
				out = append(out, pairs...)
				continue
			}
		}

		pairs, err := encodeValue(key, v)
		if err != nil {
			return nil, err
		}
		out = append(out, pairs...)
	}

	return out, nil
}

// FormPairs flattens a JSON object into form fields: arrays repeat the key,
// everything else is stringified.
func FormPairs(value any) (Query, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: --form must be a JSON object", errs.ErrInput)
	}

	out := Query{}
	for _, key := range sortedKeys(obj) {
		pairs, err := encodeValue(key, obj[key])
		if err != nil {
			return nil, err
		}
		out = append(out, pairs...)
	}
	return out, nil
}

// EncodeDeepObject flattens a JSON object under prefix.
func EncodeDeepObject(prefix string, value any) (Query, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: deepObject param must be a JSON object", errs.ErrInput)
	}

	out := Query{}
	for _, key := range sortedKeys(obj) {
		if err := walkDeepObject(&out, prefix+"["+key+"]", obj[key]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func walkDeepObject(out *Query, key string, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		for _, k := range sortedKeys(v) {
			if err := walkDeepObject(out, key+"["+k+"]", v[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range v {
			s, err := Stringify(item)
			if err != nil {
				return err
			}
			out.Add(key, s)
		}
		return nil
	default:
		s, err := Stringify(v)
		if err != nil {
			return err
		}
		out.Add(key, s)
		return nil
	}
}

// encodeValue encodes a top-level plain or array value.
func encodeValue(key string, value any) (Query, error) {
	var out Query
	if items, ok := value.([]any); ok {
		for _, item := range items {
			s, err := Stringify(item)
			if err != nil {
				return nil, err
			}
			out.Add(key, s)
		}
		return out, nil
	}

	s, err := Stringify(value)
	if err != nil {
		return nil, err
	}
	out.Add(key, s)
	return out, nil
}

func last(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}
