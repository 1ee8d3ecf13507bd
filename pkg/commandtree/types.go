// Package commandtree models the declarative description of a REST API that
// drives request construction: resources, operations, parameters, request
// bodies and security requirements.
//
// A tree is loaded once per process, validated, and never mutated afterwards.
// Operations are dispatched dynamically by resource and operation name, so the
// model is plain data rather than generated per-operation types.
//
// # Wire Format
//
// The tree is stored as JSON (the generator's output) or YAML:
//
//	{
//	  "version": 1,
//	  "api_version": "5.14.0",
//	  "base_url": "https://api.pinterest.com/v5",
//	  "resources": [
//	    {
//	      "name": "ad-accounts",
//	      "ops": [
//	        {
//	          "name": "get",
//	          "method": "GET",
//	          "path": "/ad_accounts/{ad_account_id}",
//	          "paginated": false,
//	          "security": [{"pinterest_oauth2": ["ads:read"]}],
//	          "params": [{"name": "ad_account_id", "flag": "ad-account-id", "in": "path", "required": true, "schema_type": "string"}]
//	        }
//	      ]
//	    }
//	  ]
//	}
package commandtree

import (
	"sort"
	"strings"
)

// Location is where a parameter is carried in the request.
type Location string

const (
	// LocationPath substitutes the value into the path template.
	LocationPath Location = "path"
	// LocationQuery appends the value to the query string.
	LocationQuery Location = "query"
)

// Parameter wire styles.
const (
	StyleForm       = "form"
	StyleDeepObject = "deepObject"
)

// TypeArray is the schema type of repeated parameters.
const TypeArray = "array"

// CommandTree is the root of the API description.
type CommandTree struct {
	Version    int         `json:"version" yaml:"version"`
	APIVersion string      `json:"api_version" yaml:"api_version"`
	BaseURL    string      `json:"base_url" yaml:"base_url"`
	Resources  []*Resource `json:"resources" yaml:"resources"`

	index map[string]map[string]*Operation
}

// Resource groups operations under a name unique within the tree.
type Resource struct {
	Name       string       `json:"name" yaml:"name"`
	Operations []*Operation `json:"ops" yaml:"ops"`
}

// Operation is a single HTTP call.
type Operation struct {
	Name        string                `json:"name" yaml:"name"`
	Method      string                `json:"method" yaml:"method"`
	Path        string                `json:"path" yaml:"path"`
	Summary     string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	Paginated   bool                  `json:"paginated" yaml:"paginated"`
	Security    []map[string][]string `json:"security" yaml:"security"`
	Params      []*ParamDef           `json:"params" yaml:"params"`
	RequestBody *RequestBodyDef       `json:"request_body,omitempty" yaml:"request_body,omitempty"`
}

// ParamDef describes one path or query parameter.
type ParamDef struct {
	Name       string   `json:"name" yaml:"name"`
	Flag       string   `json:"flag" yaml:"flag"`
	In         Location `json:"in" yaml:"in"`
	Required   bool     `json:"required" yaml:"required"`
	Style      string   `json:"style,omitempty" yaml:"style,omitempty"`
	Explode    *bool    `json:"explode,omitempty" yaml:"explode,omitempty"`
	SchemaType string   `json:"schema_type" yaml:"schema_type"`
	ItemsType  string   `json:"items_type,omitempty" yaml:"items_type,omitempty"`
}

// RequestBodyDef lists the content types an operation accepts.
type RequestBodyDef struct {
	Required     bool     `json:"required" yaml:"required"`
	ContentTypes []string `json:"content_types" yaml:"content_types"`
}

// IsArray reports whether the parameter takes repeated values.
func (p *ParamDef) IsArray() bool {
	return p.SchemaType == TypeArray
}

// IsDeepObject reports whether the parameter is a deep-object query parameter.
func (p *ParamDef) IsDeepObject() bool {
	return p.Style == StyleDeepObject
}

// ValueName is the placeholder shown for the parameter's flag in help output.
func (p *ParamDef) ValueName() string {
	if p.IsDeepObject() {
		return "JSON"
	}
	if p.IsArray() {
		if p.ItemsType != "" {
			return p.ItemsType
		}
		return "value"
	}
	return p.SchemaType
}

// ParamsIn returns the operation's parameters carried in loc, in declaration order.
func (op *Operation) ParamsIn(loc Location) []*ParamDef {
	var out []*ParamDef
	for _, p := range op.Params {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// QueryParam returns the query parameter named name.
func (op *Operation) QueryParam(name string) (*ParamDef, bool) {
	for _, p := range op.Params {
		if p.In == LocationQuery && p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// SecuritySchemes flattens the security requirements into scheme names,
// preserving requirement order.
func (op *Operation) SecuritySchemes() []string {
	var out []string
	for _, req := range op.Security {
		names := make([]string, 0, len(req))
		for name := range req {
			names = append(names, name)
		}
		sort.Strings(names)
		out = append(out, names...)
	}
	return out
}

// AcceptsContentType reports whether the request body accepts contentType.
func (rb *RequestBodyDef) AcceptsContentType(contentType string) bool {
	for _, ct := range rb.ContentTypes {
		if strings.EqualFold(ct, contentType) {
			return true
		}
	}
	return false
}

// Placeholders returns the {name} placeholders of a path template in order.
func Placeholders(path string) []string {
	var out []string
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return out
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return out
		}
		out = append(out, path[start+1:start+end])
		path = path[start+end+1:]
	}
}
