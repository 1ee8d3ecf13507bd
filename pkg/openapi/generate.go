package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

// DefaultBaseURL is used when the document declares no servers.
const DefaultBaseURL = "https://api.pinterest.com/v5"

// treeVersion is the command tree format version written by the generator.
const treeVersion = 1

// methods lists the HTTP methods turned into operations, in the order they
// are visited within a path.
var methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

var (
	kebabWord  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	kebabLower = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	kebabDash  = regexp.MustCompile(`-+`)
)

// ToKebab converts snake_case and simple CamelCase identifiers to kebab-case.
func ToKebab(value string) string {
	value = strings.ReplaceAll(value, "_", "-")
	value = kebabWord.ReplaceAllString(value, "${1}-${2}")
	value = kebabLower.ReplaceAllString(value, "${1}-${2}")
	value = kebabDash.ReplaceAllString(value, "-")
	return strings.ToLower(strings.Trim(value, "-"))
}

// NormalizeOperationID splits an operationId into resource and operation
// names.
//
//	"campaigns/list"       -> campaigns, list
//	"ad_groups/bid/update" -> ad-groups, bid-update
//	"listThings"           -> <first tag or "misc">, list-things
func NormalizeOperationID(operationID string, tags []string) (resource, op string) {
	parts := strings.Split(operationID, "/")
	switch len(parts) {
	case 1:
		resource = "misc"
		if len(tags) > 0 {
			resource = tags[0]
		}
		op = parts[0]
	case 2:
		resource, op = parts[0], parts[1]
	default:
		resource, op = parts[0], strings.Join(parts[1:], "-")
	}
	return ToKebab(resource), ToKebab(op)
}

// Generator builds command trees from parsed OpenAPI documents.
type Generator struct {
	// DefaultBaseURL is used when the document has no servers.
	DefaultBaseURL string

	logger *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger used to report skipped operations.
func WithGeneratorLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		DefaultBaseURL: DefaultBaseURL,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate converts the document into a validated command tree.
//
// Operations without an operationId are skipped. Paths are visited in sorted
// order and methods in GET, POST, PUT, PATCH, DELETE order, so operation names
// that collide within a resource are suffixed -2, -3... deterministically.
func (g *Generator) Generate(parsed *ParsedSpec) (*commandtree.CommandTree, error) {
	if parsed == nil || parsed.Spec == nil {
		return nil, fmt.Errorf("no specification to generate from")
	}
	doc := parsed.Spec

	tree := &commandtree.CommandTree{
		Version:   treeVersion,
		BaseURL:   g.baseURL(doc),
		Resources: []*commandtree.Resource{},
	}
	if doc.Info != nil {
		tree.APIVersion = doc.Info.Version
	}

	grouped := make(map[string][]*commandtree.Operation)

	var pathItems map[string]*openapi3.PathItem
	if doc.Paths != nil {
		pathItems = doc.Paths.Map()
	}
	paths := make([]string, 0, len(pathItems))
	for path := range pathItems {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathItems[path]
		if item == nil {
			continue
		}
		for _, method := range methods {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			if op.OperationID == "" {
				g.logger.Debug("skipping operation without operationId",
					zap.String("method", method),
					zap.String("path", path),
				)
				continue
			}

			resource, name := NormalizeOperationID(op.OperationID, op.Tags)
			grouped[resource] = append(grouped[resource], &commandtree.Operation{
				Name:        name,
				Method:      method,
				Path:        path,
				Summary:     op.Summary,
				Tags:        op.Tags,
				Paginated:   isPaginated(responseSchema(op), map[*openapi3.Schema]bool{}),
				Security:    security(op, doc),
				Params:      params(item.Parameters, op.Parameters),
				RequestBody: requestBody(op.RequestBody),
			})
		}
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ops := grouped[name]
		seen := make(map[string]int, len(ops))
		for _, op := range ops {
			base := op.Name
			seen[base]++
			if seen[base] > 1 {
				op.Name = fmt.Sprintf("%s-%d", base, seen[base])
			}
		}
		sort.SliceStable(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
		tree.Resources = append(tree.Resources, &commandtree.Resource{Name: name, Operations: ops})
	}

	g.logger.Debug("generated command tree",
		zap.Int("resources", len(tree.Resources)),
		zap.String("api_version", tree.APIVersion),
	)

	// Round-trip through the loader so the result is validated and indexed
	// exactly like a tree read from disk.
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command tree: %w", err)
	}
	return commandtree.Parse(data)
}

func (g *Generator) baseURL(doc *openapi3.T) string {
	if len(doc.Servers) > 0 && doc.Servers[0] != nil && doc.Servers[0].URL != "" {
		return doc.Servers[0].URL
	}
	if g.DefaultBaseURL != "" {
		return g.DefaultBaseURL
	}
	return DefaultBaseURL
}

// params merges path-level and operation-level parameters and orders them
// path first, then by location and name.
func params(lists ...openapi3.Parameters) []*commandtree.ParamDef {
	out := []*commandtree.ParamDef{}
	for _, list := range lists {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			p := ref.Value
			schemaType, itemsType := schemaTypes(p.Schema)
			out = append(out, &commandtree.ParamDef{
				Name:       p.Name,
				Flag:       strings.ReplaceAll(p.Name, "_", "-"),
				In:         commandtree.Location(p.In),
				Required:   p.Required,
				Style:      p.Style,
				Explode:    p.Explode,
				SchemaType: schemaType,
				ItemsType:  itemsType,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aPath, bPath := a.In == commandtree.LocationPath, b.In == commandtree.LocationPath
		if aPath != bPath {
			return aPath
		}
		if a.In != b.In {
			return a.In < b.In
		}
		return a.Name < b.Name
	})
	return out
}

// schemaTypes returns the schema's type, defaulting to string, and for arrays
// the item type.
func schemaTypes(ref *openapi3.SchemaRef) (string, string) {
	typ := typeOf(ref)
	if typ != commandtree.TypeArray {
		return typ, ""
	}
	var items *openapi3.SchemaRef
	if ref != nil && ref.Value != nil {
		items = ref.Value.Items
	}
	return typ, typeOf(items)
}

func typeOf(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return openapi3.TypeString
	}
	// 3.1 documents may list several types; the first non-null one wins.
	for _, t := range ref.Value.Type.Slice() {
		if t != openapi3.TypeNull && t != "" {
			return t
		}
	}
	return openapi3.TypeString
}

func requestBody(ref *openapi3.RequestBodyRef) *commandtree.RequestBodyDef {
	if ref == nil || ref.Value == nil {
		return nil
	}
	types := make([]string, 0, len(ref.Value.Content))
	for contentType := range ref.Value.Content {
		types = append(types, contentType)
	}
	sort.Strings(types)
	return &commandtree.RequestBodyDef{
		Required:     ref.Value.Required,
		ContentTypes: types,
	}
}

// responseSchema returns the JSON schema of the first 200, 201 or 202
// response that has one.
func responseSchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op.Responses == nil {
		return nil
	}
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
		resp := op.Responses.Status(code)
		if resp == nil || resp.Value == nil {
			continue
		}
		media := resp.Value.Content.Get("application/json")
		if media != nil && media.Schema != nil {
			return media.Schema
		}
	}
	return nil
}

// isPaginated reports whether the schema references the Paginated component,
// directly, through another reference, or through allOf.
func isPaginated(ref *openapi3.SchemaRef, visited map[*openapi3.Schema]bool) bool {
	if ref == nil {
		return false
	}
	if ref.Ref != "" && strings.HasSuffix(ref.Ref, "/Paginated") {
		return true
	}
	schema := ref.Value
	if schema == nil || visited[schema] {
		return false
	}
	visited[schema] = true
	for _, sub := range schema.AllOf {
		if isPaginated(sub, visited) {
			return true
		}
	}
	return false
}

// security returns the operation's own requirements, or the document's when
// the operation declares none.
func security(op *openapi3.Operation, doc *openapi3.T) []map[string][]string {
	reqs := doc.Security
	if op.Security != nil {
		reqs = *op.Security
	}
	out := make([]map[string][]string, 0, len(reqs))
	for _, req := range reqs {
		entry := make(map[string][]string, len(req))
		for scheme, scopes := range req {
			if scopes == nil {
				scopes = []string{}
			}
			entry[scheme] = scopes
		}
		out = append(out, entry)
	}
	return out
}
