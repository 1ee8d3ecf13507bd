// Package openapi turns an OpenAPI 3.x or Swagger 2.0 document into a
// command tree.
//
// # Supported Formats
//
//   - OpenAPI 3.0.x (JSON/YAML)
//   - OpenAPI 3.1.x (JSON/YAML)
//   - Swagger 2.0 (converted to OpenAPI 3.0)
//
// # Example Usage
//
//	parser := openapi.NewParser()
//	spec, err := parser.ParseFile(ctx, "openapi.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tree, err := openapi.NewGenerator().Generate(spec)
//
// Specs are not validated by default; large real-world documents often fail
// strict validation while still describing every operation correctly. Enable
// it with:
//
//	parser.Validate = true
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Parser handles parsing of OpenAPI 3.x and Swagger 2.0 specifications.
type Parser struct {
	// Validate runs kin-openapi validation after loading
	Validate bool
	// AllowRemoteRefs enables loading remote $ref references
	AllowRemoteRefs bool
}

// NewParser creates a new Parser instance with default settings.
func NewParser() *Parser {
	return &Parser{}
}

// ParsedSpec represents a parsed OpenAPI specification with metadata.
type ParsedSpec struct {
	// Spec is the OpenAPI 3.x specification
	Spec *openapi3.T
	// OriginalVersion indicates the original spec format
	OriginalVersion SpecVersion
}

// SpecVersion indicates the OpenAPI specification version.
type SpecVersion string

const (
	// SpecVersionSwagger2 represents Swagger 2.0 / OpenAPI 2.0
	SpecVersionSwagger2 SpecVersion = "2.0"
	// SpecVersionOpenAPI3 represents OpenAPI 3.0.x
	SpecVersionOpenAPI3 SpecVersion = "3.0"
	// SpecVersionOpenAPI31 represents OpenAPI 3.1.x
	SpecVersionOpenAPI31 SpecVersion = "3.1"
)

// Parse parses an OpenAPI specification from a byte slice.
// Automatically detects Swagger 2.0 and converts to OpenAPI 3.0.
func (p *Parser) Parse(ctx context.Context, data []byte) (*ParsedSpec, error) {
	version, err := p.detectVersion(data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect spec version: %w", err)
	}

	var spec *openapi3.T

	switch version {
	case SpecVersionSwagger2:
		spec, err = p.parseSwagger2(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Swagger 2.0 spec: %w", err)
		}
	case SpecVersionOpenAPI3, SpecVersionOpenAPI31:
		spec, err = p.parseOpenAPI3(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse OpenAPI 3.x spec: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported spec version: %s", version)
	}

	return &ParsedSpec{
		Spec:            spec,
		OriginalVersion: version,
	}, nil
}

// ParseFile parses an OpenAPI specification from a file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParsedSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(ctx, data)
}

// ParseReader parses an OpenAPI specification from an io.Reader.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*ParsedSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}
	return p.Parse(ctx, data)
}

// detectVersion detects the OpenAPI specification version. JSON documents
// are valid YAML, so one decoder covers both.
func (p *Parser) detectVersion(data []byte) (SpecVersion, error) {
	var versionCheck struct {
		Swagger string `yaml:"swagger"`
		OpenAPI string `yaml:"openapi"`
	}

	if err := yaml.Unmarshal(data, &versionCheck); err != nil {
		return "", fmt.Errorf("failed to parse spec: %w", err)
	}

	if versionCheck.Swagger != "" {
		if strings.HasPrefix(versionCheck.Swagger, "2.") {
			return SpecVersionSwagger2, nil
		}
		return "", fmt.Errorf("unsupported swagger version: %s", versionCheck.Swagger)
	}

	if versionCheck.OpenAPI != "" {
		if strings.HasPrefix(versionCheck.OpenAPI, "3.0.") {
			return SpecVersionOpenAPI3, nil
		}
		if strings.HasPrefix(versionCheck.OpenAPI, "3.1.") {
			return SpecVersionOpenAPI31, nil
		}
		return "", fmt.Errorf("unsupported openapi version: %s", versionCheck.OpenAPI)
	}

	return "", fmt.Errorf("could not determine spec version (missing 'swagger' or 'openapi' field)")
}

// parseSwagger2 parses a Swagger 2.0 spec and converts it to OpenAPI 3.0.
func (p *Parser) parseSwagger2(ctx context.Context, data []byte) (*openapi3.T, error) {
	data, err := toJSON(data)
	if err != nil {
		return nil, err
	}

	var spec2 openapi2.T
	if err := json.Unmarshal(data, &spec2); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Swagger 2.0: %w", err)
	}

	spec3, err := openapi2conv.ToV3(&spec2)
	if err != nil {
		return nil, fmt.Errorf("failed to convert Swagger 2.0 to OpenAPI 3.0: %w", err)
	}

	if p.Validate {
		if err := spec3.Validate(ctx); err != nil {
			return nil, fmt.Errorf("converted spec validation failed: %w", err)
		}
	}

	return spec3, nil
}

// parseOpenAPI3 parses an OpenAPI 3.x specification.
func (p *Parser) parseOpenAPI3(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = p.AllowRemoteRefs
	loader.Context = ctx

	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI 3.x: %w", err)
	}

	if p.Validate {
		if err := spec.Validate(ctx); err != nil {
			return nil, fmt.Errorf("spec validation failed: %w", err)
		}
	}

	return spec, nil
}

// toJSON re-encodes a YAML document as JSON. JSON input is returned as is.
func toJSON(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML spec to JSON: %w", err)
	}
	return out, nil
}

// GetInfo returns basic information about the API from the spec.
func (ps *ParsedSpec) GetInfo() *SpecInfo {
	info := &SpecInfo{}
	if ps.Spec.Info != nil {
		info.Title = ps.Spec.Info.Title
		info.Version = ps.Spec.Info.Version
		info.Description = ps.Spec.Info.Description
	}
	return info
}

// SpecInfo contains basic information about the API specification.
type SpecInfo struct {
	Title       string
	Version     string
	Description string
}
