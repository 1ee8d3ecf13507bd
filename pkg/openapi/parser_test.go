package openapi

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParser_DetectVersion(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		expected    SpecVersion
		expectError bool
	}{
		{
			name: "OpenAPI 3.0",
			spec: `{
				"openapi": "3.0.0",
				"info": {"title": "Test", "version": "1.0.0"}
			}`,
			expected: SpecVersionOpenAPI3,
		},
		{
			name: "OpenAPI 3.1",
			spec: `{
				"openapi": "3.1.0",
				"info": {"title": "Test", "version": "1.0.0"}
			}`,
			expected: SpecVersionOpenAPI31,
		},
		{
			name: "Swagger 2.0",
			spec: `{
				"swagger": "2.0",
				"info": {"title": "Test", "version": "1.0.0"}
			}`,
			expected: SpecVersionSwagger2,
		},
		{
			name:     "OpenAPI 3.0 YAML",
			spec:     "openapi: 3.0.3\ninfo:\n  title: Test\n  version: 1.0.0\n",
			expected: SpecVersionOpenAPI3,
		},
		{
			name:        "Unsupported openapi version",
			spec:        `{"openapi": "4.0.0"}`,
			expectError: true,
		},
		{
			name: "Invalid spec",
			spec: `{
				"title": "Test"
			}`,
			expectError: true,
		},
	}

	parser := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := parser.detectVersion([]byte(tt.spec))
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if version != tt.expected {
				t.Errorf("expected version %s, got %s", tt.expected, version)
			}
		})
	}
}

func TestParser_ParseOpenAPI3(t *testing.T) {
	spec := `{
		"openapi": "3.0.0",
		"info": {
			"title": "Test API",
			"version": "5.14.0",
			"description": "Ads"
		},
		"paths": {
			"/campaigns": {
				"get": {
					"operationId": "campaigns/list",
					"responses": {
						"200": {"description": "OK"}
					}
				}
			}
		}
	}`

	parser := NewParser()
	parsed, err := parser.Parse(context.Background(), []byte(spec))
	if err != nil {
		t.Fatalf("failed to parse spec: %v", err)
	}

	if parsed.OriginalVersion != SpecVersionOpenAPI3 {
		t.Errorf("expected version %s, got %s", SpecVersionOpenAPI3, parsed.OriginalVersion)
	}

	info := parsed.GetInfo()
	if info.Title != "Test API" {
		t.Errorf("expected title 'Test API', got '%s'", info.Title)
	}
	if info.Version != "5.14.0" {
		t.Errorf("expected version '5.14.0', got '%s'", info.Version)
	}
	if info.Description != "Ads" {
		t.Errorf("expected description 'Ads', got '%s'", info.Description)
	}

	if parsed.Spec.Paths.Find("/campaigns") == nil {
		t.Error("expected /campaigns path")
	}
}

func TestParser_ParseSwagger2(t *testing.T) {
	spec := `
swagger: "2.0"
info:
  title: Legacy API
  version: "1.0.0"
host: api.example.com
basePath: /v1
schemes: [https]
paths:
  /things/{id}:
    get:
      operationId: things/get
      parameters:
        - name: id
          in: path
          required: true
          type: string
      responses:
        "200":
          description: OK
`

	parser := NewParser()
	parsed, err := parser.Parse(context.Background(), []byte(spec))
	if err != nil {
		t.Fatalf("failed to parse spec: %v", err)
	}

	if parsed.OriginalVersion != SpecVersionSwagger2 {
		t.Errorf("expected version %s, got %s", SpecVersionSwagger2, parsed.OriginalVersion)
	}
	if len(parsed.Spec.Servers) == 0 || parsed.Spec.Servers[0].URL != "https://api.example.com/v1" {
		t.Errorf("expected converted server URL, got %+v", parsed.Spec.Servers)
	}
	item := parsed.Spec.Paths.Find("/things/{id}")
	if item == nil || item.Get == nil {
		t.Fatal("expected GET /things/{id}")
	}
	if item.Get.OperationID != "things/get" {
		t.Errorf("expected operationId things/get, got %s", item.Get.OperationID)
	}
}

func TestParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	content := "openapi: 3.0.3\ninfo:\n  title: File API\n  version: 2.0.0\npaths: {}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	parsed, err := NewParser().ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to parse file: %v", err)
	}
	if parsed.GetInfo().Title != "File API" {
		t.Errorf("expected title 'File API', got '%s'", parsed.GetInfo().Title)
	}

	if _, err := NewParser().ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParser_ParseReader(t *testing.T) {
	spec := `{"openapi": "3.1.0", "info": {"title": "Reader", "version": "1"}, "paths": {}}`

	parsed, err := NewParser().ParseReader(context.Background(), strings.NewReader(spec))
	if err != nil {
		t.Fatalf("failed to parse reader: %v", err)
	}
	if parsed.OriginalVersion != SpecVersionOpenAPI31 {
		t.Errorf("expected version %s, got %s", SpecVersionOpenAPI31, parsed.OriginalVersion)
	}
}

func TestParser_Validate(t *testing.T) {
	// Missing info.title is tolerated unless validation is enabled.
	spec := `{"openapi": "3.0.0", "info": {"version": "1"}, "paths": {}}`

	if _, err := NewParser().Parse(context.Background(), []byte(spec)); err != nil {
		t.Fatalf("unexpected error without validation: %v", err)
	}

	parser := NewParser()
	parser.Validate = true
	if _, err := parser.Parse(context.Background(), []byte(spec)); err == nil {
		t.Error("expected validation error")
	}
}
