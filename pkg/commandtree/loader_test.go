package commandtree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalJSON = `{
  "version": 1,
  "api_version": "5.0.0",
  "base_url": "https://api.example.com/v5",
  "resources": [
    {
      "name": "boards",
      "ops": [
        {
          "name": "get",
          "method": "GET",
          "path": "/boards/{board_id}/pins/{pin_id}",
          "paginated": false,
          "security": [{"pinterest_oauth2": ["boards:read"]}],
          "params": [
            {"name": "board_id", "flag": "board-id", "in": "path", "required": true, "schema_type": "string"},
            {"name": "pin_id", "flag": "pin-id", "in": "path", "required": true, "schema_type": "string"},
            {"name": "fields", "flag": "fields", "in": "query", "required": false, "schema_type": "array", "items_type": "string"}
          ]
        }
      ]
    }
  ]
}`

const minimalYAML = `
version: 1
api_version: 5.0.0
base_url: https://api.example.com/v5
resources:
  - name: boards
    ops:
      - name: list
        method: GET
        path: /boards
        paginated: true
        security:
          - pinterest_oauth2: [boards:read]
        params:
          - name: bookmark
            flag: bookmark
            in: query
            required: false
            schema_type: string
`

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantErr   bool
		resources int
	}{
		{name: "json", data: minimalJSON, resources: 1},
		{name: "yaml", data: minimalYAML, resources: 1},
		{name: "malformed json", data: `{"version": `, wantErr: true},
		{name: "malformed yaml", data: "resources: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrInvalidCommandTree)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tree.Resources, tt.resources)
			assert.Equal(t, "https://api.example.com/v5", tree.BaseURL)
		})
	}
}

func TestParse_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		contains string
	}{
		{
			name:     "duplicate resource",
			data:     `{"resources": [{"name": "a", "ops": []}, {"name": "a", "ops": []}]}`,
			contains: `duplicate resource "a"`,
		},
		{
			name: "duplicate operation",
			data: `{"resources": [{"name": "a", "ops": [
				{"name": "get", "method": "GET", "path": "/a", "params": []},
				{"name": "get", "method": "GET", "path": "/b", "params": []}]}]}`,
			contains: `duplicate operation "get"`,
		},
		{
			name: "placeholder without parameter",
			data: `{"resources": [{"name": "a", "ops": [
				{"name": "get", "method": "GET", "path": "/a/{id}", "params": []}]}]}`,
			contains: "placeholder {id} has no path parameter",
		},
		{
			name: "parameter without placeholder",
			data: `{"resources": [{"name": "a", "ops": [
				{"name": "get", "method": "GET", "path": "/a", "params": [
					{"name": "id", "flag": "id", "in": "path", "required": true, "schema_type": "string"}]}]}]}`,
			contains: `path parameter "id" has no placeholder`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidCommandTree)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParse_LazyMethodValidation(t *testing.T) {
	data := `{"resources": [{"name": "a", "ops": [
		{"name": "trace", "method": "TRACE", "path": "/a", "params": [],
		 "request_body": {"required": true, "content_types": ["application/xml"]}}]}]}`

	tree, err := Parse([]byte(data))
	require.NoError(t, err)

	op, err := tree.Find("a", "trace")
	require.NoError(t, err)
	assert.Equal(t, "TRACE", op.Method)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0600))

	tree, err := LoadFile(path)
	require.NoError(t, err)

	op, err := tree.Find("boards", "list")
	require.NoError(t, err)
	assert.True(t, op.Paginated)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	tree, err := Parse([]byte(minimalJSON))
	require.NoError(t, err)

	op, err := tree.Find("boards", "get")
	require.NoError(t, err)
	assert.Equal(t, "/boards/{board_id}/pins/{pin_id}", op.Path)

	_, err = tree.Find("boards", "delete")
	assert.ErrorIs(t, err, errs.ErrUnknownOperation)

	_, err = tree.Find("pins", "get")
	assert.ErrorIs(t, err, errs.ErrUnknownOperation)
}

func TestDefault(t *testing.T) {
	tree, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 1, tree.Version)
	assert.Equal(t, "https://api.pinterest.com/v5", tree.BaseURL)

	op, err := tree.Find("ad-accounts", "list")
	require.NoError(t, err)
	assert.True(t, op.Paginated)

	op, err = tree.Find("oauth", "token")
	require.NoError(t, err)
	assert.Equal(t, []string{"basic"}, op.SecuritySchemes())
	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.AcceptsContentType("application/x-www-form-urlencoded"))
}
